package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/userbase/internal/common"
)

// envelope mirrors the server's response shape.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPClient talks to the userbase HTTP API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for addr, which may be "host:port" or a full
// URL. timeout bounds each request.
func NewHTTPClient(addr string, timeout time.Duration) *HTTPClient {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", "", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := c.do(ctx, http.MethodGet, "/users", "", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// do sends in as JSON, decodes the envelope and, on success, its data into out.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Status != "success" {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
