package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/dmitrijs2005/userbase/internal/server/auth"
	"github.com/dmitrijs2005/userbase/internal/server/models"
	"github.com/dmitrijs2005/userbase/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	tr := newTestRouter(t)

	w := doRequest(t, tr.engine, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"ok","data":{"status":"ok"}}`, w.Body.String())
}

func TestListUsers(t *testing.T) {
	tr := newTestRouter(t)
	tr.svc.On("List", mock.Anything).Return([]models.PublicUser{{ID: 1, Name: "A", Email: "a@x.com"}}, nil).Once()

	w := doRequest(t, tr.engine, http.MethodGet, "/users", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"users retrieved","data":[{"id":1,"name":"A","email":"a@x.com"}]}`, w.Body.String())
}

func TestListUsers_StorageFailure(t *testing.T) {
	tr := newTestRouter(t)
	tr.svc.On("List", mock.Anything).Return(nil, fmt.Errorf("%w: dial tcp: refused", common.ErrStorageUnavailable)).Once()

	w := doRequest(t, tr.engine, http.MethodGet, "/users", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"storage unavailable","data":null}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "refused")
	assert.Len(t, tr.logger.find("storage failure"), 1)
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setup      func(*mockUserService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "created",
			body: RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "pw"},
			setup: func(s *mockUserService) {
				s.On("Register", mock.Anything, "Ann", "ann@x.com", "pw").
					Return(&models.PublicUser{ID: 3, Name: "Ann", Email: "ann@x.com"}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantMsg:    "user created",
		},
		{
			name:       "not json",
			body:       "{",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid request body",
		},
		{
			name:       "missing password",
			body:       map[string]string{"name": "Ann", "email": "ann@x.com"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid request body",
		},
		{
			name:       "bad email",
			body:       RegisterRequest{Name: "Ann", Email: "not-an-email", Password: "pw"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid request body",
		},
		{
			name: "duplicate",
			body: RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "pw"},
			setup: func(s *mockUserService) {
				s.On("Register", mock.Anything, "Ann", "ann@x.com", "pw").Return(nil, common.ErrDuplicateEmail).Once()
			},
			wantStatus: http.StatusConflict,
			wantMsg:    "email already registered",
		},
		{
			name: "hashing failure",
			body: RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "pw"},
			setup: func(s *mockUserService) {
				s.On("Register", mock.Anything, "Ann", "ann@x.com", "pw").
					Return(nil, fmt.Errorf("%w: entropy", common.ErrHashingFailure)).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal error",
		},
		{
			name: "storage failure",
			body: RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "pw"},
			setup: func(s *mockUserService) {
				s.On("Register", mock.Anything, "Ann", "ann@x.com", "pw").Return(nil, common.ErrStorageUnavailable).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "storage unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			if tt.setup != nil {
				tt.setup(tr.svc)
			}

			w := doRequest(t, tr.engine, http.MethodPost, "/users", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			e := decode(t, w)
			assert.Equal(t, tt.wantMsg, e.Message)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, StatusSuccess, e.Status)
				assert.JSONEq(t, `{"id":3,"name":"Ann","email":"ann@x.com"}`, string(e.Data))
			} else {
				assert.Equal(t, StatusError, e.Status)
				assert.Equal(t, "null", string(e.Data))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	user := models.PublicUser{ID: 9, Name: "Ann", Email: "ann@x.com"}

	tests := []struct {
		name       string
		body       any
		svcErr     error
		callSvc    bool
		wantStatus int
		wantMsg    string
	}{
		{name: "success", body: LoginRequest{Email: "ann@x.com", Password: "pw"}, callSvc: true, wantStatus: http.StatusOK, wantMsg: "login successful"},
		{name: "wrong password", body: LoginRequest{Email: "ann@x.com", Password: "pw"}, svcErr: common.ErrInvalidCredentials, callSvc: true, wantStatus: http.StatusUnauthorized, wantMsg: loginFailedMessage},
		{name: "unknown email", body: LoginRequest{Email: "ann@x.com", Password: "pw"}, svcErr: common.ErrNotFound, callSvc: true, wantStatus: http.StatusUnauthorized, wantMsg: loginFailedMessage},
		{name: "storage", body: LoginRequest{Email: "ann@x.com", Password: "pw"}, svcErr: common.ErrStorageUnavailable, callSvc: true, wantStatus: http.StatusServiceUnavailable, wantMsg: "storage unavailable"},
		{name: "internal", body: LoginRequest{Email: "ann@x.com", Password: "pw"}, svcErr: common.ErrInternal, callSvc: true, wantStatus: http.StatusInternalServerError, wantMsg: "internal error"},
		{name: "empty body", body: map[string]string{}, wantStatus: http.StatusBadRequest, wantMsg: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			if tt.callSvc {
				if tt.svcErr != nil {
					tr.svc.On("Login", mock.Anything, "ann@x.com", "pw").Return(nil, tt.svcErr).Once()
				} else {
					tr.svc.On("Login", mock.Anything, "ann@x.com", "pw").
						Return(&services.LoginResult{Token: "tok", User: user}, nil).Once()
				}
			}

			w := doRequest(t, tr.engine, http.MethodPost, "/login", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			e := decode(t, w)
			assert.Equal(t, tt.wantMsg, e.Message)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"token":"tok","user":{"id":9,"name":"Ann","email":"ann@x.com"}}`, string(e.Data))
			} else {
				assert.Equal(t, "null", string(e.Data))
				assert.NotContains(t, w.Body.String(), "token")
			}
		})
	}
}

func TestMe(t *testing.T) {
	tr := newTestRouter(t)
	token, err := tr.codec.Issue(5)
	require.NoError(t, err)

	tr.svc.On("Identify", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool { return c.Subject == 5 })).
		Return(&models.PublicUser{ID: 5, Name: "E", Email: "e@x.com"}, nil).Once()

	w := doRequest(t, tr.engine, http.MethodGet, "/me", nil, "Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"current user","data":{"id":5,"name":"E","email":"e@x.com"}}`, w.Body.String())
}

func TestMe_UserGone(t *testing.T) {
	tr := newTestRouter(t)
	token, err := tr.codec.Issue(5)
	require.NoError(t, err)

	tr.svc.On("Identify", mock.Anything, mock.Anything).Return(nil, common.ErrNotFound).Once()

	w := doRequest(t, tr.engine, http.MethodGet, "/me", nil, "Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", decode(t, w).Message)
}

func TestMe_StorageFailure(t *testing.T) {
	tr := newTestRouter(t)
	token, err := tr.codec.Issue(5)
	require.NoError(t, err)

	tr.svc.On("Identify", mock.Anything, mock.Anything).Return(nil, errors.Join(common.ErrStorageUnavailable, errors.New("boom"))).Once()

	w := doRequest(t, tr.engine, http.MethodGet, "/me", nil, "Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMe_WithoutGuardIsUnauthorized(t *testing.T) {
	svc := &mockUserService{}
	h := NewHandler(svc, &recordingLogger{}, nil)

	tr := newTestRouter(t)
	tr.engine.GET("/unguarded-me", h.Me)

	w := doRequest(t, tr.engine, http.MethodGet, "/unguarded-me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
}

func TestNoRoute(t *testing.T) {
	tr := newTestRouter(t)

	w := doRequest(t, tr.engine, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var e Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, StatusError, e.Status)
}
