// Package auth holds the authentication core: argon2id password records,
// HS256 session tokens and the bearer-token guard for protected requests.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is the fixed lifetime of an issued token.
const DefaultTokenValidity = 24 * time.Hour

// Token validation failures. All of them match common.ErrInvalidToken.
var (
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", common.ErrInvalidToken)
	ErrTokenInvalidSignature = fmt.Errorf("%w: signature mismatch", common.ErrInvalidToken)
	ErrTokenExpired          = fmt.Errorf("%w: expired", common.ErrInvalidToken)
)

// Claims is the signed payload: the user id and the expiry instant.
// Subject is encoded as a JSON number.
type Claims struct {
	Subject   int64            `json:"sub"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

func (c Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// TokenCodec issues and validates HS256 JWTs with one process-wide key.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type CodecOption func(*TokenCodec)

// WithValidity overrides DefaultTokenValidity.
func WithValidity(d time.Duration) CodecOption {
	return func(c *TokenCodec) { c.validity = d }
}

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: empty secret key")
	}

	c := &TokenCodec{
		secret:   append([]byte(nil), secret...),
		validity: DefaultTokenValidity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for userID expiring after the configured validity.
func (c *TokenCodec) Issue(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(c.now().Add(c.validity)),
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Validate checks the signature and expiry of tokenString and returns its
// claims. Errors are ErrTokenMalformed, ErrTokenInvalidSignature or
// ErrTokenExpired, wrapped with the parser detail. A token is still valid
// at the exact instant of its expiry.
func (c *TokenCodec) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// the parser treats exp as exclusive; one nanosecond makes it inclusive
		jwt.WithLeeway(time.Nanosecond),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && corruptSignatureSegment(tokenString) {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
		}
		return nil, classify(err)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

// corruptSignatureSegment reports whether tokenString has a readable header
// and payload but a signature segment that is not canonical base64url, such
// as one with non-zero trailing bits.
func corruptSignatureSegment(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	for _, seg := range parts[:2] {
		b, err := base64.RawURLEncoding.DecodeString(seg)
		if err != nil || !json.Valid(b) {
			return false
		}
	}
	_, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	return err != nil
}
