package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/userbase/internal/common"
)

// Guard rejections.
var (
	ErrMissingToken    = errors.New("missing token")
	ErrMalformedScheme = errors.New("malformed scheme")
)

// TokenValidator is the part of TokenCodec the guard depends on.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// Identity is the authenticated caller of a single request.
type Identity struct {
	Claims Claims
}

func (i *Identity) UserID() int64 { return i.Claims.Subject }

// Guard extracts and validates the bearer token of an inbound request.
type Guard struct {
	tokens TokenValidator
}

func NewGuard(tokens TokenValidator) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate inspects the Authorization header and yields the caller's
// identity, or one of ErrMissingToken, ErrMalformedScheme or a token error
// matching common.ErrInvalidToken.
func (g *Guard) Authenticate(h http.Header) (*Identity, error) {
	values := h.Values(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return nil, ErrMissingToken
	}

	header := values[0]
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return nil, ErrMalformedScheme
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))

	claims, err := g.tokens.Validate(token)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidToken) {
			err = errors.Join(common.ErrInvalidToken, err)
		}
		return nil, err
	}

	return &Identity{Claims: *claims}, nil
}

// RejectionReason is the client-facing message for a guard error. Token
// error details are collapsed into "invalid token".
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return ErrMissingToken.Error()
	case errors.Is(err, ErrMalformedScheme):
		return ErrMalformedScheme.Error()
	default:
		return common.ErrInvalidToken.Error()
	}
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
