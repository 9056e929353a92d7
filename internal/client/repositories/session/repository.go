// Package session persists the CLI's login between runs: the email that
// logged in and the token the server issued for it. At most one session is
// stored.
package session

import (
	"context"
	"time"
)

type Session struct {
	Email   string
	Token   string
	SavedAt time.Time
}

type Repository interface {
	// Load returns the stored session or common.ErrNotFound.
	Load(ctx context.Context) (*Session, error)
	// Save replaces any stored session.
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}
