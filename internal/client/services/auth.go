// Package services contains application services for the userbase client.
// This file defines the authentication service: register, login with a
// locally persisted session, current-user lookup and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userbase/internal/client/client"
	"github.com/dmitrijs2005/userbase/internal/client/repositories/session"
	"github.com/dmitrijs2005/userbase/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate and persist the issued token locally.
//   - Logout: forget the local session.
//   - CurrentUser: resolve the stored token to the account via the server.
//     A token the server rejects is dropped.
//   - Users: list registered accounts.
//   - Ping: check server liveness.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) (*client.User, error)
	Login(ctx context.Context, email string, password []byte) (*client.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*client.User, error)
	Session(ctx context.Context) (*session.Session, error)
	Users(ctx context.Context) ([]client.User, error)
	Ping(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client and a
// local SQL database holding the session.
type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db, now: time.Now}
}

func (a *authService) getSessionRepo() session.Repository {
	return session.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, name, email string, password []byte) (*client.User, error) {
	u, err := a.client.Register(ctx, name, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

// Login authenticates against the server and stores the token so later
// runs stay logged in.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*client.User, error) {
	res, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	s := &session.Session{Email: res.User.Email, Token: res.Token, SavedAt: a.now()}
	if err := a.getSessionRepo().Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return &res.User, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.getSessionRepo().Clear(ctx)
}

// Session returns the stored session or client.ErrNotLoggedIn.
func (a *authService) Session(ctx context.Context) (*session.Session, error) {
	s, err := a.getSessionRepo().Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, client.ErrNotLoggedIn
		}
		return nil, err
	}
	return s, nil
}

func (a *authService) CurrentUser(ctx context.Context) (*client.User, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}

	u, err := a.client.Me(ctx, s.Token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotFound) {
			if clearErr := a.getSessionRepo().Clear(ctx); clearErr != nil {
				return nil, errors.Join(err, clearErr)
			}
		}
		return nil, err
	}
	return u, nil
}

func (a *authService) Users(ctx context.Context) ([]client.User, error) {
	return a.client.ListUsers(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
