// Package services contains server-side business logic. This file implements
// UserService: registration, credential login with token issuance, and
// resolution of a validated token back to its user.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/dmitrijs2005/userbase/internal/dbx"
	"github.com/dmitrijs2005/userbase/internal/server/auth"
	"github.com/dmitrijs2005/userbase/internal/server/models"
	"github.com/dmitrijs2005/userbase/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userbase/internal/server/repositories/users"
)

// PasswordHasher hashes and verifies passwords. *auth.PasswordHasher satisfies it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, record string) bool
}

// TokenIssuer mints session tokens. *auth.TokenCodec satisfies it.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// UserService provides the authentication flows:
// - Register: hash the password and store a new user
// - Login: verify credentials and issue a token
// - Identify: resolve token claims to the current user record
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer

	dummyMu     sync.Mutex
	dummyRecord string
}

// NewUserService constructs a UserService. Every call acquires its own
// connection from db for its duration.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// Register creates a user. The password is hashed before storage is touched,
// so a hashing failure leaves no row behind.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.PublicUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrHashingFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrHashingFailure, err)
	}

	var created *models.User
	err = s.withUsers(ctx, func(ctx context.Context, repo users.Repository) error {
		u, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
		created = u
		return err
	})
	if err != nil {
		return nil, err
	}

	pub := created.Public()
	return &pub, nil
}

// Login checks credentials and issues a token. An unknown email yields
// common.ErrNotFound and a wrong password common.ErrInvalidCredentials;
// callers are expected to present both the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var user *models.User
	err := s.withUsers(ctx, func(ctx context.Context, repo users.Repository) error {
		u, err := repo.GetByEmail(ctx, email)
		user = u
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn a verification so an unknown email costs as much as a wrong password
			s.hasher.Verify(password, s.dummy())
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrInternal, err)
	}

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// Identify re-fetches the user named by validated claims. Tokens are not
// revoked on deletion, so a valid token may resolve to common.ErrNotFound.
func (s *UserService) Identify(ctx context.Context, claims *auth.Claims) (*models.PublicUser, error) {
	if claims == nil {
		return nil, common.ErrInvalidToken
	}

	var user *models.User
	err := s.withUsers(ctx, func(ctx context.Context, repo users.Repository) error {
		u, err := repo.GetByID(ctx, claims.Subject)
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// List returns every user in id order.
func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	var list []models.User
	err := s.withUsers(ctx, func(ctx context.Context, repo users.Repository) error {
		l, err := repo.List(ctx)
		list = l
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.PublicUser, 0, len(list))
	for i := range list {
		out = append(out, list[i].Public())
	}
	return out, nil
}

// --- helpers below ---

// withUsers runs fn against a users repository bound to a dedicated
// connection. Errors other than the domain sentinels become
// common.ErrStorageUnavailable.
func (s *UserService) withUsers(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		return fn(ctx, s.repomanager.Users(conn))
	})
	return storageError(err)
}

func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrDuplicateEmail):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
}

// dummy returns the record verified against when the email is unknown. It
// is built on first use; a failed build is retried on the next call.
func (s *UserService) dummy() string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyRecord != "" {
		return s.dummyRecord
	}

	pw, err := common.MakeRandHexString(16)
	if err != nil {
		return ""
	}
	if rec, err := s.hasher.Hash(pw); err == nil {
		s.dummyRecord = rec
	}
	return s.dummyRecord
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
