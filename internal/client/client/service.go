package client

import (
	"context"
)

// User is the public view of an account.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResult carries the session token and the account it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Client interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, token string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	Ping(ctx context.Context) error
}
