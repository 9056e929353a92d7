package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userbase/internal/client/client"
	"github.com/dmitrijs2005/userbase/internal/common"
)

// Register prompts for name, email and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	return nil
}

// Login prompts for credentials and remembers the session on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.userEmail = u.Email
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	return nil
}

// Me shows the account behind the stored session. A session the server no
// longer accepts is forgotten.
func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotFound) || errors.Is(err, client.ErrNotLoggedIn) {
			a.userEmail = ""
		}
		return err
	}

	fmt.Fprintf(a.out, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	users, err := a.authService.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userEmail = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// describe renders err for the terminal, preferring the server's message.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in, use 'login' first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
