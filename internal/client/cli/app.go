package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/userbase/internal/client/client"
	"github.com/dmitrijs2005/userbase/internal/client/config"
	"github.com/dmitrijs2005/userbase/internal/client/services"
	"github.com/dmitrijs2005/userbase/internal/filex"
)

// App wires the CLI to the auth service and the local session store.
type App struct {
	config      *config.Config
	authService services.AuthService
	db          *sql.DB
	userEmail   string
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the session database, builds the API client and restores a
// login saved by a previous run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	path, err := filex.EnsureParentDir(c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("error preparing session directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)
	app := newApp(c, services.NewAuthService(apiClient, db), bufio.NewReader(os.Stdin), os.Stdout)
	app.db = db

	if err := app.restoreSession(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, as services.AuthService, reader *bufio.Reader, out io.Writer) *App {
	return &App{config: c, authService: as, reader: reader, out: out}
}

func (a *App) restoreSession(ctx context.Context) error {
	s, err := a.authService.Session(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotLoggedIn) {
			return nil
		}
		return fmt.Errorf("error loading session: %w", err)
	}
	a.userEmail = s.Email
	return nil
}

// Run greets the user, reports whether the server answers and starts the
// REPL. The session database is closed when the REPL exits.
func (a *App) Run(ctx context.Context) {
	if a.db != nil {
		defer a.db.Close()
	}

	fmt.Fprintln(a.out, "Welcome to userbase CLI (type 'help' for commands)")
	if err := a.authService.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server at %s is not reachable: %v\n", a.config.ServerEndpointAddr, err)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.userEmail != ""
}

func (a *App) getStatus() string {
	if a.userEmail == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userEmail)
}
