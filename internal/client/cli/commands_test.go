package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/userbase/internal/client/client"
	"github.com/dmitrijs2005/userbase/internal/client/config"
	"github.com/dmitrijs2005/userbase/internal/client/repositories/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	registerName, registerEmail string
	loginEmail                  string
	password                    []byte

	user     *client.User
	users    []client.User
	sess     *session.Session
	err      error
	pingErr  error
	loggedIn bool
}

func (f *fakeAuth) Register(ctx context.Context, name, email string, password []byte) (*client.User, error) {
	f.registerName, f.registerEmail, f.password = name, email, password
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAuth) Login(ctx context.Context, email string, password []byte) (*client.User, error) {
	f.loginEmail, f.password = email, password
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return f.user, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.err
}

func (f *fakeAuth) CurrentUser(ctx context.Context) (*client.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAuth) Session(ctx context.Context) (*session.Session, error) {
	if f.sess == nil {
		return nil, client.ErrNotLoggedIn
	}
	return f.sess, nil
}

func (f *fakeAuth) Users(ctx context.Context) ([]client.User, error) {
	return f.users, f.err
}

func (f *fakeAuth) Ping(ctx context.Context) error { return f.pingErr }

// scriptInput replaces the prompt helpers with canned answers.
func scriptInput(t *testing.T, lines []string, password string) {
	t.Helper()
	oldText, oldPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = oldText, oldPw })

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		l := lines[0]
		lines = lines[1:]
		return l, nil
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte(password), nil }
}

func newTestApp(fa *fakeAuth) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{ServerEndpointAddr: "127.0.0.1:3000", RequestTimeout: time.Second}
	return newApp(cfg, fa, rdr(""), &out), &out
}

func TestRegister(t *testing.T) {
	scriptInput(t, []string{"Alice", "alice@example.com"}, "pw")
	fa := &fakeAuth{user: &client.User{ID: 7, Name: "Alice", Email: "alice@example.com"}}
	a, out := newTestApp(fa)

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "Alice", fa.registerName)
	assert.Equal(t, "alice@example.com", fa.registerEmail)
	assert.Equal(t, []byte{0, 0}, fa.password, "password must be wiped")
	assert.Contains(t, out.String(), "Registered Alice <alice@example.com> (id 7)")
	assert.False(t, a.isLoggedIn())
}

func TestRegister_Conflict(t *testing.T) {
	scriptInput(t, []string{"Alice", "alice@example.com"}, "pw")
	fa := &fakeAuth{err: &client.APIError{StatusCode: http.StatusConflict, Message: "email already registered"}}
	a, _ := newTestApp(fa)

	err := a.Register(context.Background())
	require.ErrorIs(t, err, client.ErrConflict)
	assert.Equal(t, "email already registered", describe(err))
}

func TestLogin(t *testing.T) {
	scriptInput(t, []string{"alice@example.com"}, "pw")
	fa := &fakeAuth{user: &client.User{ID: 7, Name: "Alice", Email: "alice@example.com"}}
	a, out := newTestApp(fa)

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice@example.com)", a.getStatus())
	assert.Equal(t, []byte{0, 0}, fa.password)
	assert.Contains(t, out.String(), "Logged in as alice@example.com")
}

func TestLogin_Unauthorized(t *testing.T) {
	scriptInput(t, []string{"alice@example.com"}, "wrong")
	fa := &fakeAuth{err: &client.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid email or password"}}
	a, _ := newTestApp(fa)

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "invalid email or password", describe(err))
}

func TestLogin_InputError(t *testing.T) {
	scriptInput(t, nil, "pw")
	a, _ := newTestApp(&fakeAuth{})
	require.ErrorIs(t, a.Login(context.Background()), io.EOF)
}

func TestMe(t *testing.T) {
	fa := &fakeAuth{user: &client.User{ID: 3, Name: "Bob", Email: "bob@example.com"}}
	a, out := newTestApp(fa)
	a.userEmail = "bob@example.com"

	require.NoError(t, a.Me(context.Background()))
	assert.Contains(t, out.String(), "3\tBob\tbob@example.com")
	assert.True(t, a.isLoggedIn())
}

func TestMe_RejectedSessionIsForgotten(t *testing.T) {
	for _, err := range []error{
		&client.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid token"},
		&client.APIError{StatusCode: http.StatusNotFound, Message: "user not found"},
		client.ErrNotLoggedIn,
	} {
		a, _ := newTestApp(&fakeAuth{err: err})
		a.userEmail = "bob@example.com"

		require.Error(t, a.Me(context.Background()))
		assert.False(t, a.isLoggedIn(), "%v", err)
	}
}

func TestMe_ServerDownKeepsSession(t *testing.T) {
	a, _ := newTestApp(&fakeAuth{err: client.ErrUnavailable})
	a.userEmail = "bob@example.com"

	err := a.Me(context.Background())
	require.Error(t, err)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "server unavailable", describe(err))
}

func TestUsers(t *testing.T) {
	fa := &fakeAuth{users: []client.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}}
	a, out := newTestApp(fa)

	require.NoError(t, a.Users(context.Background()))
	assert.Contains(t, out.String(), "1\tAlice\talice@example.com")
	assert.Contains(t, out.String(), "2\tBob\tbob@example.com")
}

func TestUsers_Empty(t *testing.T) {
	a, out := newTestApp(&fakeAuth{users: []client.User{}})
	require.NoError(t, a.Users(context.Background()))
	assert.Contains(t, out.String(), "No users")
}

func TestLogout(t *testing.T) {
	a, out := newTestApp(&fakeAuth{})
	a.userEmail = "bob@example.com"

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.getStatus())
	assert.Contains(t, out.String(), "Logged out")
}

func TestRestoreSession(t *testing.T) {
	a, _ := newTestApp(&fakeAuth{sess: &session.Session{Email: "alice@example.com", Token: "t"}})
	require.NoError(t, a.restoreSession(context.Background()))
	assert.Equal(t, "alice@example.com", a.userEmail)

	b, _ := newTestApp(&fakeAuth{})
	require.NoError(t, b.restoreSession(context.Background()))
	assert.False(t, b.isLoggedIn())
}

func TestRun_ReportsUnreachableServer(t *testing.T) {
	fa := &fakeAuth{pingErr: errors.New("connection refused")}
	a, out := newTestApp(fa)
	a.reader = rdr("exit\n")

	a.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to userbase CLI")
	assert.Contains(t, out.String(), "not reachable: connection refused")
	assert.Contains(t, out.String(), "Bye!")
}

func TestNewApp_RestoresSavedLogin(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, session.NewSQLiteRepository(db).Save(ctx, &session.Session{
		Email: "alice@example.com", Token: "tok", SavedAt: time.Now(),
	}))
	require.NoError(t, db.Close())

	a, err := NewApp(ctx, &config.Config{
		ServerEndpointAddr: "127.0.0.1:1",
		SessionDBPath:      path,
		RequestTimeout:     time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.db.Close() })

	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice@example.com)", a.getStatus())
}

func TestNewApp_CreatesSessionDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "userbase", "session.db")

	a, err := NewApp(context.Background(), &config.Config{
		ServerEndpointAddr: "127.0.0.1:1",
		SessionDBPath:      path,
		RequestTimeout:     time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.db.Close() })

	assert.False(t, a.isLoggedIn())
	_, err = os.Stat(path)
	require.NoError(t, err)
}
