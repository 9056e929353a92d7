package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userbase/internal/logging"
	"github.com/dmitrijs2005/userbase/internal/server/config"
	"github.com/dmitrijs2005/userbase/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "app-test-secret"
	c.GinMode = "test"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	return c
}

type stubRunner struct {
	err     error
	started chan struct{}
}

func (s *stubRunner) Run(ctx context.Context) error {
	close(s.started)
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func TestNewApp_RejectsEmptySecret(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""

	_, err := newApp(c, logging.Nop{}, nil, repomanager.NewInMemoryRepositoryManager())
	require.Error(t, err)
}

func TestApp_RunStopsOnCancelAndClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app, err := newApp(testConfig(), logging.Nop{}, db, repomanager.NewInMemoryRepositoryManager())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunReturnsServerError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app, err := newApp(testConfig(), logging.Nop{}, db, repomanager.NewInMemoryRepositoryManager())
	require.NoError(t, err)

	boom := errors.New("listen failed")
	app.server = &stubRunner{err: boom, started: make(chan struct{})}

	assert.ErrorIs(t, app.Run(context.Background()), boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
