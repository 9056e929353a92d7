package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userbase/internal/dbx"
	"github.com/dmitrijs2005/userbase/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out one shared in-memory repository
// regardless of the handle it is given. Migrations are a no-op.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

// UserStore exposes the backing repository to tests.
func (m *InMemoryRepositoryManager) UserStore() *users.MemoryRepository {
	return m.users
}
