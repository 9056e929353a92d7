package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userbase/internal/dbx"
	"github.com/dmitrijs2005/userbase/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a caller-supplied handle,
// so one unit of work can run all its queries on a single connection.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
