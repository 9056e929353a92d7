package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/dmitrijs2005/userbase/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*Session, error) {
	var (
		s       Session
		savedAt int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT email, token, saved_at FROM session WHERE id = 1`).
		Scan(&s.Email, &s.Token, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.SavedAt = time.Unix(savedAt, 0).UTC()
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, email, token, saved_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, token = excluded.token, saved_at = excluded.saved_at
	`, s.Email, s.Token, s.SavedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
