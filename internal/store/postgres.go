package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/holymotion/holymotion/internal/database"
	"github.com/jackc/pgx/v5"
)

// Postgres keeps every document as a row in app_state. Each Put rewrites the
// whole value, so readers never see a partially applied mutation.
type Postgres struct {
	db database.DBTX
}

func NewPostgres(db database.DBTX) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx,
		"SELECT value FROM app_state WHERE key = $1", key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx, "DELETE FROM app_state WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}
