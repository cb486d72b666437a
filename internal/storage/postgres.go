package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps each collection as one row of the collections table.
type Postgres struct {
	pool *pgxpool.Pool
	name string
}

func NewPostgres(pool *pgxpool.Pool, name string) *Postgres {
	return &Postgres{pool: pool, name: name}
}

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM collections WHERE name = $1`, p.name,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.name, err)
	}
	return []byte(body), nil
}

func (p *Postgres) Save(ctx context.Context, data []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO collections (name, body, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		p.name, string(data),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", p.name, err)
	}
	return nil
}

// Migrate applies the schema file at path. A missing file is not an error.
func Migrate(ctx context.Context, pool *pgxpool.Pool, path string) (applied bool, err error) {
	migration, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := pool.Exec(ctx, string(migration)); err != nil {
		return false, fmt.Errorf("apply %s: %w", path, err)
	}
	return true, nil
}
