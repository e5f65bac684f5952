// Package store provides the Postgres-backed canonical store of listings.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/douscan/douscan/internal/vacancy"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Postgres implements vacancy.Store on a pgx pool.
type Postgres struct {
	pool querier
}

// New creates a Postgres store from config and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool querier) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Postgres) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vacancies (
	id          BIGSERIAL PRIMARY KEY,
	category    TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	cities      TEXT NOT NULL DEFAULT '',
	experience  TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	sent        BOOLEAN NOT NULL DEFAULT FALSE,
	sent_at     TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_vacancies_category ON vacancies (category)`,
	`CREATE INDEX IF NOT EXISTS idx_vacancies_sent ON vacancies (sent)`,
}

// EnsureSchema creates the vacancies table and indexes if absent. Idempotent.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertIfNew persists the listing unless a row with the same URL exists.
// Returns true when a new row was created.
func (s *Postgres) InsertIfNew(ctx context.Context, l vacancy.Listing) (bool, error) {
	if l.URL == "" {
		return false, fmt.Errorf("listing url is required")
	}
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	tag, err := s.pool.Exec(ctx, `
INSERT INTO vacancies (category, title, company, cities, experience, url, description, created_at, sent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
ON CONFLICT (url) DO NOTHING`,
		l.Category, l.Title, l.Company, l.Cities, l.Experience, l.URL, l.Description, createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FetchUnsent returns up to limit unsent listings, oldest first.
func (s *Postgres) FetchUnsent(ctx context.Context, limit int) ([]vacancy.Listing, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, category, title, company, cities, experience, url, description, created_at, sent, sent_at
FROM vacancies
WHERE NOT sent
ORDER BY id ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unsent: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// MarkSent flips the sent flag for the given ids with one shared timestamp.
// Rows already sent keep their original sent_at; empty input is a no-op.
func (s *Postgres) MarkSent(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `
UPDATE vacancies
SET sent = TRUE, sent_at = $1
WHERE id = ANY($2) AND NOT sent`, at, ids); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// RemoveDuplicates prunes rows sharing a URL, keeping the lowest id.
func (s *Postgres) RemoveDuplicates(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
DELETE FROM vacancies
WHERE id NOT IN (
	SELECT MIN(id) FROM vacancies GROUP BY url
)`)
	if err != nil {
		return 0, fmt.Errorf("remove duplicates: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanListings(rows pgx.Rows) ([]vacancy.Listing, error) {
	var out []vacancy.Listing
	for rows.Next() {
		var l vacancy.Listing
		if err := rows.Scan(
			&l.ID, &l.Category, &l.Title, &l.Company, &l.Cities, &l.Experience,
			&l.URL, &l.Description, &l.CreatedAt, &l.Sent, &l.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}
