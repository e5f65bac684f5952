package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/douscan/douscan/internal/vacancy"
)

const listingColumns = "id, category, title, company, cities, experience, url, description, created_at, sent, sent_at"

// SearchQuery filters the listing search. Zero-value fields are ignored.
type SearchQuery struct {
	Keyword    string
	Category   string
	City       string
	Experience string
	Limit      int
}

// CategoryCount is one row of the per-category statistics.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Search returns listings matching the query, newest first.
func (s *Postgres) Search(ctx context.Context, q SearchQuery) ([]vacancy.Listing, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Category != "" {
		where = append(where, "category = "+arg(q.Category))
	}
	if q.Experience != "" {
		where = append(where, "experience = "+arg(q.Experience))
	}
	if q.City != "" {
		where = append(where, "cities ILIKE "+arg("%"+q.City+"%"))
	}
	if q.Keyword != "" {
		kw := arg("%" + q.Keyword + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR company ILIKE %s OR description ILIKE %s)", kw, kw, kw))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	sql := "SELECT " + listingColumns + " FROM vacancies"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY id DESC LIMIT " + arg(limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// Latest returns the most recently inserted listings.
func (s *Postgres) Latest(ctx context.Context, limit int) ([]vacancy.Listing, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+listingColumns+" FROM vacancies ORDER BY id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("latest listings: %w", err)
	}
	defer rows.Close()
	return scanListings(rows)
}

// StatsByCategory returns listing counts per category, largest first.
func (s *Postgres) StatsByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.pool.Query(ctx, `
SELECT category, COUNT(*) AS cnt
FROM vacancies
GROUP BY category
ORDER BY cnt DESC`)
	if err != nil {
		return nil, fmt.Errorf("stats by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return out, nil
}
