package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportCSV writes every listing as CSV to w and returns the row count.
func (s *Postgres) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, category, title, company, cities, experience, url, created_at, sent
FROM vacancies
ORDER BY id DESC`)
	if err != nil {
		return 0, fmt.Errorf("export query: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	header := []string{"id", "category", "title", "company", "cities", "experience", "url", "created_at", "sent"}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	count := 0
	for rows.Next() {
		var (
			id                                             int64
			category, title, company, cities, exp, rawURL string
			createdAt                                      time.Time
			sent                                           bool
		)
		if err := rows.Scan(&id, &category, &title, &company, &cities, &exp, &rawURL, &createdAt, &sent); err != nil {
			return count, fmt.Errorf("scan export row: %w", err)
		}
		record := []string{
			strconv.FormatInt(id, 10),
			category, title, company, cities, exp, rawURL,
			createdAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(sent),
		}
		if err := cw.Write(record); err != nil {
			return count, fmt.Errorf("write csv row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate export rows: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("flush csv: %w", err)
	}
	return count, nil
}
