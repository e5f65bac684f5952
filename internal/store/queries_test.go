package store

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestSearchBuildsFilters(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	now := time.Unix(1700000000, 0).UTC()

	cols := []string{
		"id", "category", "title", "company", "cities", "experience",
		"url", "description", "created_at", "sent", "sent_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM vacancies WHERE category = \\$1 AND cities ILIKE \\$2").
		WithArgs("Python", "%Kyiv%", 10).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(9), "Python", "Backend", "Acme", "Kyiv", "", "https://x/9", "", now, true, &now))

	got, err := st.Search(context.Background(), SearchQuery{Category: "Python", City: "Kyiv", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Backend", got[0].Title)
	require.NotNil(t, got[0].SentAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchDefaultsLimit(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	cols := []string{
		"id", "category", "title", "company", "cities", "experience",
		"url", "description", "created_at", "sent", "sent_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM vacancies ORDER BY id DESC LIMIT \\$1").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows(cols))

	got, err := st.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsByCategory(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT category, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"category", "cnt"}).
			AddRow("Python", int64(12)).
			AddRow("QA", int64(3)))

	got, err := st.StatsByCategory(context.Background())
	require.NoError(t, err)
	require.Equal(t, []CategoryCount{{Category: "Python", Count: 12}, {Category: "QA", Count: 3}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	cols := []string{"id", "category", "title", "company", "cities", "experience", "url", "created_at", "sent"}
	mock.ExpectQuery("SELECT (.+) FROM vacancies ORDER BY id DESC").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), "QA", "QA Lead", "Globex", "Lviv", "", "https://x/2", now, false).
			AddRow(int64(1), "Python", "Backend", "Acme", "Kyiv", "1–3 роки", "https://x/1", now, true))

	var buf bytes.Buffer
	n, err := st.ExportCSV(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "id,category,title,company,cities,experience,url,created_at,sent", lines[0])
	require.Contains(t, lines[1], "QA Lead")
	require.Contains(t, lines[2], "2026-08-01T10:00:00Z")
	require.NoError(t, mock.ExpectationsWereMet())
}
