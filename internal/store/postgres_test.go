package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/douscan/douscan/internal/vacancy"
)

func newMockStore(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	st, err := NewWithPool(mock)
	require.NoError(t, err)
	return st, mock
}

func TestInsertIfNewCreatesRow(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	now := time.Unix(1700000000, 0).UTC()

	l := vacancy.Listing{
		Category:    "Python",
		Title:       "Backend Engineer",
		Company:     "Acme",
		Cities:      "Kyiv",
		URL:         "https://jobs.example.com/vacancies/1/",
		Description: "desc",
		CreatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO vacancies").
		WithArgs(l.Category, l.Title, l.Company, l.Cities, l.Experience, l.URL, l.Description, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	added, err := st.InsertIfNew(context.Background(), l)
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfNewReportsDuplicate(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	now := time.Unix(1700000000, 0).UTC()

	l := vacancy.Listing{
		Category:  "Python",
		URL:       "https://jobs.example.com/vacancies/1/",
		CreatedAt: now,
	}

	// ON CONFLICT DO NOTHING reports zero rows affected for an existing URL.
	mock.ExpectExec("INSERT INTO vacancies").
		WithArgs(l.Category, l.Title, l.Company, l.Cities, l.Experience, l.URL, l.Description, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	added, err := st.InsertIfNew(context.Background(), l)
	require.NoError(t, err)
	require.False(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfNewRequiresURL(t *testing.T) {
	t.Parallel()

	st, _ := newMockStore(t)
	_, err := st.InsertIfNew(context.Background(), vacancy.Listing{Category: "QA"})
	require.Error(t, err)
}

func TestFetchUnsentOrdersAscending(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	now := time.Unix(1700000000, 0).UTC()

	cols := []string{
		"id", "category", "title", "company", "cities", "experience",
		"url", "description", "created_at", "sent", "sent_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM vacancies").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), "Python", "Backend", "Acme", "Kyiv", "", "https://x/1", "d1", now, false, (*time.Time)(nil)).
			AddRow(int64(2), "QA", "QA Lead", "Globex", "Lviv", "", "https://x/2", "d2", now, false, (*time.Time)(nil)))

	got, err := st.FetchUnsent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].ID)
	require.Equal(t, int64(2), got[1].ID)
	require.False(t, got[0].Sent)
	require.Nil(t, got[0].SentAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentEmptyIsNoop(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	require.NoError(t, st.MarkSent(context.Background(), nil, time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentBatches(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	at := time.Unix(1700000000, 0).UTC()
	ids := []int64{3, 4, 5}

	mock.ExpectExec("UPDATE vacancies").
		WithArgs(at, ids).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	require.NoError(t, st.MarkSent(context.Background(), ids, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveDuplicates(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM vacancies").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	pruned, err := st.RemoveDuplicates(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), pruned)
	require.NoError(t, mock.ExpectationsWereMet())
}
