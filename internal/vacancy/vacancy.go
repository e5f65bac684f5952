// Package vacancy defines the domain types and service interfaces shared by
// the crawl and delivery pipelines.
package vacancy

import (
	"context"
	"time"
)

// Listing is one job posting as persisted by the canonical store.
// URL is the identity key; the store never holds two rows with the same URL.
type Listing struct {
	ID          int64      `json:"id"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Cities      string     `json:"cities"`
	Experience  string     `json:"experience,omitempty"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Sent        bool       `json:"sent"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

// Card is the lightweight summary pulled from a listings page before the
// detail page has been fetched.
type Card struct {
	Title   string
	Company string
	Cities  string
	URL     string
}

// Store is the canonical store contract. Implementations must provide atomic
// insert-if-new keyed on URL and atomic batch mark-sent.
type Store interface {
	EnsureSchema(ctx context.Context) error
	// InsertIfNew persists the listing and reports true when a new row was
	// created, false when a row with the same URL already exists.
	InsertIfNew(ctx context.Context, l Listing) (bool, error)
	// FetchUnsent returns up to limit unsent listings in ascending id order.
	FetchUnsent(ctx context.Context, limit int) ([]Listing, error)
	// MarkSent flips the sent flag for the given ids with one shared
	// timestamp. Already-sent rows are left untouched; empty input is a no-op.
	MarkSent(ctx context.Context, ids []int64, at time.Time) error
	// RemoveDuplicates prunes rows sharing a URL, keeping the oldest id.
	RemoveDuplicates(ctx context.Context) (int64, error)
}

// Source fetches raw markup from the listings site.
type Source interface {
	// ListPage fetches one listings page for a category code. expCode is the
	// optional experience filter code, empty for no filter.
	ListPage(ctx context.Context, categoryCode string, page int, expCode string) ([]byte, error)
	// Page fetches an absolute URL, typically a vacancy detail page.
	Page(ctx context.Context, url string) ([]byte, error)
}

// Sender delivers one formatted message to the notification channel.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Clock abstracts time.Now so pipelines can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
