// Package metrics exposes Prometheus collectors for the crawl and delivery
// pipelines.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cardsSeenTotal        *prometheus.CounterVec
	listingsAddedTotal    *prometheus.CounterVec
	duplicatesTotal       *prometheus.CounterVec
	listFetchErrorsTotal  *prometheus.CounterVec
	detailFetchErrors     prometheus.Counter
	emptyPagesTotal       *prometheus.CounterVec
	cardFallbacksTotal    prometheus.Counter
	messagesSentTotal     prometheus.Counter
	rateLimitRetriesTotal prometheus.Counter
	rateLimitWaitSeconds  prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		cardsSeenTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "douscan_cards_seen_total",
				Help: "Total listing cards extracted from list pages, labeled by category.",
			},
			[]string{"category"},
		)

		listingsAddedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "douscan_listings_added_total",
				Help: "Total new listings persisted, labeled by category.",
			},
			[]string{"category"},
		)

		duplicatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "douscan_duplicates_total",
				Help: "Total insert attempts suppressed by URL dedup, labeled by category.",
			},
			[]string{"category"},
		)

		listFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "douscan_list_fetch_errors_total",
				Help: "Total list page fetch failures, labeled by category.",
			},
			[]string{"category"},
		)

		detailFetchErrors = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "douscan_detail_fetch_errors_total",
				Help: "Total detail page fetches that degraded to an empty description.",
			},
		)

		emptyPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "douscan_empty_pages_total",
				Help: "Total list pages that yielded zero cards and terminated paging, labeled by category.",
			},
			[]string{"category"},
		)

		cardFallbacksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "douscan_card_fallbacks_total",
				Help: "Total list pages where the primary card selector matched nothing and the anchor fallback was used.",
			},
		)

		messagesSentTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "douscan_messages_sent_total",
				Help: "Total messages delivered to the notification channel.",
			},
		)

		rateLimitRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "douscan_rate_limit_retries_total",
				Help: "Total retries triggered by a 429 from the notification channel.",
			},
		)

		rateLimitWaitSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "douscan_rate_limit_wait_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.5, 1, 2, 3, 5, 10, 30},
			},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCard counts one extracted card.
func ObserveCard(category string) {
	cardsSeenTotal.WithLabelValues(category).Inc()
}

// ObserveInsert counts one insert attempt, split by dedup outcome.
func ObserveInsert(category string, added bool) {
	if added {
		listingsAddedTotal.WithLabelValues(category).Inc()
		return
	}
	duplicatesTotal.WithLabelValues(category).Inc()
}

// ObserveListFetchError counts a failed list page fetch.
func ObserveListFetchError(category string) {
	listFetchErrorsTotal.WithLabelValues(category).Inc()
}

// ObserveDetailFetchError counts a detail fetch that degraded to empty.
func ObserveDetailFetchError() {
	detailFetchErrors.Inc()
}

// ObserveEmptyPage counts a list page with zero cards.
func ObserveEmptyPage(category string) {
	emptyPagesTotal.WithLabelValues(category).Inc()
}

// ObserveCardFallback counts a page parsed via the anchor fallback.
func ObserveCardFallback() {
	cardFallbacksTotal.Inc()
}

// ObserveMessageSent counts one delivered message.
func ObserveMessageSent() {
	messagesSentTotal.Inc()
}

// ObserveRateLimitRetry records one 429-triggered retry and its wait.
func ObserveRateLimitRetry(wait time.Duration) {
	rateLimitRetriesTotal.Inc()
	rateLimitWaitSeconds.Observe(wait.Seconds())
}
