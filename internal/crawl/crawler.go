// Package crawl drives the paginated crawl of listing categories through
// the fetch, extract, and store layers.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/extract"
	"github.com/douscan/douscan/internal/metrics"
	"github.com/douscan/douscan/internal/vacancy"
)

// Config controls one crawl run.
type Config struct {
	// Categories is the list of category labels to crawl, validated against
	// the known set before any network call.
	Categories []string
	// Experience is the optional experience filter label, empty for none.
	Experience string
	// MaxPages caps pages per category; zero or negative means unbounded.
	MaxPages int
	// Delay is the politeness pause before each detail fetch.
	Delay time.Duration
	// MaxDescriptionChars caps the extracted description length; zero or
	// negative means no cap.
	MaxDescriptionChars int
	// BaseURL resolves relative card links to absolute URLs.
	BaseURL string
}

// Report summarizes a finished crawl run.
type Report struct {
	RunID  string
	Seen   int
	Added  int
	Pruned int64
	// Failed maps category labels to the error that stopped their paging.
	// Categories absent from the map completed normally.
	Failed map[string]error
}

// Crawler is the crawl orchestrator.
type Crawler struct {
	source vacancy.Source
	store  vacancy.Store
	clock  vacancy.Clock
	logger *zap.Logger
	pause  func(ctx context.Context, d time.Duration)
}

// New constructs a Crawler.
func New(source vacancy.Source, store vacancy.Store, clock vacancy.Clock, logger *zap.Logger) *Crawler {
	metrics.Init()
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = vacancy.SystemClock{}
	}
	return &Crawler{
		source: source,
		store:  store,
		clock:  clock,
		logger: logger,
		pause:  timerPause,
	}
}

// Run crawls every configured category sequentially. Label validation
// happens up front so an unknown label fails before any network I/O. A
// list-page failure stops that category but not the run; the returned error
// is non-nil when at least one category failed.
func (c *Crawler) Run(ctx context.Context, cfg Config) (Report, error) {
	report := Report{
		RunID:  uuid.NewString(),
		Failed: make(map[string]error),
	}

	if len(cfg.Categories) == 0 {
		return report, errors.New("no categories configured")
	}
	codes := make(map[string]string, len(cfg.Categories))
	for _, label := range cfg.Categories {
		code, err := vacancy.CategoryCode(label)
		if err != nil {
			return report, err
		}
		codes[label] = code
	}
	expCode, err := vacancy.ExperienceCode(cfg.Experience)
	if err != nil {
		return report, err
	}

	if err := c.store.EnsureSchema(ctx); err != nil {
		return report, fmt.Errorf("ensure schema: %w", err)
	}

	for _, label := range cfg.Categories {
		c.logger.Info("crawling category",
			zap.String("run_id", report.RunID),
			zap.String("category", label),
		)
		if err := c.crawlCategory(ctx, cfg, label, codes[label], expCode, &report); err != nil {
			metrics.ObserveListFetchError(label)
			c.logger.Error("category crawl failed",
				zap.String("run_id", report.RunID),
				zap.String("category", label),
				zap.Error(err),
			)
			report.Failed[label] = err
		}
	}

	pruned, err := c.store.RemoveDuplicates(ctx)
	if err != nil {
		c.logger.Warn("duplicate pruning failed", zap.String("run_id", report.RunID), zap.Error(err))
	}
	report.Pruned = pruned

	c.logger.Info("crawl finished",
		zap.String("run_id", report.RunID),
		zap.Int("seen", report.Seen),
		zap.Int("added", report.Added),
		zap.Int64("pruned", report.Pruned),
		zap.Int("failed_categories", len(report.Failed)),
	)

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("crawl finished with failed categories: %v", failedLabels(report.Failed))
	}
	return report, nil
}

func (c *Crawler) crawlCategory(
	ctx context.Context,
	cfg Config,
	label, code, expCode string,
	report *Report,
) error {
	page := 1
	donePages := 0

	for {
		if cfg.MaxPages > 0 && donePages >= cfg.MaxPages {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.source.ListPage(ctx, code, page, expCode)
		if err != nil {
			return fmt.Errorf("list page %d: %w", page, err)
		}

		cards, usedFallback, err := extract.Cards(body, cfg.BaseURL)
		if err != nil {
			// Unparseable markup is indistinguishable from end-of-results;
			// both stop paging for the category.
			c.logger.Info("no cards on page",
				zap.String("category", label), zap.Int("page", page), zap.Error(err))
			metrics.ObserveEmptyPage(label)
			return nil
		}
		if usedFallback {
			metrics.ObserveCardFallback()
			c.logger.Warn("primary card selector matched nothing, anchor fallback used",
				zap.String("category", label), zap.Int("page", page))
		}
		if len(cards) == 0 {
			c.logger.Info("no cards on page",
				zap.String("category", label), zap.Int("page", page))
			metrics.ObserveEmptyPage(label)
			return nil
		}

		for _, card := range cards {
			report.Seen++
			metrics.ObserveCard(label)

			c.pause(ctx, cfg.Delay)
			if err := ctx.Err(); err != nil {
				return err
			}

			desc := c.description(ctx, card.URL, cfg.MaxDescriptionChars)

			added, err := c.store.InsertIfNew(ctx, vacancy.Listing{
				Category:    label,
				Title:       card.Title,
				Company:     card.Company,
				Cities:      card.Cities,
				Experience:  cfg.Experience,
				URL:         card.URL,
				Description: desc,
				CreatedAt:   c.clock.Now(),
			})
			if err != nil {
				return fmt.Errorf("insert %s: %w", card.URL, err)
			}
			metrics.ObserveInsert(label, added)
			if added {
				report.Added++
				c.logger.Info("added",
					zap.String("title", card.Title), zap.String("company", card.Company))
			} else {
				c.logger.Debug("duplicate", zap.String("url", card.URL))
			}
		}

		page++
		donePages++
	}
}

// description fetches and extracts the detail text, degrading to empty on
// any failure so one broken detail page cannot abort the crawl.
func (c *Crawler) description(ctx context.Context, url string, maxChars int) string {
	body, err := c.source.Page(ctx, url)
	if err != nil {
		metrics.ObserveDetailFetchError()
		c.logger.Debug("detail fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	desc, err := extract.Description(body, maxChars)
	if err != nil {
		metrics.ObserveDetailFetchError()
		c.logger.Debug("detail parse failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return desc
}

func timerPause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func failedLabels(failed map[string]error) []string {
	labels := make([]string, 0, len(failed))
	for label := range failed {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
