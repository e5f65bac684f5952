// Package deliver pushes unsent listings through a sender and records
// delivery in a single batch.
package deliver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/notify"
	"github.com/douscan/douscan/internal/vacancy"
)

// Config controls one delivery run.
type Config struct {
	// Limit caps how many unsent listings one run picks up.
	Limit int
	// Delay is the pause between consecutive sends.
	Delay time.Duration
}

// Dispatcher reads unsent listings in insertion order, sends each one,
// and marks the whole batch sent only after every message went through.
type Dispatcher struct {
	store  vacancy.Store
	sender vacancy.Sender
	clock  vacancy.Clock
	logger *zap.Logger
	pause  func(ctx context.Context, d time.Duration)
}

// New constructs a Dispatcher.
func New(store vacancy.Store, sender vacancy.Sender, clock vacancy.Clock, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = vacancy.SystemClock{}
	}
	return &Dispatcher{
		store:  store,
		sender: sender,
		clock:  clock,
		logger: logger,
		pause:  timerPause,
	}
}

// Run delivers up to cfg.Limit unsent listings and returns how many were
// sent. A send failure aborts the run without marking anything, so every
// listing of the batch is retried next run; a listing already pushed to
// the channel may then repeat, which is the accepted trade-off.
func (d *Dispatcher) Run(ctx context.Context, cfg Config) (int, error) {
	listings, err := d.store.FetchUnsent(ctx, cfg.Limit)
	if err != nil {
		return 0, fmt.Errorf("fetch unsent: %w", err)
	}
	if len(listings) == 0 {
		d.logger.Info("nothing to send")
		return 0, nil
	}

	ids := make([]int64, 0, len(listings))
	for i, l := range listings {
		if i > 0 {
			d.pause(ctx, cfg.Delay)
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if err := d.sender.Send(ctx, notify.Format(l)); err != nil {
			return 0, fmt.Errorf("send listing %d: %w", l.ID, err)
		}
		d.logger.Info("sent",
			zap.Int64("id", l.ID),
			zap.String("title", l.Title),
		)
		ids = append(ids, l.ID)
	}

	if err := d.store.MarkSent(ctx, ids, d.clock.Now()); err != nil {
		return 0, fmt.Errorf("mark sent: %w", err)
	}
	d.logger.Info("delivery finished", zap.Int("sent", len(ids)))
	return len(ids), nil
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
