// internal/inventory/poller.go
package inventory

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultDecrementInterval = 30 * time.Second
	DefaultRolloverInterval  = 60 * time.Second
)

// Poller owns the two cadences the simulator leaves to its caller: the
// decrement attempt and the day rollover check.
type Poller struct {
	service           *Service
	decrementInterval time.Duration
	rolloverInterval  time.Duration
	now               func() time.Time
}

func NewPoller(service *Service, decrementInterval, rolloverInterval time.Duration) *Poller {
	if decrementInterval <= 0 {
		decrementInterval = DefaultDecrementInterval
	}
	if rolloverInterval <= 0 {
		rolloverInterval = DefaultRolloverInterval
	}
	return &Poller{
		service:           service,
		decrementInterval: decrementInterval,
		rolloverInterval:  rolloverInterval,
		now:               time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	decrement := time.NewTicker(p.decrementInterval)
	defer decrement.Stop()
	rollover := time.NewTicker(p.rolloverInterval)
	defer rollover.Stop()

	snap := p.service.Snapshot(p.now())
	slog.Info("inventory poller started", "date", snap.Date, "today", snap.Today, "tomorrow", snap.Tomorrow)

	for {
		select {
		case <-ctx.Done():
			slog.Info("inventory poller stopping")
			return ctx.Err()
		case <-decrement.C:
			p.decrementOnce()
		case <-rollover.C:
			p.rolloverOnce()
		}
	}
}

func (p *Poller) decrementOnce() {
	now := p.now()
	count, decremented := p.service.Tick(now, p.service.Visible(now))
	if decremented {
		slog.Debug("inventory decremented", "count", count)
	}
}

func (p *Poller) rolloverOnce() {
	last, _ := p.service.LastDate()
	snap, changed := p.service.Rollover(p.now(), last)
	if changed {
		slog.Info("inventory rolled over", "from", last, "date", snap.Date, "today", snap.Today, "tomorrow", snap.Tomorrow)
	}
}
