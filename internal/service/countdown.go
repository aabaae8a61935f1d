package service

import (
	"context"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// CountdownUpdate is one tick of a market's remaining-time display.
type CountdownUpdate struct {
	MarketID uint64 `json:"market_id"`
	Display  string `json:"display"`
	Expired  bool   `json:"expired"`
}

// CountdownWatcher streams per-second countdown updates for market deadlines.
type CountdownWatcher struct {
	clock    domain.Clock
	interval time.Duration
}

// NewCountdownWatcher creates a watcher ticking at the given interval. A zero
// interval defaults to one second, the display's finest granularity.
func NewCountdownWatcher(clock domain.Clock, interval time.Duration) *CountdownWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &CountdownWatcher{clock: clock, interval: interval}
}

// Watch emits the market's countdown display once immediately and then every
// tick. The channel closes after the first expired emission or when ctx
// ends, whichever comes first.
func (w *CountdownWatcher) Watch(ctx context.Context, marketID uint64, deadline time.Time) <-chan CountdownUpdate {
	out := make(chan CountdownUpdate, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			display, expired := domain.Countdown(deadline, w.clock.Now())
			update := CountdownUpdate{MarketID: marketID, Display: display, Expired: expired}

			select {
			case out <- update:
			case <-ctx.Done():
				return
			}

			if expired {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
