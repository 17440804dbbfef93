// Package scheduler runs the per-feed polling loops.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pass runs one complete fetch-and-process cycle for a feed.
type Pass interface {
	Run(ctx context.Context) error
}

type entry struct {
	feedID string
	pass   Pass
}

// Scheduler polls every registered feed on a fixed delay. The wait
// starts after a pass finishes, so a slow pass never overlaps its own
// next run. Feeds run independently of each other.
type Scheduler struct {
	entries  []entry
	interval time.Duration
	log      *slog.Logger
}

// New creates a Scheduler waiting interval between passes of each feed.
func New(interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{interval: interval, log: log}
}

// Add registers one feed's pass.
func (s *Scheduler) Add(feedID string, p Pass) {
	s.entries = append(s.entries, entry{feedID: feedID, pass: p})
}

// Run starts one worker per feed and blocks until ctx is cancelled.
// A pass failure is logged and the next pass is still scheduled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, e := range s.entries {
		wg.Add(1)
		go func(e entry) {
			defer wg.Done()
			s.loop(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	for {
		if err := e.pass.Run(ctx); err != nil {
			s.log.Error("process feed", "feed_id", e.feedID, "error", err)
		}

		s.log.Debug("sleeping", "feed_id", e.feedID, "interval", s.interval)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}
