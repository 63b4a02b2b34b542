package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/core"
)

// Ticker advances the playback clock of every actively playing space at a
// fixed cadence and broadcasts progress. One goroutine per process, not
// per space.
type Ticker struct {
	Spaces   *core.Registry
	Pub      core.Publisher
	Interval time.Duration
}

func (t *Ticker) Run(ctx context.Context) {
	interval := t.Interval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	log.Info().Str("module", "app.ticker").Dur("interval", interval).Msg("progress ticker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.ticker").Msg("progress ticker stopped")
			return
		case <-tick.C:
			t.Sweep(interval)
		}
	}
}

// Sweep runs one pass over all spaces. A failure while processing one
// space must not abort the rest of the scan.
func (t *Ticker) Sweep(interval time.Duration) {
	for _, s := range t.Spaces.All() {
		t.tickSpace(s, interval.Seconds())
	}
}

func (t *Ticker) tickSpace(s *core.Space, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "app.ticker").Str("space", string(s.Name())).Any("panic", r).Msg("tick failed")
		}
	}()
	s.Tick(t.Pub, dt)
}
