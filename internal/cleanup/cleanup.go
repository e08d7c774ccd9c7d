// Package cleanup runs the scheduled bin retention sweep.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/oakmere/arbor/internal/bus"
	"github.com/oakmere/arbor/internal/store"
)

// Sweeper permanently purges binned items older than the retention
// window.
type Sweeper struct {
	db        *store.DB
	bus       *bus.Bus
	retention time.Duration
	interval  time.Duration
}

// NewSweeper creates a sweeper. Zero durations fall back to 30 days
// retention and hourly sweeps.
func NewSweeper(db *store.DB, b *bus.Bus, retention, interval time.Duration) *Sweeper {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{db: db, bus: b, retention: retention, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is
// cancelled. Sweep failures are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup: stopped")
			return nil
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Sweep purges expired bin entries once and reports what it removed.
func (s *Sweeper) Sweep() (notes, folders int, err error) {
	return s.db.PurgeExpired(time.Now().Add(-s.retention))
}

func (s *Sweeper) sweep() {
	notes, folders, err := s.Sweep()
	if err != nil {
		slog.Error("cleanup: sweep failed", slog.String("error", err.Error()))
		return
	}
	if notes == 0 && folders == 0 {
		return
	}
	slog.Info("cleanup: purged expired bin entries",
		slog.Int("notes", notes),
		slog.Int("folders", folders))
	if s.bus != nil {
		s.bus.Publish(bus.TopicTreeRefresh, nil)
	}
}
