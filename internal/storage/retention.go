package storage

import (
	"context"
	"log"
	"time"
)

// Sweeper deletes assets older than a configured age. Assets are never
// mutated after store; the sweep and manual admin cleanup are the only
// ways they leave the directory.
type Sweeper struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewSweeper returns a sweeper that removes assets older than maxAge,
// checking every interval.
func NewSweeper(store *Store, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("[RETENTION] sweeper started: max age %s, interval %s", w.maxAge, w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[RETENTION] sweeper stopped")
			return
		case <-ticker.C:
			removed, err := w.SweepOnce()
			if err != nil {
				log.Printf("[RETENTION] sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("[RETENTION] removed %d expired assets", removed)
			}
		}
	}
}

// SweepOnce removes every asset older than the retention age and
// returns how many were deleted. An asset vanishing between listing and
// removal is not an error.
func (w *Sweeper) SweepOnce() (int, error) {
	assets, err := w.store.List()
	if err != nil {
		return 0, err
	}

	cutoff := w.now().Add(-w.maxAge)
	removed := 0
	for _, asset := range assets {
		if asset.CreatedAt.After(cutoff) {
			continue
		}
		if err := w.store.Remove(asset.StoredName); err != nil {
			if err == ErrNotFound {
				continue
			}
			log.Printf("[RETENTION] failed to remove %s: %v", asset.StoredName, err)
			continue
		}
		removed++
	}
	return removed, nil
}
