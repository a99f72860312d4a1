package services

import (
	"context"
	"log"
	"path/filepath"

	clamd "github.com/dutchcoders/go-clamd"

	"github.com/wedshare/media-service/internal/storage"
)

// Scanner runs an out-of-band ClamAV scan over newly stored assets.
// Intake validation is extension and mime only, so this is the second
// line of defense. It is log-only: stored assets are immutable, so a
// finding is reported for the admin to act on rather than auto-deleted.
type Scanner struct {
	clam  *clamd.Clamd
	store *storage.Store
	jobs  chan string
}

// NewScanner connects to a clamd instance, e.g. "tcp://localhost:3310".
func NewScanner(clamAVURL string, store *storage.Store) *Scanner {
	return &Scanner{
		clam:  clamd.NewClamd(clamAVURL),
		store: store,
		jobs:  make(chan string, 256),
	}
}

// Start runs the scan worker until ctx is cancelled.
func (s *Scanner) Start(ctx context.Context) {
	if s == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case name := <-s.jobs:
				s.scan(name)
			}
		}
	}()
	log.Println("[SCAN] clamav scanning enabled")
}

// Enqueue schedules one stored asset for scanning. Non-blocking.
func (s *Scanner) Enqueue(storedName string) {
	if s == nil {
		return
	}
	select {
	case s.jobs <- storedName:
	default:
		log.Printf("[SCAN] queue full, skipping %s", storedName)
	}
}

func (s *Scanner) scan(storedName string) {
	path := filepath.Join(s.store.Dir(), storedName)

	response, err := s.clam.ScanFile(path)
	if err != nil {
		log.Printf("[SCAN] scan failed for %s: %v", storedName, err)
		return
	}

	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("[SCAN] FINDING in %s: %s", storedName, res.Description)
		}
	}
}
