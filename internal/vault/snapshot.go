package vault

import (
	"log/slog"
	"sync"
	"time"

	"github.com/halvard/muninn/internal/models"
)

// Snapshot owns the current corpus. It replaces a process-global notes list:
// the holder is constructed once, injected into consumers, and refreshed
// explicitly. Readers always see a complete, immutable scan result; a
// refresh swaps the whole result in one step.
//
// MarkStale records that the vault changed on disk (watcher callback);
// Corpus then rescans lazily on the next read. Refresh forces a rescan now.
type Snapshot struct {
	scanner *Scanner
	logger  *slog.Logger

	mu        sync.RWMutex
	current   *ScanResult
	scannedAt time.Time
	stale     bool
}

// NewSnapshot creates an empty snapshot holder. No scan happens until the
// first Corpus or Refresh call.
func NewSnapshot(scanner *Scanner, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshot{scanner: scanner, logger: logger, stale: true}
}

// Corpus returns the current scan result, rescanning first when the holder
// is stale. The result is never nil: a failed rescan returns the previous
// result, or an empty corpus when no scan has ever succeeded, so a transient
// disk error degrades to stale data rather than a crash.
func (s *Snapshot) Corpus() *ScanResult {
	s.mu.RLock()
	if !s.stale && s.current != nil {
		res := s.current
		s.mu.RUnlock()
		return res
	}
	s.mu.RUnlock()
	return s.refresh()
}

// Notes is a convenience accessor for just the note slice.
func (s *Snapshot) Notes() []models.Note {
	res := s.Corpus()
	if res == nil {
		return nil
	}
	return res.Notes
}

// Refresh forces a rescan regardless of staleness.
func (s *Snapshot) Refresh() *ScanResult {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
	return s.refresh()
}

// MarkStale flags the snapshot for rescan on next read.
func (s *Snapshot) MarkStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// ScannedAt returns when the current corpus was materialized.
func (s *Snapshot) ScannedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scannedAt
}

func (s *Snapshot) refresh() *ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stale && s.current != nil {
		// Another goroutine refreshed while we waited for the lock.
		return s.current
	}
	res, err := s.scanner.Scan()
	if err != nil {
		s.logger.Error("vault: rescan failed", slog.String("error", err.Error()))
		if s.current == nil {
			// No scan has ever succeeded; hand out an empty corpus so
			// callers never see nil. Staleness is kept so the next read
			// retries the scan.
			return &ScanResult{}
		}
		return s.current
	}
	s.current = res
	s.scannedAt = time.Now()
	s.stale = false
	s.logger.Info("vault: corpus refreshed", slog.Int("notes", len(res.Notes)))
	return res
}
