// Package downloads keeps the list of cards the user saved to their library.
package downloads

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/psytech/suvichar/internal/kv"
)

// RecordKey names the durable downloads record.
const RecordKey = "suvichar_downloaded_quotes"

// Store keeps asset references most-recent-first. The list grows without
// bound and repeats are kept.
type Store struct {
	records kv.Store
	logger  *slog.Logger

	mu sync.Mutex
}

// NewStore builds a downloads store.
func NewStore(records kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{records: records, logger: logger}
}

// List returns the saved references. A missing or unreadable record is an
// empty list.
func (s *Store) List(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(ctx)
}

func (s *Store) listLocked(ctx context.Context) []string {
	var refs []string
	status, err := kv.ReadJSON(ctx, s.records, RecordKey, &refs)
	if status == kv.Corrupt {
		s.logger.WarnContext(ctx, "downloads record unreadable", slog.Any("error", err))
	}
	if status != kv.Present || refs == nil {
		return []string{}
	}
	return refs
}

// Add puts ref at the front of the list and persists it.
func (s *Store) Add(ctx context.Context, ref string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := append([]string{ref}, s.listLocked(ctx)...)
	if err := kv.WriteJSON(ctx, s.records, RecordKey, refs); err != nil {
		return nil, fmt.Errorf("save downloads: %w", err)
	}
	return refs, nil
}
