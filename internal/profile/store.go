package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/psytech/suvichar/internal/kv"
)

// RecordKey names the durable profile record.
const RecordKey = "suvichar_user_profile"

// Store owns the cached profile and its durable record. Reads hit memory
// once the record has been loaded; writes update both.
type Store struct {
	records kv.Store
	logger  *slog.Logger

	mu     sync.Mutex
	cached *Profile
}

// NewStore builds a profile store over durable storage.
func NewStore(records kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{records: records, logger: logger}
}

// Load returns the profile, reading durable storage on a cold cache.
// Missing and malformed records both come back as absent.
func (s *Store) Load(ctx context.Context) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) (Profile, bool) {
	if s.cached != nil {
		return *s.cached, true
	}
	var p Profile
	status, err := kv.ReadJSON(ctx, s.records, RecordKey, &p)
	switch status {
	case kv.Present:
		s.cached = &p
		return p, true
	case kv.Corrupt:
		s.logger.WarnContext(ctx, "profile record unreadable", slog.Any("error", err))
	}
	return Profile{}, false
}

// Save overwrites the cached copy and the durable record. Last write wins;
// the phone of an existing profile cannot change.
func (s *Store) Save(ctx context.Context, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.loadLocked(ctx); ok && existing.Phone != "" && existing.Phone != p.Phone {
		return Profile{}, ErrPhoneImmutable
	}
	return s.saveLocked(ctx, p)
}

func (s *Store) saveLocked(ctx context.Context, p Profile) (Profile, error) {
	if _, err := ParsePurpose(string(p.Purpose)); err != nil {
		return Profile{}, err
	}
	if err := kv.WriteJSON(ctx, s.records, RecordKey, p); err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	s.cached = &p
	return p, nil
}

// GetOrCreate returns the existing profile, or saves and returns a default
// one for phone and purpose.
func (s *Store) GetOrCreate(ctx context.Context, phone string, purpose Purpose) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.loadLocked(ctx); ok {
		return existing, nil
	}
	if _, err := ParsePurpose(string(purpose)); err != nil {
		return Profile{}, err
	}
	created, err := s.saveLocked(ctx, Profile{
		Phone:    phone,
		Purpose:  purpose,
		Name:     purpose.DefaultName(),
		ShowDate: true,
	})
	if err != nil {
		return Profile{}, err
	}
	s.logger.InfoContext(ctx, "profile created", slog.String("phone", phone), slog.String("purpose", string(purpose)))
	return created, nil
}

// Clear drops the cached copy and the durable record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	if err := s.records.Delete(ctx, RecordKey); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
