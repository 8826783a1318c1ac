package premium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/psytech/suvichar/internal/kv"
)

// RecordKey names the durable premium record.
const RecordKey = "suvichar_premium_state"

// CurrencyINR is the only currency the upgrade screen sells in.
const CurrencyINR = "INR"

// ErrPaymentDeclined is returned when the processor does not approve a checkout.
var ErrPaymentDeclined = errors.New("payment declined")

// Store owns the cached subscription state and its durable record.
type Store struct {
	records kv.Store
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	cached *State
}

// NewStore builds a premium store. now defaults to time.Now.
func NewStore(records kv.Store, logger *slog.Logger, now func() time.Time) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Store{records: records, logger: logger, now: now}
}

// Load returns the stored state, reading durable storage on a cold cache.
// Missing and malformed records both come back as absent.
func (s *Store) Load(ctx context.Context) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) (State, bool) {
	if s.cached != nil {
		return *s.cached, true
	}
	var st State
	status, err := kv.ReadJSON(ctx, s.records, RecordKey, &st)
	switch status {
	case kv.Present:
		s.cached = &st
		return st, true
	case kv.Corrupt:
		s.logger.WarnContext(ctx, "premium record unreadable", slog.Any("error", err))
	}
	return State{}, false
}

// Save overwrites the cached copy and the durable record.
func (s *Store) Save(ctx context.Context, st State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, st)
}

func (s *Store) saveLocked(ctx context.Context, st State) (State, error) {
	if err := kv.WriteJSON(ctx, s.records, RecordKey, st); err != nil {
		return State{}, fmt.Errorf("save premium state: %w", err)
	}
	s.cached = &st
	return st, nil
}

// GetState is Load with the free state as default. It never reports absence.
func (s *Store) GetState(ctx context.Context) State {
	if st, ok := s.Load(ctx); ok {
		return st
	}
	return Free()
}

// IsPremium evaluates the entitlement and, when it has expired, persists the
// downgrade to the free state before returning false. Callers must expect
// this read to write.
func (s *Store) IsPremium(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.loadLocked(ctx)
	if !ok || !st.IsPremium {
		return false, nil
	}
	if st.ExpiredAt(s.now()) {
		if _, err := s.saveLocked(ctx, Free()); err != nil {
			return false, err
		}
		s.logger.InfoContext(ctx, "premium expired", slog.String("plan", string(st.PlanType)))
		return false, nil
	}
	return true, nil
}

// Upgrade activates plan from now for its term and persists the result.
func (s *Store) Upgrade(ctx context.Context, plan Plan) (State, error) {
	if _, err := ParsePlan(string(plan)); err != nil {
		return State{}, err
	}
	expiry := s.now().Add(plan.Term()).UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.saveLocked(ctx, State{IsPremium: true, PlanType: plan, ExpiryDate: &expiry})
	if err != nil {
		return State{}, err
	}
	s.logger.InfoContext(ctx, "premium activated", slog.String("plan", string(plan)), slog.Int64("expiry_ms", expiry))
	return st, nil
}

// Purchase runs the simulated checkout for plan and upgrades on approval.
// A declined or failed checkout leaves the stored state untouched.
func (s *Store) Purchase(ctx context.Context, processor Processor, plan Plan) (State, Receipt, error) {
	if _, err := ParsePlan(string(plan)); err != nil {
		return State{}, Receipt{}, err
	}
	if processor == nil {
		processor = StaticProcessor{}
	}
	receipt, err := processor.Authorize(ctx, Checkout{Plan: plan, Amount: plan.PriceINR(), Currency: CurrencyINR})
	if err != nil {
		return State{}, Receipt{}, fmt.Errorf("authorize checkout: %w", err)
	}
	if receipt.Status != "approved" {
		return State{}, receipt, ErrPaymentDeclined
	}
	st, err := s.Upgrade(ctx, plan)
	if err != nil {
		return State{}, receipt, err
	}
	return st, receipt, nil
}

// Clear drops the cached copy and the durable record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	if err := s.records.Delete(ctx, RecordKey); err != nil {
		return fmt.Errorf("clear premium state: %w", err)
	}
	return nil
}
