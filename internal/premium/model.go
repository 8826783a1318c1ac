package premium

import (
	"errors"
	"fmt"
	"time"
)

// Plan is a subscription length.
type Plan string

const (
	PlanMonthly Plan = "MONTHLY"
	PlanYearly  Plan = "YEARLY"
)

// ErrInvalidPlan is returned for plans other than MONTHLY and YEARLY.
var ErrInvalidPlan = errors.New("plan must be MONTHLY or YEARLY")

// ParsePlan validates a plan string.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanMonthly, PlanYearly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, s)
	}
}

// Term is how long an upgrade to the plan lasts.
func (p Plan) Term() time.Duration {
	if p == PlanMonthly {
		return 30 * 24 * time.Hour
	}
	return 365 * 24 * time.Hour
}

// PriceINR is the list price shown on the upgrade screen, in rupees.
func (p Plan) PriceINR() int64 {
	if p == PlanMonthly {
		return 199
	}
	return 999
}

// State is the persisted subscription entitlement. ExpiryDate is epoch
// milliseconds; a premium state without one, or with zero, never expires.
type State struct {
	IsPremium  bool   `json:"isPremium"`
	PlanType   Plan   `json:"planType,omitempty"`
	ExpiryDate *int64 `json:"expiryDate,omitempty"`
}

// Free is the default, not-premium state.
func Free() State { return State{IsPremium: false} }

// Expiry returns the expiry as a time, if one is set. Zero counts as unset.
func (s State) Expiry() (time.Time, bool) {
	if s.ExpiryDate == nil || *s.ExpiryDate == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(*s.ExpiryDate), true
}

// ExpiredAt reports whether a premium state has passed its expiry at now.
func (s State) ExpiredAt(now time.Time) bool {
	expiry, ok := s.Expiry()
	if !s.IsPremium || !ok {
		return false
	}
	return now.UnixMilli() > expiry.UnixMilli()
}
