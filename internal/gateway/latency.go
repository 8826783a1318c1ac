package gateway

import (
	"context"
	"math/rand/v2"
	"time"
)

// Latency is the artificial delay window applied before every gateway call.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// NoLatency disables the delay.
var NoLatency = Latency{}

// DefaultLatency mirrors the network feel of a remote backend.
var DefaultLatency = Latency{Min: 300 * time.Millisecond, Max: 600 * time.Millisecond}

func (l Latency) pick() time.Duration {
	if l.Max <= l.Min {
		return l.Min
	}
	return l.Min + rand.N(l.Max-l.Min)
}

// wait sleeps for a random duration in [Min, Max) or until ctx is done.
func (l Latency) wait(ctx context.Context) error {
	d := l.pick()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
