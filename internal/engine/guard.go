package engine

import (
	"context"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

// ConnectivityGuard wraps venue dialing with a failure budget. The failure
// counter persists across sessions: repeated session starts against a dead
// endpoint burn the same budget rather than each getting a fresh one. A
// successful connection resets the counter.
type ConnectivityGuard struct {
	dialer     ports.VenueDialer
	logger     ports.Logger
	maxRetries int
	backoff    *backoff.Backoff

	mu       sync.Mutex
	failures int
}

// NewConnectivityGuard builds a guard with the given failure budget.
// maxRetries <= 0 falls back to 5.
func NewConnectivityGuard(dialer ports.VenueDialer, logger ports.Logger, maxRetries int) *ConnectivityGuard {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &ConnectivityGuard{
		dialer:     dialer,
		logger:     logger,
		maxRetries: maxRetries,
		backoff: &backoff.Backoff{
			Min:    500 * time.Millisecond,
			Max:    10 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Connect dials the venue, retrying until the failure budget is exhausted.
// Exhaustion returns a ConnectivityError carrying the attempt count, which
// callers treat as fatal.
func (g *ConnectivityGuard) Connect(ctx context.Context) (ports.Venue, error) {
	g.backoff.Reset()
	for {
		venue, err := g.attempt(ctx)
		if err == nil {
			g.reset()
			return venue, nil
		}

		g.mu.Lock()
		g.failures++
		failures := g.failures
		g.mu.Unlock()

		g.logger.Warn(ctx, "venue connection failed", map[string]interface{}{
			"attempt": failures,
			"max":     g.maxRetries,
			"error":   err.Error(),
		})
		if failures >= g.maxRetries {
			return nil, &ports.ConnectivityError{Attempts: failures, Err: err}
		}

		select {
		case <-ctx.Done():
			return nil, &ports.ConnectivityError{Err: ctx.Err()}
		case <-time.After(g.backoff.Duration()):
		}
	}
}

// Once dials the venue with a single attempt and no budget accounting. Used
// for diagnostic paths that must not consume the trading session's budget.
func (g *ConnectivityGuard) Once(ctx context.Context) (ports.Venue, error) {
	return g.attempt(ctx)
}

func (g *ConnectivityGuard) attempt(ctx context.Context) (ports.Venue, error) {
	venue, err := g.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := venue.ProbeNetwork(ctx); err != nil {
		venue.Close()
		return nil, err
	}
	return venue, nil
}

// Failures reports the current consecutive-failure count.
func (g *ConnectivityGuard) Failures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}

func (g *ConnectivityGuard) reset() {
	g.mu.Lock()
	g.failures = 0
	g.mu.Unlock()
	g.backoff.Reset()
}
