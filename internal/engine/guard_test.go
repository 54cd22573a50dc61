package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/logger"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

func TestConnect_RetriesUntilSuccess(t *testing.T) {
	venue := newMockVenue()
	dialer := &mockDialer{venue: venue, failures: 2, dialErr: errors.New("connection refused")}
	guard := NewConnectivityGuard(dialer, logger.NewStdLogger(logger.LevelError), 5)

	got, err := guard.Connect(context.Background())
	require.NoError(t, err)
	assert.Same(t, venue, got)
	assert.Equal(t, 3, dialer.calls())
	// Success resets the budget.
	assert.Equal(t, 0, guard.Failures())
}

func TestConnect_FailsWhenBudgetExhausted(t *testing.T) {
	dialer := &mockDialer{failures: 1 << 30, dialErr: errors.New("connection refused")}
	guard := NewConnectivityGuard(dialer, logger.NewStdLogger(logger.LevelError), 2)

	_, err := guard.Connect(context.Background())
	var connErr *ports.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 2, connErr.Attempts)
	assert.Equal(t, 2, dialer.calls())
}

func TestConnect_ClosesVenueOnProbeFailure(t *testing.T) {
	venue := newMockVenue()
	venue.probeErr = errors.New("bad chain id")
	dialer := &mockDialer{venue: venue}
	guard := NewConnectivityGuard(dialer, logger.NewStdLogger(logger.LevelError), 1)

	_, err := guard.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, venue.closed)
}

func TestOnce_SingleAttemptWithoutBudget(t *testing.T) {
	dialer := &mockDialer{failures: 1 << 30, dialErr: errors.New("connection refused")}
	guard := NewConnectivityGuard(dialer, logger.NewStdLogger(logger.LevelError), 5)

	_, err := guard.Once(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, dialer.calls())
	assert.Equal(t, 0, guard.Failures())
}
