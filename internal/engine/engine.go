// Package engine implements the market-making loop: it observes the venue's
// exchange rate on a fixed cadence, compares the integer quote against the
// configured target and executes buys or sells (optionally spread over a
// TWAP ladder) to push the rate toward the target.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RectiFlex/Market-Maker-Bot/config"
	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
	"github.com/RectiFlex/Market-Maker-Bot/internal/scheduler"
)

// swapDeadline bounds how long the venue honors a submitted swap.
const swapDeadline = 10 * time.Minute

// Deps bundles the engine's collaborators. Config, Logger and Dialer are
// required; Trades and Cache are optional and disable persistence and the
// snapshot cache respectively when nil.
type Deps struct {
	Config *config.Config
	Logger ports.Logger
	Dialer ports.VenueDialer
	Trades ports.TradeRepository
	Cache  ports.SnapshotCache
	Clock  scheduler.Clock
}

// StartOptions tunes session start behavior.
type StartOptions struct {
	// SkipValidation starts trading without the connection and pair
	// preflight. Intended for restarts against a venue already known good.
	SkipValidation bool
}

// Engine drives the trading loop. All exported methods are safe for
// concurrent use.
type Engine struct {
	cfg    *config.Config
	log    ports.Logger
	dialer ports.VenueDialer
	trades ports.TradeRepository
	cache  ports.SnapshotCache
	clock  scheduler.Clock
	sched  *scheduler.Scheduler
	guard  *ConnectivityGuard

	mu           sync.Mutex
	starting     bool
	session      *session
	tradeLog     []*domain.Trade
	lastSnapshot *domain.PriceSnapshot
}

// New validates dependencies and builds a stopped engine.
func New(deps Deps) (*Engine, error) {
	if deps.Config == nil {
		return nil, errors.New("engine requires a config")
	}
	if deps.Logger == nil {
		return nil, errors.New("engine requires a logger")
	}
	if deps.Dialer == nil {
		return nil, errors.New("engine requires a venue dialer")
	}
	clock := deps.Clock
	if clock == nil {
		clock = scheduler.RealClock()
	}
	return &Engine{
		cfg:    deps.Config,
		log:    deps.Logger,
		dialer: deps.Dialer,
		trades: deps.Trades,
		cache:  deps.Cache,
		clock:  clock,
		sched:  scheduler.New(clock),
		guard:  NewConnectivityGuard(deps.Dialer, deps.Logger, deps.Config.MaxConnectRetries),
	}, nil
}

// Start connects to the venue and begins the trading loop. Starting an
// already-running engine is a logged no-op. The configuration is
// re-validated so a session never partially starts on bad parameters.
func (e *Engine) Start(ctx context.Context, opts StartOptions) error {
	// The starting flag holds the one-session invariant across the dial
	// and preflight, which run outside the lock.
	e.mu.Lock()
	if e.session != nil || e.starting {
		e.mu.Unlock()
		e.log.Info(ctx, "start requested but the engine is already running")
		return nil
	}
	e.starting = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.starting = false
		e.mu.Unlock()
	}()

	if err := e.cfg.Validate(); err != nil {
		return err
	}

	venue, err := e.guard.Connect(ctx)
	if err != nil {
		return err
	}

	if !opts.SkipValidation {
		check, err := e.preflight(ctx, venue)
		if !check.Success {
			venue.Close()
			return err
		}
		if check.Warning != "" {
			e.log.Warn(ctx, "preflight passed with a warning", map[string]interface{}{"warning": check.Warning})
		}
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &session{venue: venue, ctx: sessCtx, cancel: cancel}

	e.mu.Lock()
	e.session = sess
	e.mu.Unlock()

	e.log.Info(ctx, "trading session started", map[string]interface{}{
		"wallet":    venue.WalletAddress(),
		"token":     e.cfg.TokenAddress,
		"frequency": e.cfg.TradeFrequency.String(),
		"twap":      e.cfg.TwapEnabled,
	})

	// Seed the position with an opening buy unless running monitor-only.
	// A failure here is logged and the session keeps running; the loop
	// will trade on its own cadence.
	if e.cfg.TargetPrice != nil {
		e.initialBuy(sessCtx, sess)
	}

	sess.tickHandle = e.sched.ScheduleEvery(e.cfg.TradeFrequency, func() {
		e.tick(sessCtx)
	})
	return nil
}

// initialBuy performs the session's opening buy, laddered when TWAP is
// enabled so the session never opens with the one-shot market impact the
// ladder exists to avoid.
func (e *Engine) initialBuy(ctx context.Context, sess *session) {
	snap, tokenInfo, err := e.observe(ctx, sess.venue)
	if err != nil {
		e.log.Error(ctx, err, "initial buy skipped: price observation failed")
		return
	}
	e.dispatch(ctx, sess, domain.Buy, e.cfg.BuyAmount, tokenInfo, snap)
}

// Stop halts the trading loop and cancels pending TWAP slices. Trades
// already dispatched run to completion against the old session's venue, so
// the venue connection is left open; Close releases it.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.mu.Unlock()

	if sess == nil {
		return
	}
	e.sched.Cancel(sess.tickHandle)
	for _, h := range sess.twapHandles {
		e.sched.Cancel(h)
	}
	sess.cancel()
	e.log.Info(ctx, "trading session stopped", map[string]interface{}{
		"cancelledSlices": len(sess.twapHandles),
	})
}

// IsRunning reports whether a trading session is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// TradeHistory returns a copy of the trades executed over the engine's
// lifetime, oldest first. The log survives session stops.
func (e *Engine) TradeHistory() []*domain.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.Trade, len(e.tradeLog))
	copy(out, e.tradeLog)
	return out
}

// LastSnapshot returns the most recent price observation, or nil before the
// first one.
func (e *Engine) LastSnapshot() *domain.PriceSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSnapshot
}

// CurrentPrice observes the venue on demand. It never fails: when the venue
// is unreachable it returns a zeroed snapshot carrying whatever token symbol
// is known, so status displays always have something to show.
func (e *Engine) CurrentPrice(ctx context.Context) *domain.PriceSnapshot {
	venue, release, err := e.venueForQuery(ctx)
	if err != nil {
		e.log.Warn(ctx, "price unavailable", map[string]interface{}{"error": err.Error()})
		return e.zeroSnapshot()
	}
	defer release()

	snap, _, err := e.observe(ctx, venue)
	if err != nil {
		e.log.Warn(ctx, "price unavailable", map[string]interface{}{"error": err.Error()})
		return e.zeroSnapshot()
	}
	return snap
}

// TestConnection probes the venue, the token contract and the liquidity
// pair without starting a session. Failures are reported in the result
// rather than as an error.
func (e *Engine) TestConnection(ctx context.Context) *domain.ConnectionTest {
	venue, release, err := e.venueForQuery(ctx)
	if err != nil {
		return &domain.ConnectionTest{Success: false, Error: err.Error()}
	}
	defer release()
	check, _ := e.preflight(ctx, venue)
	return check
}

// BlockInfo reports the venue's chain height and latest block time.
func (e *Engine) BlockInfo(ctx context.Context) (*domain.BlockInfo, error) {
	venue, release, err := e.venueForQuery(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	height, err := venue.BlockHeight(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := venue.BlockTimestamp(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.BlockInfo{Height: height, Timestamp: ts}, nil
}

// Balances reports the wallet's base and token balances, formatted for
// display. Unreachable values fall back to "0".
func (e *Engine) Balances(ctx context.Context) *domain.Balances {
	out := &domain.Balances{Base: "0", Token: "0"}

	venue, release, err := e.venueForQuery(ctx)
	if err != nil {
		e.log.Warn(ctx, "balances unavailable", map[string]interface{}{"error": err.Error()})
		return out
	}
	defer release()

	tokenDecimals := uint8(18)
	if info, err := venue.TokenInfo(ctx); err == nil {
		out.TokenSymbol = info.Symbol
		tokenDecimals = info.Decimals
	}
	if base, err := venue.BaseBalance(ctx, venue.WalletAddress()); err == nil {
		out.Base = formatUnits(base, 18)
	}
	if token, err := venue.TokenBalance(ctx, venue.WalletAddress()); err == nil {
		out.Token = formatUnits(token, tokenDecimals)
	}
	return out
}

// Close stops any running session, the scheduler and the venue connection.
func (e *Engine) Close() {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.mu.Unlock()

	if sess != nil {
		e.sched.Cancel(sess.tickHandle)
		for _, h := range sess.twapHandles {
			e.sched.Cancel(h)
		}
		sess.cancel()
		sess.venue.Close()
	}
	e.sched.Stop()
}

// venueForQuery returns the running session's venue, or dials a throwaway
// one for a single diagnostic call. The release function closes the venue
// only when it was dialed here.
func (e *Engine) venueForQuery(ctx context.Context) (ports.Venue, func(), error) {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess != nil {
		return sess.venue, func() {}, nil
	}
	venue, err := e.guard.Once(ctx)
	if err != nil {
		return nil, nil, err
	}
	return venue, venue.Close, nil
}

// preflight runs the pre-session checks: token metadata, pair existence and
// a best-effort price probe. A failed price probe downgrades to a warning
// because the pair may simply have thin reserves at this size. The returned
// error carries the failure's taxonomy kind (the adapters classify network
// faults and contract faults differently) so callers can tell a dead RPC
// endpoint from an untradeable token.
func (e *Engine) preflight(ctx context.Context, venue ports.Venue) (*domain.ConnectionTest, error) {
	result := &domain.ConnectionTest{}

	info, err := venue.TokenInfo(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("token contract not readable: %v", err)
		return result, err
	}
	result.TokenInfo = info

	pair, err := venue.GetPairAddress(ctx, e.cfg.TokenAddress, venue.BaseAssetAddress())
	if err != nil {
		result.Error = fmt.Sprintf("pair lookup failed: %v", err)
		return result, err
	}
	if pair == ports.ZeroAddress {
		result.Error = fmt.Sprintf("no liquidity pair exists for %s", info.Symbol)
		return result, &ports.LiquidityError{TokenSymbol: info.Symbol, Err: errors.New("no liquidity pair exists")}
	}
	result.PairAddress = pair
	result.Success = true

	snap, _, err := e.observe(ctx, venue)
	if err != nil {
		result.Warning = fmt.Sprintf("token and pair found but the price probe failed: %v", err)
		return result, nil
	}
	result.CurrentRate = snap.Rate
	return result, nil
}

func (e *Engine) zeroSnapshot() *domain.PriceSnapshot {
	symbol := ""
	e.mu.Lock()
	if e.lastSnapshot != nil {
		symbol = e.lastSnapshot.TokenSymbol
	}
	e.mu.Unlock()
	return &domain.PriceSnapshot{
		CurrentAmount: "0",
		TargetAmount:  "0",
		TokenSymbol:   symbol,
		Timestamp:     e.clock.Now(),
	}
}
