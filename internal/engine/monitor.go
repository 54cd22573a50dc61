package engine

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

// observe quotes the configured base amount against the token and builds a
// price snapshot. The snapshot's integer amounts drive decisions; the float
// rate exists for logs and dashboards only.
func (e *Engine) observe(ctx context.Context, venue ports.Venue) (*domain.PriceSnapshot, *domain.TokenInfo, error) {
	tokenInfo, err := venue.TokenInfo(ctx)
	if err != nil {
		// Metadata is cosmetic; a quote can still succeed without it.
		e.log.Warn(ctx, "token metadata unavailable, using fallback", map[string]interface{}{"error": err.Error()})
		tokenInfo = &domain.TokenInfo{Name: "Unknown", Symbol: "UNKNOWN", Decimals: 18}
	}

	path := []string{venue.BaseAssetAddress(), e.cfg.TokenAddress}
	amountOut, err := venue.GetQuote(ctx, e.cfg.BuyAmount, path)
	if err != nil {
		var lqErr *ports.LiquidityError
		if errors.As(err, &lqErr) {
			return nil, tokenInfo, &ports.LiquidityError{
				TokenSymbol: tokenInfo.Symbol,
				LPToken:     isLPToken(tokenInfo.Symbol),
				Err:         lqErr.Err,
			}
		}
		return nil, tokenInfo, err
	}

	var target *big.Int
	if e.cfg.TargetPrice != nil {
		target = new(big.Int).Mul(e.cfg.BuyAmount, e.cfg.TargetPrice)
	}

	snap := &domain.PriceSnapshot{
		Rate:            displayRate(amountOut, e.cfg.BuyAmount, tokenInfo.Decimals),
		AmountOut:       amountOut,
		TargetAmountOut: target,
		CurrentAmount:   formatUnits(amountOut, tokenInfo.Decimals),
		TargetAmount:    formatUnits(target, tokenInfo.Decimals),
		TokenSymbol:     tokenInfo.Symbol,
		Timestamp:       e.clock.Now(),
	}

	e.mu.Lock()
	e.lastSnapshot = snap
	e.mu.Unlock()

	if e.cache != nil {
		if err := e.cache.SetLatest(ctx, snap); err != nil {
			e.log.Warn(ctx, "snapshot cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return snap, tokenInfo, nil
}

// tick is one iteration of the trading loop: observe, compare against the
// target, act.
func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess == nil || ctx.Err() != nil {
		return
	}

	// Tick failures are never fatal: the cycle is skipped and the next
	// tick tries again, however long the outage lasts.
	snap, tokenInfo, err := e.observe(ctx, sess.venue)
	if err != nil {
		e.log.Error(ctx, err, "price check failed, skipping this cycle")
		return
	}

	e.log.Info(ctx, "price check", map[string]interface{}{
		"rate":    snap.Rate,
		"current": snap.CurrentAmount,
		"target":  snap.TargetAmount,
		"symbol":  snap.TokenSymbol,
	})

	if snap.TargetAmountOut == nil {
		// Monitor-only mode: no target, no trades.
		return
	}

	pair, err := sess.venue.GetPairAddress(ctx, e.cfg.TokenAddress, sess.venue.BaseAssetAddress())
	if err != nil {
		e.log.Error(ctx, err, "pair lookup failed, skipping this cycle")
		return
	}
	if pair == ports.ZeroAddress {
		e.log.Error(ctx, &ports.LiquidityError{TokenSymbol: tokenInfo.Symbol}, "no liquidity pair, skipping this cycle")
		return
	}

	switch snap.AmountOut.Cmp(snap.TargetAmountOut) {
	case 0:
		e.log.Info(ctx, "rate is at target, holding", map[string]interface{}{"rate": snap.Rate})
	case -1:
		// Quote yields fewer tokens than the target: buy to push the rate up.
		e.dispatch(ctx, sess, domain.Buy, e.cfg.BuyAmount, tokenInfo, snap)
	default:
		// Quote yields more tokens than the target: sell the equivalent
		// token amount to push the rate back down.
		sellAmount := new(big.Int).Div(e.cfg.BuyAmount, e.cfg.TargetPrice)
		if sellAmount.Sign() == 0 {
			e.log.Warn(ctx, "computed sell amount is zero, holding")
			return
		}
		e.dispatch(ctx, sess, domain.Sell, sellAmount, tokenInfo, snap)
	}
}

// dispatch routes a trading decision to either a single swap or a TWAP
// ladder, per configuration.
func (e *Engine) dispatch(ctx context.Context, sess *session, direction domain.Direction, amount *big.Int, tokenInfo *domain.TokenInfo, snap *domain.PriceSnapshot) {
	if e.cfg.TwapEnabled {
		e.scheduleTWAP(ctx, sess, direction, amount, tokenInfo, snap)
		return
	}
	if _, err := e.executeTrade(ctx, sess.venue, direction, amount, tokenInfo, snap, false); err != nil {
		e.log.Error(ctx, err, "trade failed", map[string]interface{}{"direction": string(direction)})
	}
}

// isLPToken flags symbols that look like pool share tokens, which cannot be
// traded through the router directly.
func isLPToken(symbol string) bool {
	return strings.Contains(symbol, "LP") || strings.Contains(symbol, "UNI-V2")
}
