package engine

import (
	"context"
	"math/big"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

// executeTrade runs one swap end to end: preconditions, a fresh quote for
// the slippage floor, submission and bookkeeping. The quote from the
// observation that triggered the trade is not reused; each execution prices
// against the venue's state at execution time.
func (e *Engine) executeTrade(ctx context.Context, venue ports.Venue, direction domain.Direction, amountIn *big.Int, tokenInfo *domain.TokenInfo, snap *domain.PriceSnapshot, isTwap bool) (*domain.TradeResult, error) {
	var path []string
	switch direction {
	case domain.Buy:
		if err := e.checkBuyPreconditions(ctx, venue, amountIn); err != nil {
			return nil, err
		}
		path = []string{venue.BaseAssetAddress(), e.cfg.TokenAddress}
	case domain.Sell:
		if err := e.checkSellPreconditions(ctx, venue, amountIn, tokenInfo); err != nil {
			return nil, err
		}
		path = []string{e.cfg.TokenAddress, venue.BaseAssetAddress()}
	}

	quote, err := venue.GetQuote(ctx, amountIn, path)
	if err != nil {
		return nil, err
	}
	minOut := applySlippage(quote, e.cfg.SlippageToleranceBps)
	deadline := e.clock.Now().Add(swapDeadline)

	txHash, err := venue.Swap(ctx, direction, amountIn, minOut, path, venue.WalletAddress(), deadline)
	if err != nil {
		return nil, err
	}

	inDecimals, outDecimals := uint8(18), tokenInfo.Decimals
	if direction == domain.Sell {
		inDecimals, outDecimals = tokenInfo.Decimals, uint8(18)
	}
	result := &domain.TradeResult{
		TxHash:    txHash,
		AmountIn:  formatUnits(amountIn, inDecimals),
		AmountOut: formatUnits(quote, outDecimals),
	}

	e.log.Info(ctx, "trade executed", map[string]interface{}{
		"direction": string(direction),
		"amountIn":  result.AmountIn,
		"amountOut": result.AmountOut,
		"tx":        txHash,
		"twap":      isTwap,
	})
	e.recordTrade(ctx, direction, result, snap, tokenInfo, isTwap)
	return result, nil
}

// applySlippage computes the minimum acceptable output: the quote minus the
// configured basis-point tolerance, floored at zero. Integer arithmetic
// throughout; the division truncates in the trader's favor.
func applySlippage(quote *big.Int, toleranceBps int64) *big.Int {
	if quote == nil || quote.Sign() <= 0 {
		return big.NewInt(0)
	}
	cut := new(big.Int).Mul(quote, big.NewInt(toleranceBps))
	cut.Div(cut, big.NewInt(10000))
	minOut := new(big.Int).Sub(quote, cut)
	if minOut.Sign() < 0 {
		return big.NewInt(0)
	}
	return minOut
}

// recordTrade appends the trade to the in-memory log and persists it.
// Persistence failures are logged, never fatal; the in-memory log is the
// source of truth for the session.
func (e *Engine) recordTrade(ctx context.Context, direction domain.Direction, result *domain.TradeResult, snap *domain.PriceSnapshot, tokenInfo *domain.TokenInfo, isTwap bool) {
	trade := &domain.Trade{
		Direction:   direction,
		AmountIn:    result.AmountIn,
		AmountOut:   result.AmountOut,
		TxHash:      result.TxHash,
		Rate:        snap.Rate,
		TokenSymbol: tokenInfo.Symbol,
		IsTwap:      isTwap,
		Timestamp:   e.clock.Now(),
	}

	e.mu.Lock()
	e.tradeLog = append(e.tradeLog, trade)
	e.mu.Unlock()

	if e.trades != nil {
		if _, err := e.trades.CreateTrade(ctx, trade); err != nil {
			e.log.Warn(ctx, "trade persistence failed", map[string]interface{}{
				"tx":    trade.TxHash,
				"error": err.Error(),
			})
		}
	}
}
