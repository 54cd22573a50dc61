package engine

import (
	"context"
	"math/big"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

// maxUint256 is the unbounded allowance granted when ApproveMax is set.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// checkBuyPreconditions verifies the wallet holds enough of the base asset
// to fund the buy.
func (e *Engine) checkBuyPreconditions(ctx context.Context, venue ports.Venue, amountIn *big.Int) error {
	balance, err := venue.BaseBalance(ctx, venue.WalletAddress())
	if err != nil {
		return err
	}
	if balance.Cmp(amountIn) < 0 {
		return &ports.PreconditionError{Asset: "ETH", Required: amountIn, Available: balance}
	}
	return nil
}

// checkSellPreconditions verifies the token balance covers the sell and the
// router holds a sufficient allowance, topping the allowance up when it does
// not. The approval is awaited so the swap never races it.
func (e *Engine) checkSellPreconditions(ctx context.Context, venue ports.Venue, amountIn *big.Int, tokenInfo *domain.TokenInfo) error {
	balance, err := venue.TokenBalance(ctx, venue.WalletAddress())
	if err != nil {
		return err
	}
	if balance.Cmp(amountIn) < 0 {
		return &ports.PreconditionError{Asset: tokenInfo.Symbol, Required: amountIn, Available: balance}
	}

	allowance, err := venue.Allowance(ctx, venue.WalletAddress(), venue.RouterAddress())
	if err != nil {
		return err
	}
	if allowance.Cmp(amountIn) >= 0 {
		return nil
	}

	grant := amountIn
	if e.cfg.ApproveMax {
		grant = maxUint256
	}
	txHash, err := venue.Approve(ctx, venue.RouterAddress(), grant)
	if err != nil {
		return err
	}
	e.log.Info(ctx, "router allowance granted", map[string]interface{}{
		"tx":     txHash,
		"symbol": tokenInfo.Symbol,
		"max":    e.cfg.ApproveMax,
	})
	return nil
}
