package engine

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// formatUnits renders a raw integer amount as a decimal string using the
// asset's decimal count, e.g. 1500000000000000000 with 18 decimals -> "1.5".
func formatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// displayRate computes the token-per-base quotient for logs and snapshots.
// Decisions never use this value; integer comparisons do that.
func displayRate(amountOut, amountIn *big.Int, tokenDecimals uint8) float64 {
	if amountOut == nil || amountIn == nil || amountIn.Sign() == 0 {
		return 0
	}
	out := decimal.NewFromBigInt(amountOut, -int32(tokenDecimals))
	in := decimal.NewFromBigInt(amountIn, -18)
	if in.IsZero() {
		return 0
	}
	rate, _ := out.Div(in).Float64()
	return rate
}
