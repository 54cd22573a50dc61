package domain

import (
	"math/big"
	"time"
)

// PriceSnapshot is one observation of the venue's exchange rate for the
// configured base amount. Snapshots are immutable; a new observation
// supersedes the previous one rather than mutating it.
//
// AmountOut and TargetAmountOut are raw integer amounts in the token's base
// units and drive all trading decisions. Rate is a decimal-aware quotient
// for display only and must never be compared against the target.
type PriceSnapshot struct {
	Rate            float64   // token units per base unit, display only
	AmountOut       *big.Int  // quoted output for the configured base amount
	TargetAmountOut *big.Int  // base amount x target rate; nil when no target is set
	CurrentAmount   string    // AmountOut formatted with token decimals
	TargetAmount    string    // TargetAmountOut formatted with token decimals
	TokenSymbol     string    // symbol of the traded token
	Timestamp       time.Time // observation time
}

// TokenInfo describes the traded token's on-chain metadata.
type TokenInfo struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Pair records whether a liquidity pair exists for the traded token and
// where it lives. A missing pair is a hard precondition failure for trading.
type Pair struct {
	Exists  bool
	Address string
}

// ConnectionTest is the result of probing the venue, the token contract and
// the liquidity pair before a session starts. A Warning means the token
// resolved but the price probe failed.
type ConnectionTest struct {
	Success     bool
	TokenInfo   *TokenInfo
	PairAddress string
	CurrentRate float64
	Warning     string
	Error       string
}

// BlockInfo carries venue chain status for display.
type BlockInfo struct {
	Height    uint64
	Timestamp time.Time
}

// Balances carries formatted wallet balances for display. Values fall back
// to "0" when the venue cannot be reached.
type Balances struct {
	Base        string
	Token       string
	TokenSymbol string
}
