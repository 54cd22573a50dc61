package domain

import "time"

// Direction represents the side of a swap relative to the base asset.
type Direction string

const (
	Buy  Direction = "buy"  // spend base asset, receive token
	Sell Direction = "sell" // spend token, receive base asset
)

// Trade represents one executed swap. Records are append-only: they are
// never mutated or deleted once written.
type Trade struct {
	ID          int64     // Unique identifier (assigned by the repository)
	Direction   Direction // buy or sell
	AmountIn    string    // Input amount, formatted in the input asset's units
	AmountOut   string    // Output amount, formatted in the output asset's units
	TxHash      string    // Venue transaction identifier
	Rate        float64   // Display rate observed at trade time
	TokenSymbol string    // Symbol of the traded token
	IsTwap      bool      // Whether this trade was a TWAP slice
	Timestamp   time.Time // Time the trade was recorded
}

// TradeResult is the successful outcome of a single swap attempt.
type TradeResult struct {
	TxHash    string
	AmountIn  string
	AmountOut string
}
