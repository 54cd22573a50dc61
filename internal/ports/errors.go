package ports

import (
	"fmt"
	"math/big"
)

// ZeroAddress is the venue's null address. A pair lookup returning it means
// no liquidity pair exists for the requested assets.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// The engine's error taxonomy is a closed set of kinds so callers can handle
// failures exhaustively with errors.As instead of matching message strings.
// Adapters wrap raw infrastructure errors into these types.

// ValidationError reports configuration rejected before a session starts.
// The session never partially starts on a validation failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ConnectivityError reports that the venue is unreachable. Attempts is
// non-zero when the connection retry budget was exhausted, which is fatal
// for session start.
type ConnectivityError struct {
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("failed to connect to network after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("venue unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// LiquidityError reports an untradeable token: no pair, no route, or a
// liquidity-pool token supplied as the trading target. Distinct from
// connectivity failures so the operator can tell the token itself is the
// problem rather than a transient fault.
type LiquidityError struct {
	TokenSymbol string
	LPToken     bool
	Err         error
}

func (e *LiquidityError) Error() string {
	switch {
	case e.LPToken:
		return fmt.Sprintf("%s appears to be a liquidity pool token, which cannot be traded directly", e.TokenSymbol)
	case e.TokenSymbol != "":
		return fmt.Sprintf("token %s is not tradable on the venue or has no liquidity", e.TokenSymbol)
	default:
		return "token is not tradable on the venue or has no liquidity"
	}
}

func (e *LiquidityError) Unwrap() error { return e.Err }

// PreconditionError reports an expected steady-state trade blocker such as
// an insufficient balance. Required and Available carry the raw integer
// amounts so callers can report both sides.
type PreconditionError struct {
	Asset     string
	Required  *big.Int
	Available *big.Int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("insufficient %s balance: have %s, need %s", e.Asset, e.Available, e.Required)
}

// ExecutionError reports an approval or swap that failed on-chain after
// submission, including reverts and deadline expiry.
type ExecutionError struct {
	Stage  string // "approve" or "swap"
	TxHash string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("%s failed on-chain (tx %s): %v", e.Stage, e.TxHash, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
