package ports

import (
	"context"
	"math/big"
	"time"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
)

// Venue is the on-chain access capability the engine consumes: quotes,
// pair lookups, balances, allowances and swap submission. Implementations
// wrap a specific network and router; the engine only depends on this
// contract. All amounts are raw integers in the asset's base units.
type Venue interface {
	// ProbeNetwork verifies the venue is reachable. Used by the
	// connectivity guard before a session starts.
	ProbeNetwork(ctx context.Context) error

	// TokenInfo resolves the traded token's name, symbol and decimals.
	TokenInfo(ctx context.Context) (*domain.TokenInfo, error)

	// GetQuote returns the output amount for swapping amountIn along the
	// ordered asset path. Fails with *LiquidityError when the path has no
	// route or liquidity, *ConnectivityError when the venue is unreachable.
	GetQuote(ctx context.Context, amountIn *big.Int, path []string) (*big.Int, error)

	// GetPairAddress returns the liquidity pair address for the two assets,
	// or ZeroAddress when no pair exists.
	GetPairAddress(ctx context.Context, assetA, assetB string) (string, error)

	// BaseBalance returns the owner's base-asset balance.
	BaseBalance(ctx context.Context, owner string) (*big.Int, error)

	// TokenBalance returns the owner's balance of the traded token.
	TokenBalance(ctx context.Context, owner string) (*big.Int, error)

	// Allowance returns the amount of the traded token the spender may
	// transfer on the owner's behalf.
	Allowance(ctx context.Context, owner, spender string) (*big.Int, error)

	// Approve submits an approval for the spender and awaits confirmation.
	Approve(ctx context.Context, spender string, amount *big.Int) (txHash string, err error)

	// Swap submits the swap and awaits confirmation. The deadline bounds
	// how long the venue considers the transaction valid, not how long
	// this call waits.
	Swap(ctx context.Context, direction domain.Direction, amountIn, amountOutMin *big.Int, path []string, recipient string, deadline time.Time) (txHash string, err error)

	// BlockHeight and BlockTimestamp report chain status for display.
	BlockHeight(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context) (time.Time, error)

	// WalletAddress is the authenticated signer's address.
	WalletAddress() string
	// RouterAddress is the venue's swap router, the spender for approvals.
	RouterAddress() string
	// BaseAssetAddress is the wrapped base asset used as the quote leg.
	BaseAssetAddress() string

	// Close releases the underlying connection.
	Close()
}

// VenueDialer constructs a connected Venue for the configured network.
// Construction is deferred to session start so the connectivity guard can
// retry and count failures.
type VenueDialer interface {
	Dial(ctx context.Context) (Venue, error)
}
