package ports

import (
	"context"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
)

// TradeRepository persists executed trades for operator review. The engine
// treats persistence as best-effort: a failed write is logged, never fatal.
type TradeRepository interface {
	// CreateTrade saves a new trade record and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindRecent retrieves the most recent trades, newest first, up to limit.
	FindRecent(ctx context.Context, limit int) ([]*domain.Trade, error)
}

// SnapshotCache publishes the latest price observation for out-of-process
// readers (status dashboards and the like). Optional; the engine works
// without one.
type SnapshotCache interface {
	// SetLatest stores the snapshot as the current observation.
	SetLatest(ctx context.Context, snap *domain.PriceSnapshot) error
	// GetLatest returns the current observation, or nil when none is cached.
	GetLatest(ctx context.Context) (*domain.PriceSnapshot, error)
	Close() error
}
