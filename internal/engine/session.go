package engine

import (
	"context"

	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
	"github.com/RectiFlex/Market-Maker-Bot/internal/scheduler"
)

// session is the state of one trading run: the connected venue, the
// recurring price-check entry and any pending TWAP slices. A stopped session
// is discarded wholesale; the engine-level trade log and failure budget
// survive it.
type session struct {
	venue       ports.Venue
	ctx         context.Context
	cancel      context.CancelFunc
	tickHandle  scheduler.Handle
	twapHandles []scheduler.Handle
}
