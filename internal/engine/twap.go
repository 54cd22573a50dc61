package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
)

// scheduleTWAP spreads a trade over TwapIntervals slices across TwapSpread.
// The first n-1 slices are total/n each; the last slice absorbs the
// division remainder so the ladder sums exactly to the total. A new ladder
// cancels any slices still pending from the previous one.
func (e *Engine) scheduleTWAP(ctx context.Context, sess *session, direction domain.Direction, total *big.Int, tokenInfo *domain.TokenInfo, snap *domain.PriceSnapshot) {
	n := e.cfg.TwapIntervals
	sliceAmt := new(big.Int).Div(total, big.NewInt(int64(n)))
	if sliceAmt.Sign() == 0 {
		e.log.Warn(ctx, "amount too small to slice, executing as a single trade", map[string]interface{}{
			"amount": total.String(),
			"slices": n,
		})
		if _, err := e.executeTrade(ctx, sess.venue, direction, total, tokenInfo, snap, false); err != nil {
			e.log.Error(ctx, err, "trade failed", map[string]interface{}{"direction": string(direction)})
		}
		return
	}
	lastAmt := new(big.Int).Sub(total, new(big.Int).Mul(sliceAmt, big.NewInt(int64(n-1))))
	interval := e.cfg.TwapSpread / time.Duration(n)

	e.mu.Lock()
	if e.session != sess {
		e.mu.Unlock()
		return
	}
	cancelled := 0
	for _, h := range sess.twapHandles {
		if e.sched.Cancel(h) {
			cancelled++
		}
	}
	sess.twapHandles = sess.twapHandles[:0]
	for i := 1; i < n; i++ {
		amount := sliceAmt
		if i == n-1 {
			amount = lastAmt
		}
		amt, idx := amount, i
		h := e.sched.ScheduleOnce(interval*time.Duration(i), func() {
			e.runTwapSlice(ctx, sess, direction, amt, idx, n)
		})
		sess.twapHandles = append(sess.twapHandles, h)
	}
	e.mu.Unlock()

	if cancelled > 0 {
		e.log.Info(ctx, "superseded pending ladder slices", map[string]interface{}{"cancelled": cancelled})
	}
	e.log.Info(ctx, "ladder scheduled", map[string]interface{}{
		"direction": string(direction),
		"total":     total.String(),
		"slices":    n,
		"interval":  interval.String(),
	})

	// The first slice executes immediately with the observation in hand.
	if _, err := e.executeTrade(ctx, sess.venue, direction, sliceAmt, tokenInfo, snap, true); err != nil {
		e.log.Error(ctx, err, "ladder slice failed", map[string]interface{}{"slice": 0, "of": n})
	}
}

// runTwapSlice executes one deferred ladder slice. Each slice re-observes
// the venue so its slippage floor reflects the price at its own fire time,
// not the price when the ladder was scheduled.
func (e *Engine) runTwapSlice(ctx context.Context, sess *session, direction domain.Direction, amount *big.Int, idx, total int) {
	if ctx.Err() != nil {
		return
	}
	e.mu.Lock()
	active := e.session == sess
	e.mu.Unlock()
	if !active {
		return
	}

	snap, tokenInfo, err := e.observe(ctx, sess.venue)
	if err != nil {
		e.log.Error(ctx, err, "ladder slice skipped: price observation failed", map[string]interface{}{"slice": idx, "of": total})
		return
	}
	if _, err := e.executeTrade(ctx, sess.venue, direction, amount, tokenInfo, snap, true); err != nil {
		e.log.Error(ctx, err, "ladder slice failed", map[string]interface{}{"slice": idx, "of": total})
	}
}
