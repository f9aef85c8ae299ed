package ledger

import (
	"context"

	"trading-gate/internal/order"
	"trading-gate/internal/risk"
)

// Ledger hands the gate an exposure snapshot with the order's own notional
// already held against the books. Reserving and snapshotting happen under
// one lock, so two concurrent submissions cannot both read the same
// exposure and jointly slip past a limit.
//
// A reservation must be resolved exactly once: Commit after a successful
// dispatch, Release on any block or error. External portfolio services
// implement the same interface; the gate does not care where the books
// live.
type Ledger interface {
	Reserve(ctx context.Context, in order.Intent) (*Reservation, error)
}

// Reservation is a held slice of exposure plus the snapshot it was taken
// against. The snapshot includes the hold itself, so the risk engine sees
// the projected books, not the stale ones.
type Reservation struct {
	Exposure risk.Exposure

	intent   order.Intent
	notional float64
	release  func(r *Reservation, committed bool, fillQty, fillPrice float64)
	resolved bool
}

// Notional returns the order value held by this reservation.
func (r *Reservation) Notional() float64 { return r.notional }

// Commit folds the reservation into the books as an executed order.
// fillQty and fillPrice come from the executor's outcome; when the
// executor only acknowledged receipt (no fill yet), pass zeros and the
// hold converts at its reserved terms.
func (r *Reservation) Commit(fillQty, fillPrice float64) {
	if r == nil || r.resolved {
		return
	}
	r.resolved = true
	if r.release != nil {
		r.release(r, true, fillQty, fillPrice)
	}
}

// Release drops the hold without touching the books. Safe to call after
// Commit; the first resolution wins.
func (r *Reservation) Release() {
	if r == nil || r.resolved {
		return
	}
	r.resolved = true
	if r.release != nil {
		r.release(r, false, 0, 0)
	}
}
