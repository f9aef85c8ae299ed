package safety

import (
	"fmt"

	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
)

// ViolationError means an order's market data cannot be trusted for its
// target environment. It is always a hard stop, never a warning.
type ViolationError struct {
	Symbol      string
	Environment order.Environment
	Provenance  marketdata.Provenance
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("safety violation: %s order for %s rides on %s market data", e.Environment, e.Symbol, e.Provenance)
}

// Guard keeps synthetic and replayed prices away from real venues. An
// environment outside the sandboxed set only accepts orders whose symbol
// was last priced by a real feed; a symbol with no tick at all fails
// closed the same way.
type Guard struct {
	Marks *marketdata.Store
}

func NewGuard(marks *marketdata.Store) *Guard {
	return &Guard{Marks: marks}
}

// Check returns nil when the intent may proceed.
func (g *Guard) Check(in order.Intent) *ViolationError {
	if in.Environment.Sandboxed() {
		return nil
	}

	prov := marketdata.ProvenanceUnknown
	if g.Marks != nil {
		prov = g.Marks.Provenance(in.Symbol)
	}
	if !prov.Real() {
		return &ViolationError{Symbol: in.Symbol, Environment: in.Environment, Provenance: prov}
	}
	return nil
}
