package executor

import (
	"context"
	"fmt"
	"log"

	"trading-gate/internal/order"
)

// Outcome is what an executor reports back for one dispatched intent.
// A zero Status means the executor only acknowledged receipt; the gate
// records that as SUCCESS.
type Outcome struct {
	Status       order.Status `json:"status,omitempty"`
	VenueOrderID string       `json:"venue_order_id,omitempty"`
	FilledQty    float64      `json:"filled_qty,omitempty"`
	AvgPrice     float64      `json:"avg_price,omitempty"`
}

// Executor hands an order to its venue or simulation. Dispatch is the
// only gate step allowed to do I/O; errors and panics are the caller's
// problem to contain.
type Executor interface {
	Name() string
	Dispatch(ctx context.Context, in order.Intent) (Outcome, error)
}

// Registry is the static environment→executor table. It is built once at
// boot and read-only afterwards, like the governance map.
type Registry struct {
	table map[order.Environment]Executor
}

// NewRegistry builds the dispatch table. Unknown environments are
// rejected; environments without an executor simply stay unmapped and
// fail at dispatch time.
func NewRegistry(table map[order.Environment]Executor) (*Registry, error) {
	copied := make(map[order.Environment]Executor, len(table))
	for env, ex := range table {
		if !env.Valid() {
			return nil, fmt.Errorf("executor registry: unknown environment %q", env)
		}
		if ex == nil {
			continue
		}
		copied[env] = ex
		log.Printf("[EXECUTOR] %s → %s", env, ex.Name())
	}
	return &Registry{table: copied}, nil
}

// Resolve returns the executor for an environment, or false when none is
// mapped.
func (r *Registry) Resolve(env order.Environment) (Executor, bool) {
	ex, ok := r.table[env]
	return ex, ok
}

// Environments lists the mapped environments, for boot-time validation
// and the ops surface.
func (r *Registry) Environments() []order.Environment {
	out := make([]order.Environment, 0, len(r.table))
	for _, env := range order.Environments() {
		if _, ok := r.table[env]; ok {
			out = append(out, env)
		}
	}
	return out
}
