package order

import (
	"time"

	"trading-gate/internal/risk"
)

// ExecutionResult is the single, fully populated outcome of one gate
// submission. Every pathway through the gate produces exactly one.
type ExecutionResult struct {
	RunID       string      `json:"run_id"`
	Status      Status      `json:"status"`
	Environment Environment `json:"environment"`
	Timestamp   time.Time   `json:"timestamp"`
	Intent      Intent      `json:"intent"`

	BlockedByGovernance bool `json:"is_blocked_by_governance"`
	BlockedByRisk       bool `json:"is_blocked_by_risk"`
	BlockedBySafety     bool `json:"is_blocked_by_safety"`
	ExecutorCalled      bool `json:"executor_called"`

	ValidationError string            `json:"validation_error,omitempty"`
	Reason          string            `json:"reason,omitempty"` // block or error cause, human readable
	RiskChecks      []risk.LimitCheck `json:"risk_checks,omitempty"`

	// Populated only when the executor ran and reported a fill.
	VenueOrderID string  `json:"venue_order_id,omitempty"`
	FilledQty    float64 `json:"filled_qty,omitempty"`
	AvgPrice     float64 `json:"avg_price,omitempty"`
}

// Blocked reports whether the result stopped at a gate.
func (r ExecutionResult) Blocked() bool {
	return r.Status.IsBlocked()
}
