package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"trading-gate/internal/events"
	"trading-gate/internal/executor"
	"trading-gate/internal/governance"
	"trading-gate/internal/killswitch"
	"trading-gate/internal/ledger"
	"trading-gate/internal/monitor"
	"trading-gate/internal/order"
	"trading-gate/internal/risk"
	"trading-gate/internal/safety"
	"trading-gate/pkg/db"
)

// ErrorPolicy selects how a governance lock surfaces: encoded in the
// result, or returned as a *governance.ViolationError alongside it.
// There is deliberately no default; the zero value is refused.
type ErrorPolicy int

const (
	PolicyUnspecified ErrorPolicy = iota
	PolicyReturn
	PolicyRaise
)

// ErrNoErrorPolicy is returned when Submit is called without choosing a
// governance error policy.
var ErrNoErrorPolicy = errors.New("pipeline: error policy must be PolicyReturn or PolicyRaise")

// ParsePolicy maps the wire spelling of a policy onto the enum.
func ParsePolicy(s string) ErrorPolicy {
	switch s {
	case "return":
		return PolicyReturn
	case "raise":
		return PolicyRaise
	}
	return PolicyUnspecified
}

// Pipeline is the trust boundary: every order passes its gates in a fixed
// order, and exactly one ExecutionResult comes out per call. Gates short
// circuit; the executor is only reached when every gate passed, and
// whatever the executor does, the caller still gets a result.
//
// Submit is safe for unbounded concurrent callers. The only blocking step
// is executor dispatch.
type Pipeline struct {
	Governance *governance.Registry
	Safety     *safety.Guard
	RiskConfig risk.Config
	Ledger     ledger.Ledger
	Switch     *killswitch.Manager
	Executors  *executor.Registry
	Symbols    map[string]bool // allowlist; empty accepts any symbol

	Bus     *events.Bus          // optional
	Audit   *db.Database         // optional
	Metrics *monitor.GateMetrics // optional
}

// Submit runs one intent through the gates. The result is always fully
// populated; err is non-nil only for an unspecified policy, a context
// already cancelled before any gate ran, or a governance lock under
// PolicyRaise (which still returns the populated result).
func (p *Pipeline) Submit(ctx context.Context, in order.Intent, policy ErrorPolicy) (order.ExecutionResult, error) {
	switch policy {
	case PolicyReturn, PolicyRaise:
	default:
		return order.ExecutionResult{}, ErrNoErrorPolicy
	}
	if err := ctx.Err(); err != nil {
		return order.ExecutionResult{}, err
	}

	metricSubmissions.Inc()
	if p.Metrics != nil {
		p.Metrics.IncrementSubmissions()
	}
	var timer *monitor.Timer
	if p.Metrics != nil {
		timer = monitor.NewTimer(p.Metrics.SubmitLatency)
	}

	res := order.ExecutionResult{
		RunID:       uuid.NewString(),
		Environment: in.Environment,
		Intent:      in,
	}

	// Gate 1: input validation. Malformed input never reaches policy.
	if ve := order.Validate(in, p.Symbols); ve != nil {
		res.Status = order.StatusInvalid
		res.ValidationError = ve.Error()
		metricInvalid.Inc()
		if p.Metrics != nil {
			p.Metrics.IncrementInvalid()
		}
		return p.finish(ctx, res, timer), nil
	}

	// Gate 2: governance. A locked capability blocks whatever the later
	// gates would have said.
	if p.Governance != nil {
		if v := p.Governance.Violation(in.Environment.Capability()); v != nil {
			res.Status = order.StatusBlockedByGovernance
			res.BlockedByGovernance = true
			res.Reason = v.Error()
			out := p.finish(ctx, res, timer)
			if policy == PolicyRaise {
				return out, v
			}
			return out, nil
		}
	}

	// Gate 3: safety. Synthetic data never backs a real-money order.
	if p.Safety != nil {
		if v := p.Safety.Check(in); v != nil {
			res.Status = order.StatusBlockedBySafety
			res.BlockedBySafety = true
			res.Reason = v.Error()
			return p.finish(ctx, res, timer), nil
		}
	}

	// Gate 4: risk. Reserve first so concurrent submissions see each
	// other's exposure, then grade the order against the limits.
	var reservation *ledger.Reservation
	var exposure risk.Exposure
	if p.Ledger != nil {
		var err error
		reservation, err = p.Ledger.Reserve(ctx, in)
		if err != nil {
			res.Status = order.StatusError
			res.Reason = fmt.Sprintf("reserve exposure: %v", err)
			return p.fail(ctx, res, timer), nil
		}
		exposure = reservation.Exposure
	}

	assessment := risk.Evaluate(risk.OrderInput{
		Symbol: in.Symbol,
		Side:   string(in.Side),
		Qty:    in.Qty,
		Price:  in.Price,
	}, exposure, p.RiskConfig)
	res.RiskChecks = assessment.Violations()

	if assessment.Breached() && p.RiskConfig.BlockOnViolation {
		reservation.Release()
		res.Status = order.StatusBlockedByRisk
		res.BlockedByRisk = true
		res.Reason = breachReason(assessment)
		return p.finish(ctx, res, timer), nil
	}

	// Gate 5: kill switch, read fresh from the store on every call. Any
	// state other than ACTIVE halts dispatch; a read failure halts too.
	if p.Switch != nil {
		rec, err := p.Switch.Current(ctx)
		if err != nil {
			reservation.Release()
			res.Status = order.StatusError
			res.Reason = fmt.Sprintf("read kill switch: %v", err)
			return p.fail(ctx, res, timer), nil
		}
		if rec.State != killswitch.StateActive {
			reservation.Release()
			res.Status = order.StatusBlockedByEnvironment
			res.Reason = fmt.Sprintf("kill switch %s: %s", rec.State, rec.TriggerReason)
			return p.finish(ctx, res, timer), nil
		}
	}

	// Gate 6: dispatch.
	ex, ok := p.Executors.Resolve(in.Environment)
	if !ok {
		reservation.Release()
		res.Status = order.StatusError
		res.Reason = fmt.Sprintf("no executor mapped for environment %s", in.Environment)
		return p.fail(ctx, res, timer), nil
	}

	res.ExecutorCalled = true
	metricDispatched.Inc()
	if p.Metrics != nil {
		p.Metrics.IncrementDispatched()
	}

	outcome, err := p.dispatch(ctx, ex, in)
	if err != nil {
		reservation.Release()
		res.Status = order.StatusError
		res.Reason = fmt.Sprintf("executor %s: %v", ex.Name(), err)
		return p.fail(ctx, res, timer), nil
	}

	res.Status = outcome.Status
	if res.Status == "" {
		// Executor only acknowledged receipt.
		res.Status = order.StatusSuccess
	}
	res.VenueOrderID = outcome.VenueOrderID
	res.FilledQty = outcome.FilledQty
	res.AvgPrice = outcome.AvgPrice

	switch res.Status {
	case order.StatusRejected, order.StatusCancelled, order.StatusExpired:
		// The venue turned it away; nothing hit the books.
		reservation.Release()
	default:
		reservation.Commit(outcome.FilledQty, outcome.AvgPrice)
		if p.Bus != nil && (res.Status == order.StatusFilled || res.Status == order.StatusPartiallyFilled) {
			p.Bus.Publish(events.EventOrderFilled, res)
		}
	}

	return p.finish(ctx, res, timer), nil
}

// dispatch invokes the executor with panic containment. Whatever happens
// in there, the submission still produces a result.
func (p *Pipeline) dispatch(ctx context.Context, ex executor.Executor, in order.Intent) (out executor.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var timer *monitor.Timer
	if p.Metrics != nil {
		timer = monitor.NewTimer(p.Metrics.ExecutorLatency)
	}
	out, err = ex.Dispatch(ctx, in)
	if timer != nil {
		timer.Stop()
	}
	return out, err
}

// fail finalizes an ERROR result.
func (p *Pipeline) fail(ctx context.Context, res order.ExecutionResult, timer *monitor.Timer) order.ExecutionResult {
	metricErrors.Inc()
	if p.Metrics != nil {
		p.Metrics.IncrementErrors()
	}
	return p.finish(ctx, res, timer)
}

// finish stamps, records, and publishes the result. Exactly one finish
// happens per Submit; nothing after the stamp may change the result.
func (p *Pipeline) finish(ctx context.Context, res order.ExecutionResult, timer *monitor.Timer) order.ExecutionResult {
	res.Timestamp = time.Now()

	if res.Blocked() {
		metricBlocked.WithLabelValues(blockedGate(res.Status)).Inc()
		if p.Metrics != nil {
			p.Metrics.IncrementBlocked()
		}
	}

	p.audit(ctx, res)
	p.publish(res)

	if timer != nil {
		timer.Stop()
	}
	if res.Status == order.StatusError || res.Blocked() {
		log.Printf("[PIPELINE] %s %s %s %v on %s → %s (%s)",
			res.RunID[:8], res.Intent.Side, res.Intent.Symbol, res.Intent.Qty,
			res.Environment, res.Status, res.Reason)
	}
	return res
}

func blockedGate(s order.Status) string {
	switch s {
	case order.StatusBlockedByGovernance:
		return "governance"
	case order.StatusBlockedByRisk:
		return "risk"
	case order.StatusBlockedBySafety:
		return "safety"
	case order.StatusBlockedByEnvironment:
		return "kill_switch"
	}
	return "none"
}

// audit writes the result to the executions table. Audit failures are
// logged and swallowed; they must never change the outcome.
func (p *Pipeline) audit(ctx context.Context, res order.ExecutionResult) {
	if p.Audit == nil {
		return
	}

	var timer *monitor.Timer
	if p.Metrics != nil {
		timer = monitor.NewTimer(p.Metrics.DBLatency)
	}

	checks := ""
	if len(res.RiskChecks) > 0 {
		if b, err := json.Marshal(res.RiskChecks); err == nil {
			checks = string(b)
		}
	}

	err := p.Audit.InsertExecution(ctx, db.Execution{
		RunID:               res.RunID,
		ClientOrderID:       res.Intent.ClientOrderID,
		Symbol:              res.Intent.Symbol,
		Side:                string(res.Intent.Side),
		OrderType:           string(res.Intent.Type),
		Qty:                 res.Intent.Qty,
		Price:               res.Intent.Price,
		TimeInForce:         res.Intent.TimeInForce,
		Strategy:            res.Intent.Strategy,
		Environment:         string(res.Environment),
		Status:              string(res.Status),
		BlockedByGovernance: res.BlockedByGovernance,
		BlockedByRisk:       res.BlockedByRisk,
		BlockedBySafety:     res.BlockedBySafety,
		ExecutorCalled:      res.ExecutorCalled,
		ValidationError:     res.ValidationError,
		Reason:              res.Reason,
		RiskChecks:          checks,
		VenueOrderID:        res.VenueOrderID,
		FilledQty:           res.FilledQty,
		AvgPrice:            res.AvgPrice,
		CreatedAt:           res.Timestamp,
	})
	if timer != nil {
		timer.Stop()
	}
	if err != nil {
		log.Printf("[PIPELINE] audit write failed for %s: %v", res.RunID, err)
	}
}

// publish fans the decision out on the bus. Risk and governance blocks
// and errors additionally hit the alert topics.
func (p *Pipeline) publish(res order.ExecutionResult) {
	if p.Bus == nil {
		return
	}
	p.Bus.Publish(events.EventDecision, res)

	switch res.Status {
	case order.StatusBlockedByRisk, order.StatusBlockedByGovernance:
		p.Bus.Publish(events.EventOrderBlocked, res)
	case order.StatusError:
		p.Bus.Publish(events.EventOrderError, res)
	}
}

func breachReason(a risk.Assessment) string {
	for _, c := range a.Checks {
		if c.Severity == risk.SeverityBreach {
			return fmt.Sprintf("%s breached: %.4f of limit %.4f (ratio %.2f)",
				c.Name, c.Current, c.Limit, c.Ratio)
		}
	}
	return "risk limit breached"
}
