package risk

import "time"

// Severity grades a limit check.
type Severity string

const (
	SeverityOK      Severity = "OK"
	SeverityWarning Severity = "WARNING"
	SeverityBreach  Severity = "BREACH"
)

var severityRank = map[Severity]int{
	SeverityOK:      0,
	SeverityWarning: 1,
	SeverityBreach:  2,
}

// Max returns the more severe of s and other.
func (s Severity) Max(other Severity) Severity {
	if severityRank[other] > severityRank[s] {
		return other
	}
	return s
}

// Limit names carried on checks and violation details.
const (
	LimitOrderNotional  = "max_order_notional"
	LimitSymbolExposure = "max_symbol_exposure"
	LimitTotalExposure  = "max_total_exposure"
	LimitOpenPositions  = "max_open_positions"
	LimitDailyLoss      = "max_daily_loss"
	LimitDailyLossPct   = "max_daily_loss_pct"
)

// LimitCheck records one limit evaluation. Current holds the projected value
// under the order where the limit is forward looking.
type LimitCheck struct {
	Name     string   `json:"name"`
	Current  float64  `json:"current"`
	Limit    float64  `json:"limit"`
	Ratio    float64  `json:"ratio"`
	Severity Severity `json:"severity"`
}

// Assessment is the outcome of evaluating an order against every enabled
// limit. Severity is the worst grade across checks.
type Assessment struct {
	Severity Severity     `json:"severity"`
	Checks   []LimitCheck `json:"checks"`
}

// Breached reports whether any limit is at or past its cap.
func (a Assessment) Breached() bool {
	return a.Severity == SeverityBreach
}

// Violations returns the checks graded WARNING or worse.
func (a Assessment) Violations() []LimitCheck {
	var out []LimitCheck
	for _, c := range a.Checks {
		if c.Severity != SeverityOK {
			out = append(out, c)
		}
	}
	return out
}

// Config defines the gate's risk limits. A limit set to zero or below is
// disabled.
type Config struct {
	MaxOrderNotional  float64 `yaml:"max_order_notional" json:"max_order_notional"`
	MaxSymbolExposure float64 `yaml:"max_symbol_exposure" json:"max_symbol_exposure"`
	MaxTotalExposure  float64 `yaml:"max_total_exposure" json:"max_total_exposure"`
	MaxOpenPositions  int     `yaml:"max_open_positions" json:"max_open_positions"`
	MaxDailyLoss      float64 `yaml:"max_daily_loss" json:"max_daily_loss"`
	MaxDailyLossPct   float64 `yaml:"max_daily_loss_pct" json:"max_daily_loss_pct"`

	// WarningThreshold is the fraction of a limit where checks start
	// grading WARNING. 0.8 = 80%.
	WarningThreshold float64 `yaml:"warning_threshold" json:"warning_threshold"`

	// BlockOnViolation makes a BREACH assessment block the order. When
	// false the gate records the assessment and lets the order through.
	BlockOnViolation bool `yaml:"block_on_violation" json:"block_on_violation"`
}

// Exposure is the account snapshot an order is evaluated against. It must
// reflect every order committed before the evaluation began.
type Exposure struct {
	SymbolExposure    float64   `json:"symbol_exposure"`
	TotalExposure     float64   `json:"total_exposure"`
	OpenPositions     int       `json:"open_positions"`
	HasPosition       bool      `json:"has_position"` // the order's symbol already holds a position
	DailyRealizedLoss float64   `json:"daily_realized_loss"`
	EquityAtOpen      float64   `json:"equity_at_open"`
	MarkPrice         float64   `json:"mark_price"` // reference price for the order's symbol, 0 when unknown
	AsOf              time.Time `json:"as_of"`
}

// OrderInput describes the order under evaluation.
type OrderInput struct {
	Symbol string
	Side   string // BUY or SELL
	Qty    float64
	Price  float64 // 0 when the order carries no price of its own
}

// DefaultConfig returns the default gate limits.
func DefaultConfig() Config {
	return Config{
		MaxOrderNotional:  10000.0,
		MaxSymbolExposure: 50000.0,
		MaxTotalExposure:  100000.0,
		MaxOpenPositions:  10,
		MaxDailyLoss:      2000.0,
		MaxDailyLossPct:   0.05,
		WarningThreshold:  0.8,
		BlockOnViolation:  true,
	}
}
