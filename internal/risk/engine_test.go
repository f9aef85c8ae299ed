package risk

import (
	"reflect"
	"testing"
)

func onlyLimit(name string, limit float64) Config {
	cfg := Config{WarningThreshold: 0.8}
	switch name {
	case LimitOrderNotional:
		cfg.MaxOrderNotional = limit
	case LimitSymbolExposure:
		cfg.MaxSymbolExposure = limit
	case LimitTotalExposure:
		cfg.MaxTotalExposure = limit
	case LimitDailyLoss:
		cfg.MaxDailyLoss = limit
	case LimitDailyLossPct:
		cfg.MaxDailyLossPct = limit
	}
	return cfg
}

// Ensures the severity ladder sits exactly on the documented boundaries:
// OK below the warning threshold, WARNING from there up to the limit,
// BREACH at and past it.
func TestEvaluateSeverityBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		notional float64
		want     Severity
	}{
		{name: "well under", notional: 100, want: SeverityOK},
		{name: "just under warning", notional: 799, want: SeverityOK},
		{name: "at warning threshold", notional: 800, want: SeverityWarning},
		{name: "just under limit", notional: 999, want: SeverityWarning},
		{name: "at limit", notional: 1000, want: SeverityBreach},
		{name: "past limit", notional: 1500, want: SeverityBreach},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 1, Price: tt.notional}
			got := Evaluate(in, Exposure{}, onlyLimit(LimitOrderNotional, 1000))

			if len(got.Checks) != 1 {
				t.Fatalf("checks=%d, expected 1", len(got.Checks))
			}
			if got.Severity != tt.want {
				t.Fatalf("severity=%s, expected %s (ratio %.3f)", got.Severity, tt.want, got.Checks[0].Ratio)
			}
			if got.Checks[0].Severity != tt.want {
				t.Fatalf("check severity=%s, expected %s", got.Checks[0].Severity, tt.want)
			}
		})
	}
}

// Ensures the overall grade is the worst individual check, not the last one.
func TestEvaluateMaxSeverityWins(t *testing.T) {
	cfg := Config{
		MaxOrderNotional: 100000, // far away: OK
		MaxTotalExposure: 1000,   // breached below
		MaxDailyLoss:     1000,   // warning below
		WarningThreshold: 0.8,
	}
	in := OrderInput{Symbol: "ETHUSDT", Side: "BUY", Qty: 1, Price: 500}
	exp := Exposure{TotalExposure: 900, DailyRealizedLoss: 850}

	got := Evaluate(in, exp, cfg)
	if got.Severity != SeverityBreach {
		t.Fatalf("severity=%s, expected BREACH", got.Severity)
	}

	bySev := map[Severity]int{}
	for _, c := range got.Checks {
		bySev[c.Severity]++
	}
	if bySev[SeverityOK] != 1 || bySev[SeverityWarning] != 1 || bySev[SeverityBreach] != 1 {
		t.Fatalf("check spread=%v, expected one of each severity", bySev)
	}
	if len(got.Violations()) != 2 {
		t.Fatalf("violations=%d, expected 2", len(got.Violations()))
	}
}

// Ensures limits at zero or below are disabled and produce no checks.
func TestEvaluateDisabledLimits(t *testing.T) {
	in := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 100, Price: 1e9}
	got := Evaluate(in, Exposure{TotalExposure: 1e12}, Config{})

	if len(got.Checks) != 0 {
		t.Fatalf("checks=%d, expected none with every limit disabled", len(got.Checks))
	}
	if got.Severity != SeverityOK {
		t.Fatalf("severity=%s, expected OK", got.Severity)
	}
}

// Ensures exposure projection adds notional on BUY and subtracts it,
// floored at zero, on SELL.
func TestEvaluateExposureProjection(t *testing.T) {
	cfg := onlyLimit(LimitSymbolExposure, 1000)

	buy := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 1, Price: 600}
	got := Evaluate(buy, Exposure{SymbolExposure: 500}, cfg)
	if got.Severity != SeverityBreach {
		t.Fatalf("BUY projection severity=%s, expected BREACH (500+600 over 1000)", got.Severity)
	}
	if got.Checks[0].Current != 1100 {
		t.Fatalf("BUY projected=%v, expected 1100", got.Checks[0].Current)
	}

	sell := OrderInput{Symbol: "BTCUSDT", Side: "SELL", Qty: 1, Price: 600}
	got = Evaluate(sell, Exposure{SymbolExposure: 900}, cfg)
	if got.Severity != SeverityOK {
		t.Fatalf("SELL projection severity=%s, expected OK (900-600 under 1000)", got.Severity)
	}
	if got.Checks[0].Current != 300 {
		t.Fatalf("SELL projected=%v, expected 300", got.Checks[0].Current)
	}

	bigSell := OrderInput{Symbol: "BTCUSDT", Side: "SELL", Qty: 10, Price: 600}
	got = Evaluate(bigSell, Exposure{SymbolExposure: 900}, cfg)
	if got.Checks[0].Current != 0 {
		t.Fatalf("oversized SELL projected=%v, expected floor at 0", got.Checks[0].Current)
	}
}

// Ensures a market BUY with no mark price fails closed on the enabled
// notional and exposure limits, while a SELL grades on current exposure.
func TestEvaluateUnpriceableFailsClosed(t *testing.T) {
	cfg := Config{MaxOrderNotional: 1000, MaxSymbolExposure: 5000, WarningThreshold: 0.8}

	buy := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 1, Price: 0}
	got := Evaluate(buy, Exposure{SymbolExposure: 100, MarkPrice: 0}, cfg)
	if got.Severity != SeverityBreach {
		t.Fatalf("severity=%s, expected BREACH for unpriceable BUY", got.Severity)
	}
	for _, c := range got.Checks {
		if c.Severity != SeverityBreach {
			t.Fatalf("check %s severity=%s, expected BREACH", c.Name, c.Severity)
		}
	}

	sell := OrderInput{Symbol: "BTCUSDT", Side: "SELL", Qty: 1, Price: 0}
	got = Evaluate(sell, Exposure{SymbolExposure: 100, MarkPrice: 0}, cfg)
	for _, c := range got.Checks {
		if c.Name == LimitSymbolExposure && c.Severity != SeverityOK {
			t.Fatalf("SELL exposure severity=%s, expected OK on current value", c.Severity)
		}
	}
}

// Ensures the mark price fills in for market orders before failing closed.
func TestEvaluateUsesMarkForMarketOrders(t *testing.T) {
	in := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 2, Price: 0}
	got := Evaluate(in, Exposure{MarkPrice: 300}, onlyLimit(LimitOrderNotional, 1000))

	if got.Checks[0].Current != 600 {
		t.Fatalf("notional=%v, expected 600 from mark", got.Checks[0].Current)
	}
	if got.Severity != SeverityOK {
		t.Fatalf("severity=%s, expected OK", got.Severity)
	}
}

// Ensures position counting: only a BUY on a flat symbol opens a slot.
func TestEvaluateOpenPositions(t *testing.T) {
	cfg := Config{MaxOpenPositions: 3, WarningThreshold: 0.8}

	tests := []struct {
		name string
		side string
		exp  Exposure
		want Severity
	}{
		{name: "buy opens slot at cap", side: "BUY", exp: Exposure{OpenPositions: 3}, want: SeverityBreach},
		{name: "buy into existing position", side: "BUY", exp: Exposure{OpenPositions: 3, HasPosition: true}, want: SeverityBreach},
		{name: "buy under cap", side: "BUY", exp: Exposure{OpenPositions: 1}, want: SeverityOK},
		{name: "sell never opens", side: "SELL", exp: Exposure{OpenPositions: 2}, want: SeverityOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := OrderInput{Symbol: "BTCUSDT", Side: tt.side, Qty: 1, Price: 10}
			got := Evaluate(in, tt.exp, cfg)
			if got.Severity != tt.want {
				t.Fatalf("severity=%s, expected %s", got.Severity, tt.want)
			}
		})
	}
}

// Ensures daily loss limits grade the realized loss as it stands, and the
// percentage form fails closed only when a real loss has no equity base.
func TestEvaluateDailyLoss(t *testing.T) {
	cfg := Config{MaxDailyLoss: 1000, MaxDailyLossPct: 0.05, WarningThreshold: 0.8}
	in := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 1, Price: 10}

	got := Evaluate(in, Exposure{DailyRealizedLoss: 900, EquityAtOpen: 20000}, cfg)
	for _, c := range got.Checks {
		switch c.Name {
		case LimitDailyLoss:
			if c.Severity != SeverityWarning {
				t.Fatalf("%s severity=%s, expected WARNING at 900/1000", c.Name, c.Severity)
			}
		case LimitDailyLossPct:
			if c.Severity != SeverityWarning {
				t.Fatalf("%s severity=%s, expected WARNING at 4.5%%/5%%", c.Name, c.Severity)
			}
		}
	}

	got = Evaluate(in, Exposure{DailyRealizedLoss: 0, EquityAtOpen: 0}, cfg)
	for _, c := range got.Checks {
		if c.Name == LimitDailyLossPct && c.Severity != SeverityOK {
			t.Fatalf("zero loss with unknown equity severity=%s, expected OK", c.Severity)
		}
	}

	got = Evaluate(in, Exposure{DailyRealizedLoss: 500, EquityAtOpen: 0}, cfg)
	for _, c := range got.Checks {
		if c.Name == LimitDailyLossPct && c.Severity != SeverityBreach {
			t.Fatalf("loss with unknown equity severity=%s, expected BREACH", c.Severity)
		}
	}
}

// Ensures Evaluate is deterministic and leaves its inputs untouched.
func TestEvaluateDeterministic(t *testing.T) {
	in := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Qty: 0.5, Price: 40000}
	exp := Exposure{SymbolExposure: 10000, TotalExposure: 30000, OpenPositions: 2, DailyRealizedLoss: 100, EquityAtOpen: 100000, MarkPrice: 41000}
	cfg := DefaultConfig()

	before := exp
	a := Evaluate(in, exp, cfg)
	b := Evaluate(in, exp, cfg)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two evaluations differ:\n%+v\n%+v", a, b)
	}
	if exp != before {
		t.Fatalf("exposure mutated: %+v -> %+v", before, exp)
	}
}
