package order

import (
	"math"
	"testing"
)

func validIntent() Intent {
	return Intent{
		Symbol:      "BTCUSDT",
		Side:        SideBuy,
		Type:        TypeLimit,
		Qty:         0.5,
		Price:       50000,
		TimeInForce: "GTC",
		Environment: EnvPaper,
	}
}

// Ensures the validation matrix rejects each malformed field and reports the
// field that failed first.
func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Intent)
		symbols   map[string]bool
		wantField string // "" means the intent should pass
	}{
		{
			name:   "valid limit order",
			mutate: func(in *Intent) {},
		},
		{
			name:   "valid market order without price",
			mutate: func(in *Intent) { in.Type = TypeMarket; in.Price = 0 },
		},
		{
			name:      "empty symbol",
			mutate:    func(in *Intent) { in.Symbol = "  " },
			wantField: "symbol",
		},
		{
			name:      "symbol outside allowlist",
			mutate:    func(in *Intent) { in.Symbol = "DOGEUSDT" },
			symbols:   map[string]bool{"BTCUSDT": true, "ETHUSDT": true},
			wantField: "symbol",
		},
		{
			name:   "symbol inside allowlist",
			mutate: func(in *Intent) {},
			symbols: map[string]bool{
				"BTCUSDT": true,
			},
		},
		{
			name:      "unknown side",
			mutate:    func(in *Intent) { in.Side = "HOLD" },
			wantField: "side",
		},
		{
			name:      "unknown order type",
			mutate:    func(in *Intent) { in.Type = "TRAILING" },
			wantField: "type",
		},
		{
			name:      "zero qty",
			mutate:    func(in *Intent) { in.Qty = 0 },
			wantField: "qty",
		},
		{
			name:      "negative qty",
			mutate:    func(in *Intent) { in.Qty = -1 },
			wantField: "qty",
		},
		{
			name:      "NaN qty",
			mutate:    func(in *Intent) { in.Qty = math.NaN() },
			wantField: "qty",
		},
		{
			name:      "infinite qty",
			mutate:    func(in *Intent) { in.Qty = math.Inf(1) },
			wantField: "qty",
		},
		{
			name:      "NaN price",
			mutate:    func(in *Intent) { in.Price = math.NaN() },
			wantField: "price",
		},
		{
			name:      "negative price",
			mutate:    func(in *Intent) { in.Price = -10 },
			wantField: "price",
		},
		{
			name:      "limit order without price",
			mutate:    func(in *Intent) { in.Price = 0 },
			wantField: "price",
		},
		{
			name:      "stop order without price",
			mutate:    func(in *Intent) { in.Type = TypeStop; in.Price = 0 },
			wantField: "price",
		},
		{
			name:      "unknown time in force",
			mutate:    func(in *Intent) { in.TimeInForce = "GTD" },
			wantField: "time_in_force",
		},
		{
			name:   "empty time in force is venue default",
			mutate: func(in *Intent) { in.TimeInForce = "" },
		},
		{
			name:      "unknown environment",
			mutate:    func(in *Intent) { in.Environment = "staging" },
			wantField: "environment",
		},
		{
			name:      "empty environment",
			mutate:    func(in *Intent) { in.Environment = "" },
			wantField: "environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIntent()
			tt.mutate(&in)

			verr := Validate(in, tt.symbols)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("Validate returned %v, expected pass", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("Validate passed, expected failure on %s", tt.wantField)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("failed field=%s, expected %s", verr.Field, tt.wantField)
			}
			if verr.Error() == "" {
				t.Fatalf("validation error has empty message")
			}
		})
	}
}

// Ensures notional prefers the intent's own price and falls back to the mark.
func TestIntentNotional(t *testing.T) {
	in := validIntent()
	if got := in.Notional(60000); got != 25000 {
		t.Fatalf("Notional=%v, expected 25000 (intent price wins)", got)
	}

	in.Price = 0
	if got := in.Notional(60000); got != 30000 {
		t.Fatalf("Notional=%v, expected 30000 (mark fallback)", got)
	}

	if got := in.Notional(0); got != 0 {
		t.Fatalf("Notional=%v, expected 0 when unpriceable", got)
	}
}
