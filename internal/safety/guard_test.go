package safety

import (
	"errors"
	"testing"

	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
)

// Ensures the provenance matrix: sandboxed environments accept anything,
// live and testnet accept only real feeds and fail closed on unknown.
func TestGuardCheck(t *testing.T) {
	tests := []struct {
		name      string
		env       order.Environment
		prov      marketdata.Provenance // unknown = no tick recorded
		wantBlock bool
	}{
		{name: "live on real feed", env: order.EnvLive, prov: marketdata.ProvenanceReal},
		{name: "live on synthetic feed", env: order.EnvLive, prov: marketdata.ProvenanceSynthetic, wantBlock: true},
		{name: "live on replayed feed", env: order.EnvLive, prov: marketdata.ProvenanceReplay, wantBlock: true},
		{name: "live with no tick", env: order.EnvLive, prov: marketdata.ProvenanceUnknown, wantBlock: true},
		{name: "testnet on real feed", env: order.EnvTestnet, prov: marketdata.ProvenanceReal},
		{name: "testnet on synthetic feed", env: order.EnvTestnet, prov: marketdata.ProvenanceSynthetic, wantBlock: true},
		{name: "paper on synthetic feed", env: order.EnvPaper, prov: marketdata.ProvenanceSynthetic},
		{name: "shadow on replayed feed", env: order.EnvShadow, prov: marketdata.ProvenanceReplay},
		{name: "backtest with no tick", env: order.EnvBacktest, prov: marketdata.ProvenanceUnknown},
		{name: "research on synthetic feed", env: order.EnvResearch, prov: marketdata.ProvenanceSynthetic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks := marketdata.NewStore()
			if tt.prov != marketdata.ProvenanceUnknown {
				marks.Set(marketdata.Tick{Symbol: "BTCUSDT", Price: 50000, Provenance: tt.prov})
			}

			g := NewGuard(marks)
			verr := g.Check(order.Intent{Symbol: "BTCUSDT", Environment: tt.env})

			if tt.wantBlock && verr == nil {
				t.Fatalf("guard passed, expected violation")
			}
			if !tt.wantBlock && verr != nil {
				t.Fatalf("guard blocked: %v", verr)
			}
			if verr != nil {
				var target *ViolationError
				if !errors.As(error(verr), &target) {
					t.Fatalf("violation not matchable with errors.As")
				}
				if verr.Error() == "" {
					t.Fatalf("violation has empty message")
				}
			}
		})
	}
}

// Ensures a guard with no store behaves as if every symbol were unknown.
func TestGuardWithoutStore(t *testing.T) {
	g := &Guard{}
	if g.Check(order.Intent{Symbol: "BTCUSDT", Environment: order.EnvLive}) == nil {
		t.Fatalf("nil store let a live order through")
	}
	if g.Check(order.Intent{Symbol: "BTCUSDT", Environment: order.EnvPaper}) != nil {
		t.Fatalf("nil store blocked a sandboxed order")
	}
}
