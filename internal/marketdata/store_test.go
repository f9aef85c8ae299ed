package marketdata

import (
	"testing"
	"time"
)

// Ensures the store keeps the latest tick per symbol and reports unknown
// provenance for symbols it never saw.
func TestStore(t *testing.T) {
	s := NewStore()

	if got := s.Provenance("BTCUSDT"); got != ProvenanceUnknown {
		t.Fatalf("provenance=%s, expected unknown before any tick", got)
	}
	if got := s.Mark("BTCUSDT"); got != 0 {
		t.Fatalf("mark=%v, expected 0 before any tick", got)
	}

	s.Set(Tick{Symbol: "BTCUSDT", Price: 50000, Provenance: ProvenanceReal})
	s.Set(Tick{Symbol: "BTCUSDT", Price: 50100, Provenance: ProvenanceReal})
	s.Set(Tick{Symbol: "ETHUSDT", Price: 3000, Provenance: ProvenanceSynthetic})

	if got := s.Mark("BTCUSDT"); got != 50100 {
		t.Fatalf("mark=%v, expected latest tick 50100", got)
	}
	if got := s.Provenance("BTCUSDT"); got != ProvenanceReal {
		t.Fatalf("provenance=%s, expected real", got)
	}
	if got := s.Provenance("ETHUSDT"); got != ProvenanceSynthetic {
		t.Fatalf("provenance=%s, expected synthetic", got)
	}

	tick, ok := s.Lookup("ETHUSDT")
	if !ok {
		t.Fatalf("Lookup missed a recorded symbol")
	}
	if tick.At.IsZero() {
		t.Fatalf("Set left the tick timestamp zero")
	}
	if !ProvenanceReal.Real() || ProvenanceSynthetic.Real() || ProvenanceReplay.Real() || ProvenanceUnknown.Real() {
		t.Fatalf("Real() misclassifies a provenance")
	}
}

// Ensures ticks set with an explicit timestamp keep it.
func TestStoreKeepsTimestamps(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Set(Tick{Symbol: "BTCUSDT", Price: 1, Provenance: ProvenanceReplay, At: at})

	tick, _ := s.Lookup("BTCUSDT")
	if !tick.At.Equal(at) {
		t.Fatalf("At=%v, expected %v", tick.At, at)
	}
}
