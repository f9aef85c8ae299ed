package marketdata

import (
	"context"
	"sync"
	"time"

	"trading-gate/internal/events"
)

// Provenance tags where a price came from. The safety gate keys off it:
// only real feeds may back orders for non-sandboxed environments.
type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSynthetic Provenance = "synthetic"
	ProvenanceReplay    Provenance = "replay"
	ProvenanceUnknown   Provenance = "unknown" // no tick seen for the symbol
)

// Real reports whether the provenance is a live venue feed.
func (p Provenance) Real() bool {
	return p == ProvenanceReal
}

// Tick is one observed price with its origin.
type Tick struct {
	Symbol     string     `json:"symbol"`
	Price      float64    `json:"price"`
	Provenance Provenance `json:"provenance"`
	At         time.Time  `json:"at"`
}

// Store holds the latest tick per symbol. It replaces ad hoc price maps:
// every mark the gate uses for pricing or safety decisions flows through
// here so its provenance is never lost.
type Store struct {
	mu    sync.RWMutex
	ticks map[string]Tick
}

func NewStore() *Store {
	return &Store{ticks: make(map[string]Tick)}
}

// Set records a tick, replacing any earlier one for the symbol.
func (s *Store) Set(t Tick) {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	s.mu.Lock()
	if s.ticks == nil {
		s.ticks = make(map[string]Tick)
	}
	s.ticks[t.Symbol] = t
	s.mu.Unlock()
}

// Mark returns the latest price for the symbol, or 0 when none was seen.
func (s *Store) Mark(sym string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks[sym].Price
}

// Lookup returns the latest tick and whether one exists.
func (s *Store) Lookup(sym string) (Tick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.ticks[sym]
	return t, ok
}

// Provenance returns the origin of the symbol's latest tick, or unknown
// when the store never saw one.
func (s *Store) Provenance(sym string) Provenance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.ticks[sym]
	if !ok {
		return ProvenanceUnknown
	}
	return t.Provenance
}

// Watch folds bus price ticks into the store until ctx ends. Payloads that
// are not Ticks are ignored.
func (s *Store) Watch(ctx context.Context, bus *events.Bus) {
	ch, unsub := bus.Subscribe(events.EventPriceTick, 256)
	go func() {
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if t, ok := msg.(Tick); ok {
					s.Set(t)
				}
			}
		}
	}()
}
