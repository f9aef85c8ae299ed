package executor

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"trading-gate/internal/order"
)

// Shadow records what the gate would have sent and acknowledges it as
// SUBMITTED. Nothing ever routes anywhere; it exists to run the full gate
// against production traffic without touching a venue.
type Shadow struct {
	mu     sync.Mutex
	keep   int
	recent []order.Intent
}

// NewShadow builds a shadow executor keeping the most recent keep intents.
func NewShadow(keep int) *Shadow {
	if keep <= 0 {
		keep = 256
	}
	return &Shadow{keep: keep}
}

func (s *Shadow) Name() string { return "shadow" }

func (s *Shadow) Dispatch(ctx context.Context, in order.Intent) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	s.recent = append(s.recent, in)
	if len(s.recent) > s.keep {
		s.recent = s.recent[len(s.recent)-s.keep:]
	}
	s.mu.Unlock()

	log.Printf("[EXECUTOR] shadow recorded %s %s %v", in.Side, in.Symbol, in.Qty)
	return Outcome{
		Status:       order.StatusSubmitted,
		VenueOrderID: "shadow-" + uuid.NewString(),
	}, nil
}

// Recent returns a copy of the recorded intents, newest last.
func (s *Shadow) Recent() []order.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Intent, len(s.recent))
	copy(out, s.recent)
	return out
}
