package killswitch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"trading-gate/internal/events"
)

// DefaultCooldown applies when a manager is built without an explicit one.
const DefaultCooldown = 5 * time.Minute

// saveAttempts bounds the retry loop against cross-process version races.
const saveAttempts = 5

// Manager drives the kill switch state machine over a Store. All cooldown
// arithmetic happens lazily at read time from the injected clock; no timer
// goroutine ever flips the state on its own.
//
// The mutex serializes writers inside this process. Writers in other
// processes (the operator CLI on the same database) are handled by the
// store's version check.
type Manager struct {
	store    Store
	approver Approver
	cooldown time.Duration
	clock    func() time.Time
	bus      *events.Bus
	mu       sync.Mutex
}

// Option tunes a Manager.
type Option func(*Manager)

// WithClock injects the time source, for tests that walk the cooldown.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithCooldown overrides the mandatory recovery cooldown.
func WithCooldown(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.cooldown = d
		}
	}
}

// WithBus publishes every transition as an EventKillSwitch.
func WithBus(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// NewManager builds a manager over the given store. The approver guards
// RequestRecovery; passing nil refuses every recovery request.
func NewManager(store Store, approver Approver, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		approver: approver,
		cooldown: DefaultCooldown,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the record as the store holds it right now. The gate
// calls this on every submission; the state is never cached.
func (m *Manager) Current(ctx context.Context) (Record, error) {
	return m.store.Load(ctx)
}

// Status returns the operator view, with the cooldown position computed
// from the clock at call time.
func (m *Manager) Status(ctx context.Context) (Snapshot, error) {
	rec, err := m.store.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load kill switch record: %w", err)
	}
	return m.snapshot(rec), nil
}

func (m *Manager) snapshot(rec Record) Snapshot {
	snap := Snapshot{Record: rec}
	if rec.State == StateRecovering {
		remaining := m.remaining(rec)
		snap.CooldownRemaining = remaining.Seconds()
		snap.CanComplete = remaining <= 0
	}
	return snap
}

// remaining computes how much cooldown is left, never below zero. The
// record's own stamped cooldown governs, not the manager's current setting.
func (m *Manager) remaining(rec Record) time.Duration {
	cooldown := time.Duration(rec.CooldownSeconds) * time.Second
	elapsed := m.clock().Sub(rec.RecoveryRequestedAt)
	remaining := cooldown - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Trigger moves the switch to KILLED from any state. It never refuses:
// triggering an already killed switch overwrites the trigger metadata,
// last writer wins.
func (m *Manager) Trigger(ctx context.Context, reason, by string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.mutate(ctx, func(rec *Record) error {
		now := m.clock()
		rec.State = StateKilled
		rec.TriggerReason = reason
		rec.TriggeredBy = by
		rec.TriggeredAt = now
		rec.RecoveryRequestedAt = time.Time{}
		rec.ApprovedBy = ""
		rec.CooldownSeconds = 0
		return nil
	}, Transition{To: StateKilled, Reason: reason, Actor: by})
	if err != nil {
		return rec, err
	}

	log.Printf("[KILLSWITCH] ⚠️ TRIGGERED by %s: %s", by, reason)
	return rec, nil
}

// RequestRecovery moves KILLED to RECOVERING once the approver accepts.
// Any other starting state, or a rejected approval, leaves the record
// untouched and returns a RecoveryNotAllowedError.
func (m *Manager) RequestRecovery(ctx context.Context, approvedBy, code string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.store.Load(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("load kill switch record: %w", err)
	}
	if cur.State != StateKilled {
		return cur, &RecoveryNotAllowedError{State: cur.State, Reason: "recovery can only be requested while KILLED"}
	}
	if m.approver == nil {
		return cur, &RecoveryNotAllowedError{State: cur.State, Reason: "no approval contract configured"}
	}
	if err := m.approver.Approve(approvedBy, code); err != nil {
		return cur, &RecoveryNotAllowedError{State: cur.State, Reason: fmt.Sprintf("approval rejected: %v", err)}
	}

	rec, err := m.mutate(ctx, func(rec *Record) error {
		if rec.State != StateKilled {
			return &RecoveryNotAllowedError{State: rec.State, Reason: "recovery can only be requested while KILLED"}
		}
		rec.State = StateRecovering
		rec.RecoveryRequestedAt = m.clock()
		rec.ApprovedBy = approvedBy
		rec.CooldownSeconds = int(m.cooldown / time.Second)
		return nil
	}, Transition{To: StateRecovering, Reason: "recovery requested", Actor: approvedBy})
	if err != nil {
		return rec, err
	}

	log.Printf("[KILLSWITCH] recovery requested by %s, cooldown %s", approvedBy, m.cooldown)
	return rec, nil
}

// CompleteRecovery moves RECOVERING to ACTIVE once the cooldown has fully
// elapsed. Calling early refuses with the remaining time and changes
// nothing.
func (m *Manager) CompleteRecovery(ctx context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.store.Load(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("load kill switch record: %w", err)
	}
	if cur.State != StateRecovering {
		return cur, &RecoveryNotAllowedError{State: cur.State, Reason: "no recovery in progress"}
	}
	if remaining := m.remaining(cur); remaining > 0 {
		return cur, &RecoveryNotAllowedError{State: cur.State, Remaining: remaining}
	}

	actor := cur.ApprovedBy
	rec, err := m.mutate(ctx, func(rec *Record) error {
		if rec.State != StateRecovering {
			return &RecoveryNotAllowedError{State: rec.State, Reason: "no recovery in progress"}
		}
		if remaining := m.remaining(*rec); remaining > 0 {
			return &RecoveryNotAllowedError{State: rec.State, Remaining: remaining}
		}
		rec.State = StateActive
		rec.TriggerReason = ""
		rec.TriggeredBy = ""
		rec.TriggeredAt = time.Time{}
		rec.RecoveryRequestedAt = time.Time{}
		rec.ApprovedBy = ""
		rec.CooldownSeconds = 0
		return nil
	}, Transition{To: StateActive, Reason: "recovery completed", Actor: actor})
	if err != nil {
		return rec, err
	}

	log.Printf("[KILLSWITCH] ✅ recovery complete, switch ACTIVE")
	return rec, nil
}

// History returns the most recent transitions, newest first.
func (m *Manager) History(ctx context.Context, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	return m.store.History(ctx, limit)
}

// mutate applies apply to a fresh copy of the record and saves it with a
// version check, retrying when another process wrote in between. The
// history row and bus event go out only after the save sticks.
func (m *Manager) mutate(ctx context.Context, apply func(*Record) error, tr Transition) (Record, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		cur, err := m.store.Load(ctx)
		if err != nil {
			return Record{}, fmt.Errorf("load kill switch record: %w", err)
		}

		next := cur
		if err := apply(&next); err != nil {
			return cur, err
		}
		next.Version = cur.Version + 1
		next.UpdatedAt = m.clock()

		err = m.store.Save(ctx, next, cur.Version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Record{}, fmt.Errorf("save kill switch record: %w", err)
		}

		tr.From = cur.State
		tr.At = next.UpdatedAt
		if err := m.store.AppendHistory(ctx, tr); err != nil {
			log.Printf("[KILLSWITCH] history append failed: %v", err)
		}
		if m.bus != nil {
			m.bus.Publish(events.EventKillSwitch, tr)
		}
		return next, nil
	}
	return Record{}, fmt.Errorf("save kill switch record: %w", ErrVersionConflict)
}
