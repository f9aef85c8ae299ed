package killswitch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State of the kill switch. Anything other than ACTIVE blocks dispatch.
type State string

const (
	StateActive     State = "ACTIVE"
	StateKilled     State = "KILLED"
	StateRecovering State = "RECOVERING"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateActive, StateKilled, StateRecovering:
		return true
	}
	return false
}

// Record is the durable kill switch state. A single authoritative record
// exists per deployment; Version stamps every write so two writers racing
// on the same store cannot silently clobber each other.
type Record struct {
	State               State     `json:"state"`
	TriggerReason       string    `json:"trigger_reason,omitempty"`
	TriggeredBy         string    `json:"triggered_by,omitempty"`
	TriggeredAt         time.Time `json:"triggered_at"`
	RecoveryRequestedAt time.Time `json:"recovery_requested_at"`
	ApprovedBy          string    `json:"approved_by,omitempty"`
	CooldownSeconds     int       `json:"cooldown_seconds,omitempty"`
	Version             int64     `json:"version"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Transition is one history entry. Every state change appends exactly one.
type Transition struct {
	ID     int64     `json:"id,omitempty"`
	From   State     `json:"from"`
	To     State     `json:"to"`
	Reason string    `json:"reason,omitempty"`
	Actor  string    `json:"actor,omitempty"`
	At     time.Time `json:"at"`
}

// Store persists the record and its history. Load on a fresh store returns
// an ACTIVE record at version zero. Save must reject a write whose expected
// version no longer matches with ErrVersionConflict.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record, expect int64) error
	AppendHistory(ctx context.Context, tr Transition) error
	History(ctx context.Context, limit int) ([]Transition, error)
}

// Approver validates a recovery request before the switch leaves KILLED.
type Approver interface {
	Approve(approvedBy, code string) error
}

// ErrVersionConflict means another writer changed the record first.
var ErrVersionConflict = errors.New("kill switch record version conflict")

// RecoveryNotAllowedError means a recovery operation was refused. The
// record is unchanged when this returns.
type RecoveryNotAllowedError struct {
	State     State
	Remaining time.Duration
	Reason    string
}

func (e *RecoveryNotAllowedError) Error() string {
	if e.Remaining > 0 {
		return fmt.Sprintf("recovery not allowed: cooldown has %s remaining", e.Remaining.Round(time.Second))
	}
	return fmt.Sprintf("recovery not allowed in state %s: %s", e.State, e.Reason)
}

// Snapshot is the operator view of the switch: the record plus the derived
// cooldown position, computed at read time.
type Snapshot struct {
	Record
	CooldownRemaining float64 `json:"cooldown_remaining_seconds"`
	CanComplete       bool    `json:"can_complete"`
}
