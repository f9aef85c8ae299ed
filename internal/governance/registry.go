package governance

import (
	"fmt"
	"sort"
)

// Lock is the governance state of one capability.
type Lock struct {
	Capability string `json:"capability"`
	Locked     bool   `json:"locked"`
	Reason     string `json:"reason,omitempty"`
}

// ViolationError means a locked capability was required.
type ViolationError struct {
	Capability string
	Reason     string
}

func (e *ViolationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("governance violation: capability %q is locked", e.Capability)
	}
	return fmt.Sprintf("governance violation: capability %q is locked: %s", e.Capability, e.Reason)
}

// Registry answers whether a capability is locked. It is built once and
// never changes: no write API exists, and the constructor copies its input
// so later mutation of the caller's map cannot leak in. Capabilities the
// registry never heard of are not governed and pass.
type Registry struct {
	locks map[string]Lock
}

// NewRegistry builds a registry from capability lock states.
func NewRegistry(locks map[string]Lock) *Registry {
	copied := make(map[string]Lock, len(locks))
	for cap, l := range locks {
		l.Capability = cap
		copied[cap] = l
	}
	return &Registry{locks: copied}
}

// Check returns the lock state for a capability. The zero capability is
// never governed.
func (r *Registry) Check(capability string) Lock {
	if capability == "" {
		return Lock{}
	}
	if l, ok := r.locks[capability]; ok {
		return l
	}
	return Lock{Capability: capability}
}

// Violation returns the violation for a capability, or nil when it may be
// used.
func (r *Registry) Violation(capability string) *ViolationError {
	l := r.Check(capability)
	if !l.Locked {
		return nil
	}
	return &ViolationError{Capability: l.Capability, Reason: l.Reason}
}

// Snapshot lists every governed capability in stable order.
func (r *Registry) Snapshot() []Lock {
	out := make([]Lock, 0, len(r.locks))
	for _, l := range r.locks {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Capability < out[j].Capability })
	return out
}
