package order

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError describes why an intent failed structural validation.
// It rides on the result; the gate never returns it as a call error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s: %s", e.Field, e.Reason)
}

var validTIF = map[string]bool{
	"":    true, // venue default
	"GTC": true,
	"IOC": true,
	"FOK": true,
	"GTX": true,
}

// Validate checks an intent against the closed enums and, when symbols is
// non-empty, the symbol allowlist. The first failure wins; a nil return
// means the intent is structurally sound.
func Validate(in Intent, symbols map[string]bool) *ValidationError {
	sym := strings.TrimSpace(in.Symbol)
	if sym == "" {
		return &ValidationError{Field: "symbol", Reason: "empty"}
	}
	if len(symbols) > 0 && !symbols[sym] {
		return &ValidationError{Field: "symbol", Reason: fmt.Sprintf("%q not in allowlist", sym)}
	}

	switch in.Side {
	case SideBuy, SideSell:
	default:
		return &ValidationError{Field: "side", Reason: fmt.Sprintf("unknown side %q", in.Side)}
	}

	switch in.Type {
	case TypeMarket, TypeLimit, TypeStop:
	default:
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown order type %q", in.Type)}
	}

	if math.IsNaN(in.Qty) || math.IsInf(in.Qty, 0) {
		return &ValidationError{Field: "qty", Reason: "not a finite number"}
	}
	if in.Qty <= 0 {
		return &ValidationError{Field: "qty", Reason: fmt.Sprintf("must be positive, got %v", in.Qty)}
	}

	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return &ValidationError{Field: "price", Reason: "not a finite number"}
	}
	if in.Price < 0 {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("must not be negative, got %v", in.Price)}
	}
	if (in.Type == TypeLimit || in.Type == TypeStop) && in.Price == 0 {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("required for %s orders", in.Type)}
	}

	if !validTIF[in.TimeInForce] {
		return &ValidationError{Field: "time_in_force", Reason: fmt.Sprintf("unknown value %q", in.TimeInForce)}
	}

	if !in.Environment.Valid() {
		return &ValidationError{Field: "environment", Reason: fmt.Sprintf("unknown environment %q", in.Environment)}
	}

	return nil
}
