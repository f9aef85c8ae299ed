package events

// Event enumerates high-level topics inside the gate.
type Event string

const (
	EventPriceTick Event = "price_tick"

	// One EventDecision fires per submission, whatever the outcome.
	// EventOrderBlocked and EventOrderError narrow it for alerting.
	EventDecision     Event = "gate.decision"
	EventOrderBlocked Event = "gate.blocked"
	EventOrderError   Event = "gate.error"

	EventOrderFilled Event = "order.filled"

	EventKillSwitch Event = "killswitch.transition"
)
