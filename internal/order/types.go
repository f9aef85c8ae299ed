package order

import "time"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType determines how an order prices itself.
type OrderType string

const (
	TypeMarket OrderType = "MARKET"
	TypeLimit  OrderType = "LIMIT"
	TypeStop   OrderType = "STOP"
)

// Intent is an order request entering the gate. It is treated as immutable
// once submitted: the pipeline copies it onto the result and never writes
// through it.
type Intent struct {
	ClientOrderID string      `json:"client_order_id,omitempty"`
	Symbol        string      `json:"symbol"`
	Side          Side        `json:"side"`
	Type          OrderType   `json:"type"`
	Qty           float64     `json:"qty"`
	Price         float64     `json:"price,omitempty"` // required for LIMIT and STOP
	TimeInForce   string      `json:"time_in_force,omitempty"`
	Strategy      string      `json:"strategy,omitempty"` // strategy key, for audit and alerts
	Environment   Environment `json:"environment"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Notional returns the order's notional value. The intent's own price wins
// when it has one; otherwise the given mark price is used. Returns 0 when
// neither is available.
func (in Intent) Notional(mark float64) float64 {
	if in.Price > 0 {
		return in.Price * in.Qty
	}
	if mark > 0 {
		return mark * in.Qty
	}
	return 0
}
