package venue

import "context"

// OrderRequest is the venue-neutral order shape handed to a gateway.
type OrderRequest struct {
	ClientOrderID string
	Symbol        string
	Side          string // BUY or SELL
	Type          string // MARKET, LIMIT, STOP
	Qty           float64
	Price         float64
	TimeInForce   string
}

// OrderAck is what a venue reports back for a placed order. Status uses
// the venue's vocabulary (NEW/FILLED/...); the executor maps it onto the
// gate's status set.
type OrderAck struct {
	VenueOrderID string
	Status       string
	FilledQty    float64
	AvgPrice     float64
}

// Gateway abstracts a trading venue. Deployments plug their testnet or
// live client in behind it; this repository ships none.
type Gateway interface {
	Name() string
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CancelOrder(ctx context.Context, symbol, venueOrderID string) error
}
