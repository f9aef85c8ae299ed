package executor

import (
	"context"
	"fmt"

	"trading-gate/internal/order"
	"trading-gate/pkg/venue"
)

// Venue adapts a venue.Gateway to the executor contract. Testnet and live
// deployments construct one per gateway; this repository ships no gateway
// of its own.
type Venue struct {
	Gateway venue.Gateway
}

func NewVenue(gw venue.Gateway) *Venue {
	return &Venue{Gateway: gw}
}

func (v *Venue) Name() string {
	if v.Gateway == nil {
		return "venue(unconfigured)"
	}
	return "venue(" + v.Gateway.Name() + ")"
}

// ackStatus maps venue order states onto the gate's status set. Anything
// the venue invents beyond the known set is treated as a plain
// acknowledgement.
var ackStatus = map[string]order.Status{
	"NEW":              order.StatusSubmitted,
	"ACCEPTED":         order.StatusSubmitted,
	"FILLED":           order.StatusFilled,
	"PARTIALLY_FILLED": order.StatusPartiallyFilled,
	"REJECTED":         order.StatusRejected,
	"CANCELED":         order.StatusCancelled,
	"CANCELLED":        order.StatusCancelled,
	"EXPIRED":          order.StatusExpired,
}

func (v *Venue) Dispatch(ctx context.Context, in order.Intent) (Outcome, error) {
	if v.Gateway == nil {
		return Outcome{}, fmt.Errorf("venue executor: no gateway configured for %s", in.Environment)
	}

	ack, err := v.Gateway.PlaceOrder(ctx, venue.OrderRequest{
		ClientOrderID: in.ClientOrderID,
		Symbol:        in.Symbol,
		Side:          string(in.Side),
		Type:          string(in.Type),
		Qty:           in.Qty,
		Price:         in.Price,
		TimeInForce:   in.TimeInForce,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("place order on %s: %w", v.Gateway.Name(), err)
	}

	return Outcome{
		Status:       ackStatus[ack.Status],
		VenueOrderID: ack.VenueOrderID,
		FilledQty:    ack.FilledQty,
		AvgPrice:     ack.AvgPrice,
	}, nil
}
