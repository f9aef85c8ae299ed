package executor

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
)

// Paper fills immediately against the latest mark, fee-free. LIMIT and
// STOP orders fill at their own price; MARKET orders need a mark and pay
// a configurable slippage.
type Paper struct {
	Marks       *marketdata.Store
	SlippageBps float64

	fills atomic.Uint64
}

func NewPaper(marks *marketdata.Store) *Paper {
	return &Paper{Marks: marks}
}

func (p *Paper) Name() string { return "paper" }

func (p *Paper) Dispatch(ctx context.Context, in order.Intent) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	price := in.Price
	if price <= 0 {
		if p.Marks != nil {
			price = p.Marks.Mark(in.Symbol)
		}
		if price <= 0 {
			return Outcome{}, fmt.Errorf("paper executor: no mark for %s", in.Symbol)
		}
		// Market orders cross the spread; lean the fill against the taker.
		slip := price * p.SlippageBps / 10000
		if in.Side == order.SideBuy {
			price += slip
		} else {
			price -= slip
		}
	}

	p.fills.Add(1)
	out := Outcome{
		Status:       order.StatusFilled,
		VenueOrderID: "paper-" + uuid.NewString(),
		FilledQty:    in.Qty,
		AvgPrice:     price,
	}
	log.Printf("[EXECUTOR] paper fill %s %s %v @ %.4f", in.Side, in.Symbol, in.Qty, price)
	return out, nil
}

// Fills reports how many orders this executor has filled.
func (p *Paper) Fills() uint64 { return p.fills.Load() }
