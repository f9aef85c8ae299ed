package executor

import (
	"context"
	"errors"
	"testing"

	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
	"trading-gate/pkg/venue"
)

func TestPaperFillsLimitAtOwnPrice(t *testing.T) {
	p := NewPaper(nil)
	out, err := p.Dispatch(context.Background(), order.Intent{
		Symbol: "BTCUSDT", Side: order.SideBuy, Type: order.TypeLimit, Qty: 0.5, Price: 40000,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out.Status != order.StatusFilled || out.AvgPrice != 40000 || out.FilledQty != 0.5 {
		t.Fatalf("outcome = %+v", out)
	}
	if out.VenueOrderID == "" {
		t.Fatal("expected a venue order id")
	}
}

func TestPaperMarketUsesMarkWithSlippage(t *testing.T) {
	marks := marketdata.NewStore()
	marks.Set(marketdata.Tick{Symbol: "BTCUSDT", Price: 10000, Provenance: marketdata.ProvenanceSynthetic})

	p := NewPaper(marks)
	p.SlippageBps = 10 // 10 bps

	out, err := p.Dispatch(context.Background(), order.Intent{
		Symbol: "BTCUSDT", Side: order.SideBuy, Type: order.TypeMarket, Qty: 1,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out.AvgPrice != 10010 {
		t.Fatalf("buy fill price = %v, want 10010", out.AvgPrice)
	}

	out, err = p.Dispatch(context.Background(), order.Intent{
		Symbol: "BTCUSDT", Side: order.SideSell, Type: order.TypeMarket, Qty: 1,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out.AvgPrice != 9990 {
		t.Fatalf("sell fill price = %v, want 9990", out.AvgPrice)
	}
	if p.Fills() != 2 {
		t.Fatalf("fills = %d, want 2", p.Fills())
	}
}

func TestPaperMarketWithoutMarkErrors(t *testing.T) {
	p := NewPaper(marketdata.NewStore())
	_, err := p.Dispatch(context.Background(), order.Intent{
		Symbol: "NOPE", Side: order.SideBuy, Type: order.TypeMarket, Qty: 1,
	})
	if err == nil {
		t.Fatal("expected error for unmarked symbol")
	}
}

func TestShadowRecordsAndAcks(t *testing.T) {
	s := NewShadow(2)
	for i := 0; i < 3; i++ {
		out, err := s.Dispatch(context.Background(), order.Intent{Symbol: "ETHUSDT", Side: order.SideBuy, Qty: float64(i + 1)})
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if out.Status != order.StatusSubmitted {
			t.Fatalf("status = %s, want SUBMITTED", out.Status)
		}
		if out.FilledQty != 0 {
			t.Fatal("shadow must never report fills")
		}
	}
	recent := s.Recent()
	if len(recent) != 2 || recent[0].Qty != 2 || recent[1].Qty != 3 {
		t.Fatalf("recent window = %+v", recent)
	}
}

type fakeGateway struct {
	ack venue.OrderAck
	err error
	got venue.OrderRequest
}

func (g *fakeGateway) Name() string { return "fake" }
func (g *fakeGateway) PlaceOrder(_ context.Context, req venue.OrderRequest) (venue.OrderAck, error) {
	g.got = req
	return g.ack, g.err
}
func (g *fakeGateway) CancelOrder(context.Context, string, string) error { return nil }

func TestVenueMapsAckStatuses(t *testing.T) {
	tests := []struct {
		venueStatus string
		want        order.Status
	}{
		{"NEW", order.StatusSubmitted},
		{"FILLED", order.StatusFilled},
		{"PARTIALLY_FILLED", order.StatusPartiallyFilled},
		{"REJECTED", order.StatusRejected},
		{"CANCELED", order.StatusCancelled},
		{"EXPIRED", order.StatusExpired},
		{"SOMETHING_NEW", ""}, // unknown → plain ack, gate records SUCCESS
	}
	for _, tt := range tests {
		t.Run(tt.venueStatus, func(t *testing.T) {
			gw := &fakeGateway{ack: venue.OrderAck{VenueOrderID: "v-1", Status: tt.venueStatus}}
			out, err := NewVenue(gw).Dispatch(context.Background(), order.Intent{
				Symbol: "BTCUSDT", Side: order.SideSell, Type: order.TypeLimit, Qty: 1, Price: 100,
			})
			if err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			if out.Status != tt.want {
				t.Fatalf("status = %q, want %q", out.Status, tt.want)
			}
			if gw.got.Side != "SELL" || gw.got.Qty != 1 {
				t.Fatalf("request = %+v", gw.got)
			}
		})
	}
}

func TestVenueWrapsGatewayError(t *testing.T) {
	boom := errors.New("venue down")
	v := NewVenue(&fakeGateway{err: boom})
	_, err := v.Dispatch(context.Background(), order.Intent{Symbol: "BTCUSDT", Qty: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped venue error", err)
	}
}

func TestRegistryResolvesOnlyMapped(t *testing.T) {
	paper := NewPaper(nil)
	reg, err := NewRegistry(map[order.Environment]Executor{
		order.EnvPaper:  paper,
		order.EnvShadow: NewShadow(0),
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	if ex, ok := reg.Resolve(order.EnvPaper); !ok || ex != paper {
		t.Fatal("paper executor not resolved")
	}
	if _, ok := reg.Resolve(order.EnvLive); ok {
		t.Fatal("live must not resolve without a mapping")
	}
	if got := len(reg.Environments()); got != 2 {
		t.Fatalf("mapped environments = %d, want 2", got)
	}

	if _, err := NewRegistry(map[order.Environment]Executor{"mars": paper}); err == nil {
		t.Fatal("unknown environment must be rejected")
	}
}
