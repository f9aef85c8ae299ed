package ledger

import (
	"context"
	"sync"
	"testing"

	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
)

func intent(sym string, side order.Side, qty, price float64) order.Intent {
	return order.Intent{
		Symbol:      sym,
		Side:        side,
		Type:        order.TypeLimit,
		Qty:         qty,
		Price:       price,
		Environment: order.EnvPaper,
	}
}

func TestReserveCommitMovesBooks(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil, 10000)

	res, err := m.Reserve(ctx, intent("BTCUSDT", order.SideBuy, 2, 100))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Exposure.SymbolExposure != 0 || res.Exposure.TotalExposure != 0 {
		t.Fatalf("first snapshot should see empty books, got %+v", res.Exposure)
	}
	if res.Notional() != 200 {
		t.Fatalf("notional = %v, want 200", res.Notional())
	}

	res.Commit(2, 100)

	qty, avg := m.Position("BTCUSDT")
	if qty != 2 || avg != 100 {
		t.Fatalf("position = %v @ %v, want 2 @ 100", qty, avg)
	}
	snap := m.Snapshot("BTCUSDT")
	if snap.SymbolExposure != 200 || snap.TotalExposure != 200 {
		t.Fatalf("exposure after commit = %+v", snap)
	}
	if snap.OpenPositions != 1 || !snap.HasPosition {
		t.Fatalf("open positions after commit = %+v", snap)
	}
}

func TestReleaseLeavesBooksUntouched(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil, 10000)

	res, err := m.Reserve(ctx, intent("BTCUSDT", order.SideBuy, 1, 500))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	res.Release()
	res.Commit(1, 500) // second resolution must be a no-op

	snap := m.Snapshot("BTCUSDT")
	if snap.TotalExposure != 0 || snap.OpenPositions != 0 {
		t.Fatalf("released reservation leaked exposure: %+v", snap)
	}
}

// Two concurrent buys on the same flat symbol: the second snapshot must
// already carry the first hold, or both could pass a limit only one fits
// under.
func TestConcurrentReservationsStack(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil, 10000)

	first, err := m.Reserve(ctx, intent("ETHUSDT", order.SideBuy, 1, 3000))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	second, err := m.Reserve(ctx, intent("ETHUSDT", order.SideBuy, 1, 3000))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if second.Exposure.SymbolExposure != 3000 {
		t.Fatalf("second snapshot symbol exposure = %v, want 3000 (first hold visible)",
			second.Exposure.SymbolExposure)
	}
	if !second.Exposure.HasPosition {
		t.Fatalf("second buy on a symbol with a pending open should not project another position")
	}

	first.Release()
	second.Release()
	if snap := m.Snapshot("ETHUSDT"); snap.TotalExposure != 0 || snap.OpenPositions != 0 {
		t.Fatalf("holds not fully released: %+v", snap)
	}
}

func TestSellRealizesPnL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil, 10000)

	buy, _ := m.Reserve(ctx, intent("BTCUSDT", order.SideBuy, 2, 100))
	buy.Commit(2, 100)

	// Sell half at a loss.
	sell, _ := m.Reserve(ctx, intent("BTCUSDT", order.SideSell, 1, 90))
	sell.Commit(1, 90)

	snap := m.Snapshot("BTCUSDT")
	if snap.DailyRealizedLoss != 10 {
		t.Fatalf("daily loss = %v, want 10", snap.DailyRealizedLoss)
	}
	qty, _ := m.Position("BTCUSDT")
	if qty != 1 {
		t.Fatalf("remaining qty = %v, want 1", qty)
	}

	m.ResetDay(9990)
	if snap := m.Snapshot("BTCUSDT"); snap.DailyRealizedLoss != 0 || snap.EquityAtOpen != 9990 {
		t.Fatalf("day reset: %+v", snap)
	}
}

func TestMarketOrderUsesMark(t *testing.T) {
	marks := marketdata.NewStore()
	marks.Set(marketdata.Tick{Symbol: "BTCUSDT", Price: 250, Provenance: marketdata.ProvenanceReal})
	m := NewMemory(marks, 10000)

	in := intent("BTCUSDT", order.SideBuy, 2, 0)
	in.Type = order.TypeMarket
	res, err := m.Reserve(context.Background(), in)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Notional() != 500 {
		t.Fatalf("notional = %v, want 500 from mark", res.Notional())
	}
	if res.Exposure.MarkPrice != 250 {
		t.Fatalf("mark = %v, want 250", res.Exposure.MarkPrice)
	}
	res.Release()
}

// Hammer the ledger from many goroutines to shake out races under -race.
func TestReserveStorm(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil, 100000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.Reserve(ctx, intent("BTCUSDT", order.SideBuy, 1, 10))
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if i%2 == 0 {
				res.Commit(1, 10)
			} else {
				res.Release()
			}
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot("BTCUSDT")
	if snap.TotalExposure != 250 { // 25 commits of notional 10
		t.Fatalf("total exposure = %v, want 250", snap.TotalExposure)
	}
	qty, _ := m.Position("BTCUSDT")
	if qty != 25 {
		t.Fatalf("qty = %v, want 25", qty)
	}
}
