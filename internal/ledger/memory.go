package ledger

import (
	"context"
	"log"
	"sync"
	"time"

	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
	"trading-gate/internal/risk"
)

// position is one symbol's committed book entry.
type position struct {
	qty      float64
	avgPrice float64
}

// Memory keeps the books in process: committed positions, realized PnL for
// the day, and the notional currently held by in-flight reservations. The
// paper and shadow deployments run on it; live deployments swap in a
// portfolio service behind the same Ledger interface.
type Memory struct {
	mu sync.Mutex

	marks *marketdata.Store

	positions map[string]position
	// reservedBySymbol holds in-flight BUY notional per symbol; pending
	// counts symbols with a reservation that would open a new position.
	reservedBySymbol map[string]float64
	reservedTotal    float64
	pendingOpens     map[string]int

	realizedPnL  float64
	equityAtOpen float64
}

// NewMemory builds an in-process ledger. Marks may be nil when every order
// carries its own price.
func NewMemory(marks *marketdata.Store, equityAtOpen float64) *Memory {
	return &Memory{
		marks:            marks,
		positions:        make(map[string]position),
		reservedBySymbol: make(map[string]float64),
		pendingOpens:     make(map[string]int),
		equityAtOpen:     equityAtOpen,
	}
}

// Reserve takes the exposure snapshot and the hold in one critical
// section. The returned snapshot already carries the order's projected
// notional, so concurrent reservations stack instead of racing.
func (m *Memory) Reserve(ctx context.Context, in order.Intent) (*Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mark := 0.0
	if m.marks != nil {
		mark = m.marks.Mark(in.Symbol)
	}
	notional := in.Notional(mark)

	m.mu.Lock()
	defer m.mu.Unlock()

	buying := in.Side == order.SideBuy
	pos, hasPos := m.positions[in.Symbol]
	held := hasPos && pos.qty > 0

	if buying {
		m.reservedBySymbol[in.Symbol] += notional
		m.reservedTotal += notional
		if !held {
			m.pendingOpens[in.Symbol]++
		}
	}

	res := &Reservation{
		intent:   in,
		notional: notional,
		release:  m.resolve,
		Exposure: risk.Exposure{
			SymbolExposure:    m.symbolExposureLocked(in.Symbol),
			TotalExposure:     m.totalExposureLocked(),
			OpenPositions:     m.openPositionsLocked(),
			HasPosition:       held || m.pendingOpens[in.Symbol] > 1,
			DailyRealizedLoss: m.dailyLossLocked(),
			EquityAtOpen:      m.equityAtOpen,
			MarkPrice:         mark,
			AsOf:              time.Now(),
		},
	}
	// The snapshot must NOT pre-count this order's own projection: the
	// risk engine projects it itself. Back the hold out of the numbers
	// while keeping it on the books against everyone else.
	if buying {
		res.Exposure.SymbolExposure -= notional
		res.Exposure.TotalExposure -= notional
		if !held && m.pendingOpens[in.Symbol] == 1 {
			res.Exposure.OpenPositions--
		}
	}
	return res, nil
}

// resolve is the single exit for reservations: drop the hold and, when
// committed, fold the fill into positions and realized PnL.
func (m *Memory) resolve(r *Reservation, committed bool, fillQty, fillPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := r.intent
	if in.Side == order.SideBuy {
		m.reservedBySymbol[in.Symbol] -= r.notional
		if m.reservedBySymbol[in.Symbol] <= 0 {
			delete(m.reservedBySymbol, in.Symbol)
		}
		m.reservedTotal -= r.notional
		if m.reservedTotal < 0 {
			m.reservedTotal = 0
		}
		if pos := m.positions[in.Symbol]; pos.qty <= 0 {
			if m.pendingOpens[in.Symbol] > 0 {
				m.pendingOpens[in.Symbol]--
			}
			if m.pendingOpens[in.Symbol] <= 0 {
				delete(m.pendingOpens, in.Symbol)
			}
		}
	}

	if !committed {
		return
	}

	qty := fillQty
	price := fillPrice
	if qty <= 0 {
		qty = in.Qty
	}
	if price <= 0 {
		if in.Qty > 0 {
			price = r.notional / in.Qty
		}
	}
	m.applyFillLocked(in.Symbol, in.Side, qty, price)
}

func (m *Memory) applyFillLocked(symbol string, side order.Side, qty, price float64) {
	pos := m.positions[symbol]
	switch side {
	case order.SideBuy:
		newQty := pos.qty + qty
		if newQty > 0 {
			pos.avgPrice = (pos.avgPrice*pos.qty + price*qty) / newQty
		}
		pos.qty = newQty
	case order.SideSell:
		if qty > pos.qty {
			qty = pos.qty
		}
		m.realizedPnL += (price - pos.avgPrice) * qty
		pos.qty -= qty
	}

	if pos.qty <= 0 {
		delete(m.positions, symbol)
	} else {
		m.positions[symbol] = pos
	}
}

// RecordFill applies an out-of-band fill, for reconciling against venue
// reports that arrive after dispatch.
func (m *Memory) RecordFill(symbol string, side order.Side, qty, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyFillLocked(symbol, side, qty, price)
}

// ResetDay rolls the daily PnL window and restamps the equity base.
func (m *Memory) ResetDay(equityAtOpen float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.realizedPnL = 0
	if equityAtOpen > 0 {
		m.equityAtOpen = equityAtOpen
	}
	log.Printf("[LEDGER] day reset, equity at open %.2f", m.equityAtOpen)
}

// Snapshot returns the current exposure without reserving anything, for
// the ops surface and risk previews.
func (m *Memory) Snapshot(symbol string) risk.Exposure {
	m.mu.Lock()
	defer m.mu.Unlock()

	mark := 0.0
	if m.marks != nil {
		mark = m.marks.Mark(symbol)
	}
	pos := m.positions[symbol]
	return risk.Exposure{
		SymbolExposure:    m.symbolExposureLocked(symbol),
		TotalExposure:     m.totalExposureLocked(),
		OpenPositions:     m.openPositionsLocked(),
		HasPosition:       pos.qty > 0,
		DailyRealizedLoss: m.dailyLossLocked(),
		EquityAtOpen:      m.equityAtOpen,
		MarkPrice:         mark,
		AsOf:              time.Now(),
	}
}

func (m *Memory) symbolExposureLocked(symbol string) float64 {
	pos := m.positions[symbol]
	return pos.qty*pos.avgPrice + m.reservedBySymbol[symbol]
}

func (m *Memory) totalExposureLocked() float64 {
	total := m.reservedTotal
	for _, pos := range m.positions {
		total += pos.qty * pos.avgPrice
	}
	return total
}

func (m *Memory) openPositionsLocked() int {
	n := len(m.positions)
	for _, pending := range m.pendingOpens {
		if pending > 0 {
			n++
		}
	}
	return n
}

func (m *Memory) dailyLossLocked() float64 {
	if m.realizedPnL >= 0 {
		return 0
	}
	return -m.realizedPnL
}

// Position returns the committed qty and average price for a symbol.
func (m *Memory) Position(symbol string) (qty, avgPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos := m.positions[symbol]
	return pos.qty, pos.avgPrice
}
