package main

import (
	"context"
	"log"
	"time"

	"trading-gate/internal/events"
	"trading-gate/internal/executor"
	"trading-gate/internal/governance"
	"trading-gate/internal/killswitch"
	"trading-gate/internal/ledger"
	"trading-gate/internal/marketdata"
	"trading-gate/internal/order"
	"trading-gate/internal/pipeline"
	"trading-gate/internal/risk"
	"trading-gate/internal/safety"
	"trading-gate/pkg/approval"
)

// gate_demo walks a few submissions through the gate fully in memory.
// It does not touch a database or any venue.
//
// Usage:
//   go run ./scripts/gate_demo
//
// It will:
//   1) Fill a paper order.
//   2) Show governance blocking a live order.
//   3) Show risk blocking an oversized order.
//   4) Throw the kill switch and show dispatch halting.

func main() {
	log.Println("=== gate demo starting ===")

	ctx := context.Background()

	marks := marketdata.NewStore()
	marks.Set(marketdata.Tick{Symbol: "BTCUSDT", Price: 100, Provenance: marketdata.ProvenanceReal})

	hash, err := approval.HashCode("demo")
	if err != nil {
		log.Fatalf("hash code error: %v", err)
	}
	approver, err := approval.NewStatic(hash)
	if err != nil {
		log.Fatalf("approver error: %v", err)
	}
	sw := killswitch.NewManager(killswitch.NewMemoryStore(), approver)

	execs, err := executor.NewRegistry(map[order.Environment]executor.Executor{
		order.EnvPaper: executor.NewPaper(marks),
	})
	if err != nil {
		log.Fatalf("registry error: %v", err)
	}

	pipe := &pipeline.Pipeline{
		Governance: governance.NewRegistry(map[string]governance.Lock{
			"live_order_execution": {Locked: true, Reason: "demo lock"},
		}),
		Safety:     safety.NewGuard(marks),
		RiskConfig: risk.Config{MaxOrderNotional: 5000, WarningThreshold: 0.8, BlockOnViolation: true},
		Ledger:     ledger.NewMemory(marks, 100000),
		Switch:     sw,
		Executors:  execs,
		Bus:        events.NewBus(),
	}

	submit := func(label string, in order.Intent) {
		res, err := pipe.Submit(ctx, in, pipeline.PolicyReturn)
		if err != nil {
			log.Printf("[%s] error: %v", label, err)
			return
		}
		log.Printf("[%s] status=%s reason=%q filled=%.4f@%.2f", label, res.Status, res.Reason, res.FilledQty, res.AvgPrice)
	}

	base := order.Intent{
		Symbol:      "BTCUSDT",
		Side:        order.SideBuy,
		Type:        order.TypeLimit,
		Price:       100,
		Environment: order.EnvPaper,
		CreatedAt:   time.Now(),
	}

	log.Println("[SCENARIO 1] paper order fills")
	in := base
	in.Qty = 0.5
	submit("paper", in)

	log.Println("[SCENARIO 2] governance blocks live")
	in = base
	in.Qty = 0.5
	in.Environment = order.EnvLive
	submit("live", in)

	log.Println("[SCENARIO 3] risk blocks oversized order")
	in = base
	in.Qty = 100
	submit("oversized", in)

	log.Println("[SCENARIO 4] kill switch halts dispatch")
	if _, err := sw.Trigger(ctx, "demo", "operator"); err != nil {
		log.Fatalf("trigger error: %v", err)
	}
	in = base
	in.Qty = 0.5
	submit("killed", in)

	log.Println("=== gate demo complete ===")
}
