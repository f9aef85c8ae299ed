package marketdata

import (
	"context"
	"log"
	"math/rand"
	"time"

	"trading-gate/internal/events"
)

// SyntheticFeed generates random-walk ticks for sandboxed environments.
// Every tick it publishes is tagged synthetic, so the safety gate will
// refuse to let them back live or testnet orders.
type SyntheticFeed struct {
	Bus        *events.Bus
	Symbols    []string
	StartPrice float64
	Step       float64
	Interval   time.Duration
}

func (f *SyntheticFeed) Start(ctx context.Context) {
	if f.Bus == nil {
		log.Println("[MARKETDATA] synthetic feed: bus not set")
		return
	}
	if len(f.Symbols) == 0 {
		f.Symbols = []string{"BTCUSDT"}
	}
	if f.StartPrice == 0 {
		f.StartPrice = 100.0
	}
	if f.Step == 0 {
		f.Step = 0.5
	}
	if f.Interval == 0 {
		f.Interval = time.Second
	}

	prices := make(map[string]float64, len(f.Symbols))
	for _, sym := range f.Symbols {
		prices[sym] = f.StartPrice
	}

	go func() {
		t := time.NewTicker(f.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for _, sym := range f.Symbols {
					// simple random walk
					p := prices[sym] + (rand.Float64()*2-1)*f.Step
					if p <= 0 {
						p = f.Step
					}
					prices[sym] = p
					f.Bus.Publish(events.EventPriceTick, Tick{
						Symbol:     sym,
						Price:      p,
						Provenance: ProvenanceSynthetic,
						At:         time.Now(),
					})
				}
			}
		}
	}()

	log.Printf("[MARKETDATA] synthetic feed started for %d symbols (interval %s)", len(f.Symbols), f.Interval)
}
