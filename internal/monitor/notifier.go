package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"trading-gate/internal/events"
	"trading-gate/internal/killswitch"
	"trading-gate/internal/order"
)

// Notifier forwards blocked and errored gate decisions, and kill switch
// transitions, to an AlertSink. It rides the bus: the gate never waits
// for it, and a slow sink only costs dropped bus messages.
type Notifier struct {
	Bus  *events.Bus
	Sink AlertSink
}

func (n *Notifier) Start(ctx context.Context) {
	if n.Bus == nil || n.Sink == nil {
		log.Println("[MONITOR] notifier not fully configured; skipping")
		return
	}

	blocked, unsubBlocked := n.Bus.Subscribe(events.EventOrderBlocked, 50)
	errored, unsubErrored := n.Bus.Subscribe(events.EventOrderError, 50)
	switched, unsubSwitch := n.Bus.Subscribe(events.EventKillSwitch, 10)

	go func() {
		defer unsubBlocked()
		defer unsubErrored()
		defer unsubSwitch()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-blocked:
				if !ok {
					return
				}
				n.send(formatDecision(msg))
			case msg, ok := <-errored:
				if !ok {
					return
				}
				n.send(formatDecision(msg))
			case msg, ok := <-switched:
				if !ok {
					return
				}
				n.send(formatTransition(msg))
			}
		}
	}()

	log.Println("[MONITOR] notifier started")
}

func (n *Notifier) send(msg string) {
	if err := n.Sink.Send(msg); err != nil {
		log.Printf("[MONITOR] alert delivery failed: %v", err)
	}
}

func formatDecision(msg any) string {
	res, ok := msg.(order.ExecutionResult)
	if !ok {
		return stamp("gate alert")
	}
	detail := res.Reason
	if detail == "" {
		detail = res.ValidationError
	}
	return stamp(fmt.Sprintf("%s %s %s %v on %s: %s",
		res.Status, res.Intent.Side, res.Intent.Symbol, res.Intent.Qty, res.Environment, detail))
}

func formatTransition(msg any) string {
	tr, ok := msg.(killswitch.Transition)
	if !ok {
		return stamp("kill switch transition")
	}
	return stamp(fmt.Sprintf("kill switch %s → %s by %s: %s", tr.From, tr.To, tr.Actor, tr.Reason))
}

func stamp(s string) string {
	return "[" + time.Now().Format(time.RFC3339) + "] " + s
}
