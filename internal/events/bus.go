package events

import (
	"sync"
)

// Bus is a lightweight pub/sub broker using channels. The gate publishes
// decisions, blocks, and kill switch transitions through it; the notifier
// and websocket stream consume them.
type Bus struct {
	mu   sync.RWMutex
	subs map[Event][]chan any
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Event][]chan any)}
}

// Subscribe registers a listener for an event and returns the channel and an
// unsubscribe function. Calling unsubscribe more than once is safe.
func (b *Bus) Subscribe(e Event, buffer int) (<-chan any, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan any, buffer)
	b.subs[e] = append(b.subs[e], ch)

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.subs[e]
			for i, c := range subs {
				if c == ch {
					close(c)
					b.subs[e] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
		})
	}

	return ch, unsub
}

// Publish fans the payload out to subscribers without blocking. A slow
// subscriber loses the message rather than stalling the gate; nothing on
// the bus is load bearing for the submission path.
func (b *Bus) Publish(e Event, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[e] {
		select {
		case ch <- payload:
		default:
			// drop for slow subscribers
		}
	}
}
