package events

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Per-observer buffer, sized to hold one iteration of weekly events.
const defaultBufferSize = 256

// subscription is one observer of a run: a buffered channel plus the event
// types it asked for. An empty filter means every type.
type subscription struct {
	ch     chan Event
	filter []EventType
}

func (s *subscription) wants(t EventType) bool {
	return len(s.filter) == 0 || slices.Contains(s.filter, t)
}

// Bus fans simulation events out to observers (the websocket relay, tests).
// Delivery never blocks the Monte Carlo loop: an observer whose buffer is full
// misses the event and the miss is counted.
// A nil *Bus discards everything, so runs without observers pass nil.
type Bus struct {
	mu         sync.RWMutex
	subs       map[<-chan Event]*subscription
	closed     bool
	bufferSize int

	published atomic.Int64
	dropped   atomic.Int64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:       make(map[<-chan Event]*subscription),
		bufferSize: defaultBufferSize,
	}
}

// Subscribe registers an observer for the given event types, or for all types
// when none are given. Subscribing to a closed bus yields a closed channel.
func (b *Bus) Subscribe(types ...EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{ch: make(chan Event, b.bufferSize), filter: types}
	if b.closed {
		close(sub.ch)
		return sub.ch
	}
	b.subs[sub.ch] = sub
	return sub.ch
}

// Unsubscribe detaches the observer and closes its channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(sub.ch)
	}
}

// Publish delivers event to every observer whose filter matches.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	b.published.Add(1)
	for _, sub := range b.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// SubscriberCount reports the number of attached observers.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Published reports how many events were accepted by Publish.
func (b *Bus) Published() int64 {
	if b == nil {
		return 0
	}
	return b.published.Load()
}

// Dropped reports how many deliveries were lost to full observer buffers.
func (b *Bus) Dropped() int64 {
	if b == nil {
		return 0
	}
	return b.dropped.Load()
}

// Close detaches all observers and closes their channels.
// Later publishes are ignored.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for ch, sub := range b.subs {
		delete(b.subs, ch)
		close(sub.ch)
	}
}
