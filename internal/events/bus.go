package events

import (
	"sync"
)

const defaultBufSize = 256

// EventBus is a channel-based pub-sub event bus.
// Supports topic-based subscriptions and SubscribeAll for cross-topic consumption.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event // topic -> subscriber channels
	allSubs []chan Event            // channels subscribed to all topics
	closed  bool
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[string][]chan Event),
	}
}

// Subscribe creates a subscription to a specific topic.
// Returns a read-only channel that receives events published to that topic.
// bufSize determines the channel buffer size (defaults to 256 if <= 0).
func (b *EventBus) Subscribe(topic string, bufSize int) <-chan Event {
	ch := newChan(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Subscribing to a closed bus yields a closed channel
	if b.closed {
		close(ch)
		return ch
	}

	b.subs[topic] = append(b.subs[topic], ch)
	return ch
}

// SubscribeAll creates a subscription to ALL topics.
// Returns a single read-only channel that receives events from every topic.
// bufSize determines the channel buffer size (defaults to 256 if <= 0).
func (b *EventBus) SubscribeAll(bufSize int) <-chan Event {
	ch := newChan(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Subscribing to a closed bus yields a closed channel
	if b.closed {
		close(ch)
		return ch
	}

	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Unknown channels and a closed bus are ignored.
func (b *EventBus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	// Search topic-specific subscribers first
	for topic, channels := range b.subs {
		if rest, ch, ok := remove(channels, sub); ok {
			b.subs[topic] = rest
			close(ch)
			return
		}
	}
	// Then all-topic subscribers
	if rest, ch, ok := remove(b.allSubs, sub); ok {
		b.allSubs = rest
		close(ch)
	}
}

// Publish sends an event to all subscribers of the given topic and to every
// SubscribeAll channel. Non-blocking: a full channel drops the event for that
// subscriber.
func (b *EventBus) Publish(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	// Don't publish if bus is closed
	if b.closed {
		return
	}

	// Send to topic-specific subscribers
	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
			// Channel full, drop event (non-blocking)
		}
	}

	// Send to all-topic subscribers
	for _, ch := range b.allSubs {
		select {
		case ch <- event:
		default:
			// Channel full, drop event (non-blocking)
		}
	}
}

// Close closes the event bus and all subscriber channels.
// Safe to call multiple times (idempotent).
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	// Close all topic-specific subscribers
	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	// Close all-topic subscribers
	for _, ch := range b.allSubs {
		close(ch)
	}
}

// newChan makes a subscriber channel, applying the default buffer size.
func newChan(bufSize int) chan Event {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	return make(chan Event, bufSize)
}

// remove drops sub from channels, returning the bidirectional channel to close.
func remove(channels []chan Event, sub <-chan Event) ([]chan Event, chan Event, bool) {
	for i, ch := range channels {
		if (<-chan Event)(ch) == sub {
			return append(channels[:i:i], channels[i+1:]...), ch, true
		}
	}
	return channels, nil, false
}
