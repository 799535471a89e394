package events

import (
	"errors"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for event")
		}
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
	return nil
}

// TestPublishSubscribe verifies basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(TopicActivity, 10)

	bus.Publish(TopicActivity, ActivityAddedEvent{ID: "A", Name: "Start", Timestamp: time.Now()})

	received := receive(t, ch)
	if received.ActivityID() != "A" {
		t.Errorf("expected activity ID 'A', got '%s'", received.ActivityID())
	}
	if received.EventType() != EventTypeActivityAdded {
		t.Errorf("expected event type '%s', got '%s'", EventTypeActivityAdded, received.EventType())
	}
}

// TestMultipleSubscribers verifies every subscriber receives the same event.
func TestMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch1 := bus.Subscribe(TopicSchedule, 10)
	ch2 := bus.Subscribe(TopicSchedule, 10)

	bus.Publish(TopicSchedule, ScheduleComputedEvent{Activities: 5, Duration: 14, CriticalPath: []string{"A", "B", "C", "E"}})

	for i, ch := range []<-chan Event{ch1, ch2} {
		ev, ok := receive(t, ch).(ScheduleComputedEvent)
		if !ok {
			t.Fatalf("subscriber %d: unexpected event type", i+1)
		}
		if ev.Duration != 14 {
			t.Errorf("subscriber %d: expected duration 14, got %d", i+1, ev.Duration)
		}
	}
}

// TestNonBlockingSend verifies a full subscriber never blocks the publisher.
func TestNonBlockingSend(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(TopicActivity, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(TopicActivity, ActivityUpdatedEvent{ID: "A"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	if got := len(ch); got != 1 {
		t.Errorf("expected 1 buffered event, got %d", got)
	}
}

// TestTopicsAreIsolated verifies subscribers only see their own topic.
func TestTopicsAreIsolated(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	activityCh := bus.Subscribe(TopicActivity, 10)
	scheduleCh := bus.Subscribe(TopicSchedule, 10)

	bus.Publish(TopicSchedule, ScheduleFailedEvent{Err: errors.New("cycle")})

	if ev := receive(t, scheduleCh); ev.EventType() != EventTypeScheduleFailed {
		t.Errorf("unexpected event type %s", ev.EventType())
	}

	select {
	case ev := <-activityCh:
		t.Errorf("activity subscriber received %s", ev.EventType())
	default:
	}
}

// TestSubscribeAll verifies the catch-all channel sees every topic.
func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	all := bus.SubscribeAll(0)

	bus.Publish(TopicActivity, ActivityRemovedEvent{ID: "B", Dependents: []string{"C"}})
	bus.Publish(TopicSchedule, ScheduleComputedEvent{Duration: 3})
	bus.Publish(TopicActivity, ProjectLoadedEvent{Source: "sample", Count: 5})

	want := []string{EventTypeActivityRemoved, EventTypeScheduleComputed, EventTypeProjectLoaded}
	for _, w := range want {
		if got := receive(t, all).EventType(); got != w {
			t.Errorf("expected %s, got %s", w, got)
		}
	}
}

// TestUnsubscribe verifies an unsubscribed channel is closed and skipped.
func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	gone := bus.Subscribe(TopicActivity, 10)
	kept := bus.Subscribe(TopicActivity, 10)
	all := bus.SubscribeAll(10)

	bus.Unsubscribe(gone)
	bus.Unsubscribe(all)
	bus.Unsubscribe(gone) // second call is a no-op

	if _, ok := <-gone; ok {
		t.Error("expected unsubscribed channel to be closed")
	}
	if _, ok := <-all; ok {
		t.Error("expected unsubscribed catch-all channel to be closed")
	}

	bus.Publish(TopicActivity, ActivityAddedEvent{ID: "Z"})
	if ev := receive(t, kept); ev.ActivityID() != "Z" {
		t.Errorf("expected Z, got %s", ev.ActivityID())
	}
}

// TestCloseSignalsSubscribers verifies Close closes every channel once.
func TestCloseSignalsSubscribers(t *testing.T) {
	bus := NewEventBus()

	ch := bus.Subscribe(TopicActivity, 10)
	all := bus.SubscribeAll(10)

	bus.Close()
	bus.Close()

	for _, c := range []<-chan Event{ch, all} {
		if _, ok := <-c; ok {
			t.Error("expected channel to be closed")
		}
	}

	// Subscribing, publishing and unsubscribing after close must not panic.
	late := bus.Subscribe(TopicActivity, 1)
	if _, ok := <-late; ok {
		t.Error("expected late subscription to be closed")
	}
	bus.Publish(TopicActivity, ActivityAddedEvent{ID: "A"})
	bus.Unsubscribe(ch)
}
