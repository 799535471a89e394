package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	ActivityID() string
}

// Topic constants
const (
	TopicActivity = "activity"
	TopicSchedule = "schedule"
)

// Event type constants
const (
	EventTypeActivityAdded    = "activity.added"
	EventTypeActivityUpdated  = "activity.updated"
	EventTypeActivityRemoved  = "activity.removed"
	EventTypeProjectLoaded    = "project.loaded"
	EventTypeScheduleComputed = "schedule.computed"
	EventTypeScheduleFailed   = "schedule.failed"
)

// ActivityAddedEvent is published when an activity joins the project.
type ActivityAddedEvent struct {
	ID        string
	Name      string
	Timestamp time.Time
}

func (e ActivityAddedEvent) EventType() string  { return EventTypeActivityAdded }
func (e ActivityAddedEvent) ActivityID() string { return e.ID }

// ActivityUpdatedEvent is published when an activity definition changes.
type ActivityUpdatedEvent struct {
	ID        string
	Name      string
	Timestamp time.Time
}

func (e ActivityUpdatedEvent) EventType() string  { return EventTypeActivityUpdated }
func (e ActivityUpdatedEvent) ActivityID() string { return e.ID }

// ActivityRemovedEvent is published when an activity is deleted.
// Dependents lists the activities still referencing the removed ID.
type ActivityRemovedEvent struct {
	ID         string
	Dependents []string
	Timestamp  time.Time
}

func (e ActivityRemovedEvent) EventType() string  { return EventTypeActivityRemoved }
func (e ActivityRemovedEvent) ActivityID() string { return e.ID }

// ProjectLoadedEvent is published when the whole network is replaced:
// loaded from the store, imported, reset to the sample, or cleared.
type ProjectLoadedEvent struct {
	Source    string // "store", "sample", "import", "clear"
	Count     int
	Timestamp time.Time
}

func (e ProjectLoadedEvent) EventType() string  { return EventTypeProjectLoaded }
func (e ProjectLoadedEvent) ActivityID() string { return "" }

// ScheduleComputedEvent is published after a successful scheduling run.
type ScheduleComputedEvent struct {
	Activities   int
	Duration     int
	CriticalPath []string
	Elapsed      time.Duration
	Timestamp    time.Time
}

func (e ScheduleComputedEvent) EventType() string  { return EventTypeScheduleComputed }
func (e ScheduleComputedEvent) ActivityID() string { return "" }

// ScheduleFailedEvent is published when a scheduling run is rejected.
type ScheduleFailedEvent struct {
	Err       error
	Timestamp time.Time
}

func (e ScheduleFailedEvent) EventType() string  { return EventTypeScheduleFailed }
func (e ScheduleFailedEvent) ActivityID() string { return "" }
