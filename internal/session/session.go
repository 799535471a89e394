// Package session ties the activity network to its store, the scheduler and
// the event bus. Every user-facing surface (CLI, TUI) goes through a Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aristath/miniplan/internal/events"
	"github.com/aristath/miniplan/internal/logging"
	"github.com/aristath/miniplan/internal/persistence"
	"github.com/aristath/miniplan/internal/project"
	"github.com/aristath/miniplan/internal/scheduler"
)

// ErrEmptyProject is returned by Run when there is nothing to schedule.
var ErrEmptyProject = errors.New("no activities to schedule")

// Config configures a Session.
type Config struct {
	Store  persistence.Store // Required
	Bus    *events.EventBus  // Optional; events are dropped when nil
	Logger *slog.Logger      // Optional; defaults to a discarding logger
	Retry  RetryConfig       // Zero value uses DefaultRetryConfig
}

// Session is the editable project backed by a store.
type Session struct {
	project *project.Project
	sched   *scheduler.Scheduler
	store   persistence.Store
	bus     *events.EventBus
	logger  *slog.Logger
	guard   *storeGuard

	mu   sync.Mutex // guards last
	last *project.Summary
}

// New creates a session with an empty project. Call Load to read the store.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Session{
		project: project.New(),
		sched:   scheduler.New(),
		store:   cfg.Store,
		bus:     cfg.Bus,
		logger:  cfg.Logger,
		guard:   newStoreGuard(cfg.Retry, cfg.Logger),
	}
}

// Load replaces the in-memory project with the stored activities, including
// any computed dates saved by an earlier run.
func (s *Session) Load(ctx context.Context) error {
	var acts []*scheduler.Activity
	err := s.guard.do(ctx, "list activities", func(ctx context.Context) error {
		var err error
		acts, err = s.store.ListActivities(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}

	if err := s.project.Replace(acts); err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}
	s.setLast(nil)

	s.logger.Debug("project loaded", "activities", len(acts))
	s.publish(events.TopicActivity, events.ProjectLoadedEvent{Source: "store", Count: len(acts), Timestamp: time.Now()})
	return nil
}

// Add inserts a new activity and persists it.
func (s *Session) Add(ctx context.Context, a *scheduler.Activity) error {
	if err := s.project.Add(a); err != nil {
		return err
	}

	if err := s.save(ctx, a); err != nil {
		// Keep memory and store in step.
		_, _ = s.project.Remove(a.ID)
		return err
	}

	s.logger.Info("activity added", "id", a.ID, "duration", a.Duration)
	s.publish(events.TopicActivity, events.ActivityAddedEvent{ID: a.ID, Name: a.Name, Timestamp: time.Now()})
	return nil
}

// Update replaces an existing activity's definition and persists it.
func (s *Session) Update(ctx context.Context, a *scheduler.Activity) error {
	old, ok := s.project.Get(a.ID)
	if !ok {
		return fmt.Errorf("%w: %q", project.ErrNotFound, a.ID)
	}
	if err := s.project.Update(a); err != nil {
		return err
	}

	stored, _ := s.project.Get(a.ID)
	if err := s.save(ctx, stored); err != nil {
		_ = s.project.Update(old)
		return err
	}

	s.logger.Info("activity updated", "id", a.ID)
	s.publish(events.TopicActivity, events.ActivityUpdatedEvent{ID: a.ID, Name: a.Name, Timestamp: time.Now()})
	return nil
}

// Remove deletes an activity and returns the IDs that still reference it.
func (s *Session) Remove(ctx context.Context, id string) ([]string, error) {
	old, ok := s.project.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", project.ErrNotFound, id)
	}

	dependents, err := s.project.Remove(id)
	if err != nil {
		return nil, err
	}

	err = s.guard.do(ctx, "delete activity", func(ctx context.Context) error {
		err := s.store.DeleteActivity(ctx, id)
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		// Restore without checks: its predecessors may have been removed already.
		acts := append(s.project.List(), old)
		_ = s.project.Replace(acts)
		return nil, fmt.Errorf("deleting activity: %w", err)
	}

	if len(dependents) > 0 {
		s.logger.Warn("removed activity is still referenced", "id", id, "dependents", dependents)
	} else {
		s.logger.Info("activity removed", "id", id)
	}
	s.publish(events.TopicActivity, events.ActivityRemovedEvent{ID: id, Dependents: dependents, Timestamp: time.Now()})
	return dependents, nil
}

// LoadSample replaces the project with the sample network.
func (s *Session) LoadSample(ctx context.Context) error {
	return s.replace(ctx, "sample", project.SampleActivities())
}

// Import replaces the project with acts, e.g. decoded from a project file.
func (s *Session) Import(ctx context.Context, acts []*scheduler.Activity) error {
	return s.replace(ctx, "import", acts)
}

// Clear removes every activity.
func (s *Session) Clear(ctx context.Context) error {
	return s.replace(ctx, "clear", nil)
}

func (s *Session) replace(ctx context.Context, source string, acts []*scheduler.Activity) error {
	// Validate ids in memory before touching the store.
	staged := project.New()
	if err := staged.Replace(acts); err != nil {
		return err
	}

	err := s.guard.do(ctx, "replace activities", func(ctx context.Context) error {
		return s.store.ReplaceActivities(ctx, acts)
	})
	if err != nil {
		return fmt.Errorf("saving activities: %w", err)
	}

	if err := s.project.Replace(acts); err != nil {
		return err
	}
	s.setLast(nil)

	s.logger.Info("project replaced", "source", source, "activities", len(acts))
	s.publish(events.TopicActivity, events.ProjectLoadedEvent{Source: source, Count: len(acts), Timestamp: time.Now()})
	return nil
}

// Activities returns copies of all activities sorted by ID.
func (s *Session) Activities() []*scheduler.Activity {
	return s.project.List()
}

// Get returns a copy of one activity.
func (s *Session) Get(id string) (*scheduler.Activity, bool) {
	return s.project.Get(id)
}

// Len returns the number of activities.
func (s *Session) Len() int {
	return s.project.Len()
}

// Summary returns the result of the last successful Run, or nil when the
// project changed wholesale since or no run happened yet.
func (s *Session) Summary() *project.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// History returns the most recent scheduling runs, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]persistence.Run, error) {
	return s.store.ListRuns(ctx, limit)
}

// Run schedules the project, persists every computed field and records the
// run. Engine errors are returned unchanged so callers can use errors.As on
// *scheduler.ReferenceError and *scheduler.CycleError.
func (s *Session) Run(ctx context.Context) (*project.Summary, error) {
	n := s.project.Len()
	if n == 0 {
		return nil, ErrEmptyProject
	}

	start := time.Now()
	sum, err := s.project.Schedule(s.sched)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("schedule rejected", "err", err)
		s.publish(events.TopicSchedule, events.ScheduleFailedEvent{Err: err, Timestamp: time.Now()})
		s.record(ctx, &persistence.Run{RanAt: start, Elapsed: elapsed, ActivityCount: n, Error: err.Error()})
		return nil, err
	}

	err = s.guard.do(ctx, "save schedule", func(ctx context.Context) error {
		return s.store.SaveActivities(ctx, sum.Activities)
	})
	if err != nil {
		return nil, fmt.Errorf("saving schedule: %w", err)
	}

	s.record(ctx, &persistence.Run{
		RanAt:         start,
		Elapsed:       elapsed,
		ActivityCount: len(sum.Activities),
		Duration:      sum.Duration,
		CriticalPath:  sum.CriticalPath,
	})
	s.setLast(sum)

	s.logger.Info("schedule computed",
		"activities", len(sum.Activities),
		"duration", sum.Duration,
		"critical", len(sum.CriticalPath),
		"elapsed", elapsed)
	s.publish(events.TopicSchedule, events.ScheduleComputedEvent{
		Activities:   len(sum.Activities),
		Duration:     sum.Duration,
		CriticalPath: sum.CriticalPath,
		Elapsed:      elapsed,
		Timestamp:    time.Now(),
	})
	return sum, nil
}

func (s *Session) save(ctx context.Context, a *scheduler.Activity) error {
	err := s.guard.do(ctx, "save activity", func(ctx context.Context) error {
		return s.store.SaveActivity(ctx, a)
	})
	if err != nil {
		return fmt.Errorf("saving activity %s: %w", a.ID, err)
	}
	return nil
}

// record appends to the run history. History is best effort: a failure is
// logged and never fails the run.
func (s *Session) record(ctx context.Context, run *persistence.Run) {
	err := s.guard.do(ctx, "record run", func(ctx context.Context) error {
		return s.store.RecordRun(ctx, run)
	})
	if err != nil {
		s.logger.Warn("failed to record schedule run", "err", err)
	}
}

func (s *Session) setLast(sum *project.Summary) {
	s.mu.Lock()
	s.last = sum
	s.mu.Unlock()
}

func (s *Session) publish(topic string, ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(topic, ev)
	}
}
