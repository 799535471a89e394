package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/miniplan/internal/events"
	"github.com/aristath/miniplan/internal/persistence"
	"github.com/aristath/miniplan/internal/project"
	"github.com/aristath/miniplan/internal/scheduler"
)

// flakyStore wraps a real store and fails the next N writes.
type flakyStore struct {
	persistence.Store

	mu       sync.Mutex
	failures int
	err      error
	writes   int
}

func (f *flakyStore) fail(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
	f.err = err
}

func (f *flakyStore) write() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failures > 0 {
		f.failures--
		return f.err
	}
	return nil
}

func (f *flakyStore) SaveActivity(ctx context.Context, a *scheduler.Activity) error {
	if err := f.write(); err != nil {
		return err
	}
	return f.Store.SaveActivity(ctx, a)
}

func (f *flakyStore) SaveActivities(ctx context.Context, acts []*scheduler.Activity) error {
	if err := f.write(); err != nil {
		return err
	}
	return f.Store.SaveActivities(ctx, acts)
}

func (f *flakyStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func fastRetry() RetryConfig {
	return RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  500 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func newTestSession(t *testing.T) (*Session, *flakyStore, *events.EventBus) {
	t.Helper()
	mem, err := persistence.NewMemoryStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	store := &flakyStore{Store: mem}
	bus := events.NewEventBus()
	t.Cleanup(bus.Close)

	return New(Config{Store: store, Bus: bus, Retry: fastRetry()}), store, bus
}

func mustActivity(t *testing.T, id, name string, dur int, preds ...string) *scheduler.Activity {
	t.Helper()
	a, err := scheduler.NewActivity(id, name, dur, preds...)
	require.NoError(t, err)
	return a
}

func nextEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return nil
	}
}

func TestRunEmptyProject(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrEmptyProject)
}

func TestRunSamplePersistsResults(t *testing.T) {
	ctx := context.Background()
	s, store, bus := newTestSession(t)
	scheduleCh := bus.Subscribe(events.TopicSchedule, 4)

	require.NoError(t, s.LoadSample(ctx))
	assert.Nil(t, s.Summary())

	sum, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, sum.Duration)
	assert.Equal(t, []string{"A", "B", "C", "E"}, sum.CriticalPath)
	assert.Same(t, sum, s.Summary())

	ev, ok := nextEvent(t, scheduleCh).(events.ScheduleComputedEvent)
	require.True(t, ok)
	assert.Equal(t, 14, ev.Duration)
	assert.Equal(t, 5, ev.Activities)

	// A fresh session over the same store sees the computed dates.
	reloaded := New(Config{Store: store.Store})
	require.NoError(t, reloaded.Load(ctx))
	d, ok := reloaded.Get("D")
	require.True(t, ok)
	assert.Equal(t, scheduler.Dates{ES: 6, EF: 9, LS: 9, LF: 12, TotalFloat: 3, FreeFloat: 3}, d.Dates)

	runs, err := s.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Succeeded())
	assert.Equal(t, 14, runs[0].Duration)
	assert.Equal(t, ev.Elapsed.Truncate(time.Millisecond), runs[0].Elapsed)
}

func TestRunFailureIsReturnedUnchanged(t *testing.T) {
	ctx := context.Background()
	s, _, bus := newTestSession(t)
	scheduleCh := bus.Subscribe(events.TopicSchedule, 4)

	require.NoError(t, s.Import(ctx, []*scheduler.Activity{
		mustActivity(t, "A", "a", 1, "B"),
		mustActivity(t, "B", "b", 1, "A"),
	}))

	before := time.Now().Truncate(time.Millisecond)
	_, err := s.Run(ctx)
	var cycleErr *scheduler.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"A", "B", "A"}, cycleErr.Cycle)
	assert.Nil(t, s.Summary())

	ev, ok := nextEvent(t, scheduleCh).(events.ScheduleFailedEvent)
	require.True(t, ok)
	assert.ErrorIs(t, ev.Err, scheduler.ErrInvalidNetwork)

	runs, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Succeeded())
	assert.Contains(t, runs[0].Error, "circular dependency")
	assert.False(t, runs[0].RanAt.Before(before), "failed runs record their start time")
	assert.GreaterOrEqual(t, runs[0].Elapsed, time.Duration(0))
}

func TestRemoveThenRunReportsDanglingReference(t *testing.T) {
	ctx := context.Background()
	s, _, bus := newTestSession(t)
	activityCh := bus.Subscribe(events.TopicActivity, 8)

	require.NoError(t, s.LoadSample(ctx))
	nextEvent(t, activityCh)

	dependents, err := s.Remove(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, dependents)

	ev, ok := nextEvent(t, activityCh).(events.ActivityRemovedEvent)
	require.True(t, ok)
	assert.Equal(t, []string{"C", "D"}, ev.Dependents)

	_, err = s.Run(ctx)
	var refErr *scheduler.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "C", refErr.ActivityID)
	assert.Equal(t, "B", refErr.PredecessorID)

	_, err = s.Remove(ctx, "B")
	require.ErrorIs(t, err, project.ErrNotFound)
}

func TestAddAndUpdatePersist(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSession(t)

	require.NoError(t, s.Add(ctx, mustActivity(t, "A", "Start", 2)))
	require.NoError(t, s.Add(ctx, mustActivity(t, "B", "Build", 3, "A")))
	require.ErrorIs(t, s.Add(ctx, mustActivity(t, "A", "Dup", 1)), project.ErrDuplicateID)

	require.NoError(t, s.Update(ctx, mustActivity(t, "B", "Build", 5, "A")))
	require.ErrorIs(t, s.Update(ctx, mustActivity(t, "A", "Start", 2, "B")), project.ErrWouldCycle)

	stored, err := store.Store.GetActivity(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Duration)
	assert.Equal(t, []string{"A"}, stored.Predecessors)

	a, err := store.Store.GetActivity(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, a.Predecessors, "rejected cycle never reaches the store")
}

func TestTransientStoreErrorsAreRetried(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSession(t)

	store.fail(2, errors.New("database is locked"))
	require.NoError(t, s.Add(ctx, mustActivity(t, "A", "Start", 2)))
	assert.Equal(t, 3, store.Writes())

	_, err := store.Store.GetActivity(ctx, "A")
	require.NoError(t, err)
}

func TestPersistentStoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSession(t)

	store.fail(1000, errors.New("disk I/O error"))
	err := s.Add(ctx, mustActivity(t, "A", "Start", 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving activity A")
	assert.Zero(t, s.Len(), "failed write is rolled back in memory")
}

func TestRunSaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	require.NoError(t, s.LoadSample(ctx))

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := s.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving schedule")
	assert.Nil(t, s.Summary())
}

func TestClearAndImport(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestSession(t)

	require.NoError(t, s.LoadSample(ctx))
	assert.Equal(t, 5, s.Len())

	err := s.Import(ctx, []*scheduler.Activity{
		mustActivity(t, "X", "x", 1),
		mustActivity(t, "X", "again", 1),
	})
	require.ErrorIs(t, err, project.ErrDuplicateID)
	assert.Equal(t, 5, s.Len(), "rejected import leaves project intact")

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())

	acts, err := store.Store.ListActivities(ctx)
	require.NoError(t, err)
	assert.Empty(t, acts)
}
