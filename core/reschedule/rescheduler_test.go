package reschedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/monitoring"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/schedule"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

var date = model.MustParseDate

type recorder struct {
	mu  sync.Mutex
	evs []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	r.evs = append(r.evs, ev)
	r.mu.Unlock()
}

func scheduler() schedule.ProjectScheduler {
	return schedule.New(rules.Default(), calendar.New(nil))
}

func seed(t *testing.T, st store.ProjectStore) model.Project {
	t.Helper()
	p, err := scheduler().CalculatePhaseDates(model.Project{
		ID:          "job-1",
		Name:        "Kitchen",
		Hours:       model.PhaseHours{Millwork: 16, BoxConstruction: 16, Stain: 16, Install: 8},
		InstallDate: date("2025-12-23"),
	})
	require.NoError(t, err)
	p, err = st.CreateProject(context.Background(), p)
	require.NoError(t, err)
	return p
}

func TestReschedule_SmallMoveNeedsNoConfirmation(t *testing.T) {
	st := store.NewMemoryStore()
	p := seed(t, st)
	rec := &recorder{}
	r := New(st, scheduler(), Options{Cache: NewProjectCache([]model.Project{p}), Publisher: rec})

	confirm := func(model.Project, model.Date, int) bool {
		t.Fatal("confirmation must not be asked for a 3 day move")
		return false
	}
	got, err := r.Reschedule(context.Background(), p.ID, date("2025-12-26"), confirm)
	require.NoError(t, err)

	assert.Equal(t, "2025-12-26", got.InstallDate.String())
	assert.Equal(t, "2025-12-25", got.StainLacquerDate.String())
	assert.NoError(t, scheduler().Validate(got))

	stored, err := st.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, got.StainStartDate, stored.StainStartDate)

	cached, ok := r.Cache().Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, got.UpdatedAt, cached.UpdatedAt)

	require.Len(t, rec.evs, 1)
	ev := rec.evs[0].(events.ProjectRescheduled)
	assert.Equal(t, "2025-12-23", ev.OldInstall.String())
	assert.Equal(t, Idle, r.State())
}

func TestReschedule_LargeMoveRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	p := seed(t, st)
	r := New(st, scheduler(), Options{})

	_, err := r.Reschedule(ctx, p.ID, date("2026-01-02"), nil)
	require.ErrorIs(t, err, ErrConfirmationRequired)

	asked := 0
	decline := func(_ model.Project, _ model.Date, shift int) bool {
		asked++
		assert.Equal(t, 10, shift)
		return false
	}
	_, err = r.Reschedule(ctx, p.ID, date("2026-01-02"), decline)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, 1, asked)

	stored, err := st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-23", stored.InstallDate.String(), "no mutation before confirmation")

	got, err := r.Reschedule(ctx, p.ID, date("2026-01-02"), AlwaysConfirm)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", got.InstallDate.String())

	// backwards moves count the same
	assert.True(t, r.NeedsConfirmation(got, date("2025-12-20")))
	assert.False(t, r.NeedsConfirmation(got, date("2025-12-26")))
}

type failingStore struct {
	*store.MemoryStore
}

var errWrite = errors.New("write rejected")

func (failingStore) UpdateProject(context.Context, model.Project) (model.Project, error) {
	return model.Project{}, errWrite
}

func TestReschedule_RollsBackOnPersistFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	p := seed(t, mem)
	cache := NewProjectCache([]model.Project{p})
	mon := &monitoring.Recorder{}
	var changes int
	r := New(failingStore{mem}, scheduler(), Options{
		Cache:    cache,
		Monitor:  mon,
		OnChange: func() { changes++ },
	})

	_, err := r.Reschedule(context.Background(), p.ID, date("2025-12-24"), nil)
	require.ErrorIs(t, err, errWrite)

	cached, ok := cache.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, cached, "cache must be reverted to the snapshot")
	assert.Equal(t, 2, changes)
	require.Len(t, mon.Captured(), 1)
	assert.Equal(t, p.ID, mon.Captured()[0].Tags["project_id"])
	assert.Equal(t, Idle, r.State())
}

type blockingStore struct {
	*store.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (b blockingStore) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	close(b.entered)
	<-b.release
	return b.MemoryStore.UpdateProject(ctx, p)
}

func TestReschedule_BusyWhileInFlight(t *testing.T) {
	mem := store.NewMemoryStore()
	p := seed(t, mem)
	bs := blockingStore{MemoryStore: mem, entered: make(chan struct{}), release: make(chan struct{})}
	r := New(bs, scheduler(), Options{})

	done := make(chan error, 1)
	go func() {
		_, err := r.Reschedule(context.Background(), p.ID, date("2025-12-24"), nil)
		done <- err
	}()

	select {
	case <-bs.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("reschedule never reached the store")
	}
	assert.True(t, r.Busy())
	assert.Equal(t, Rescheduling, r.State())
	_, err := r.Reschedule(context.Background(), p.ID, date("2025-12-25"), nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(bs.release)
	require.NoError(t, <-done)
	assert.False(t, r.Busy())
}

func TestRecalculate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	p, err := st.CreateProject(ctx, model.Project{
		ID:          "raw",
		Hours:       model.PhaseHours{Stain: 8},
		InstallDate: date("2025-12-23"),
	})
	require.NoError(t, err)
	require.Nil(t, p.StainStartDate)

	r := New(st, scheduler(), Options{})
	got, err := r.Recalculate(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-19", got.StainStartDate.String())
	assert.Equal(t, "2025-12-23", got.InstallDate.String())
}

func TestProjectCache_RevertMissingEntry(t *testing.T) {
	c := NewProjectCache(nil)
	snap := c.Snapshot("new")
	c.Apply(model.Project{ID: "new"})
	c.Revert(snap)
	_, ok := c.Get("new")
	assert.False(t, ok)
	assert.Empty(t, c.List())
}
