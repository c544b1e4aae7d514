package capacity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/schedule"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

type recorder struct {
	mu  sync.Mutex
	evs []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
}

func seedStore(t *testing.T) (*store.MemoryStore, model.Project) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	for phase, h := range map[model.PhaseKind]int{
		model.PhaseMillwork:        8,
		model.PhaseBoxConstruction: 8,
		model.PhaseStain:           8,
		model.PhaseInstall:         16,
	} {
		require.NoError(t, st.SetPhaseCapacity(ctx, model.DailyPhaseCapacity{Phase: phase, MaxHours: h}))
	}
	p := model.Project{
		ID:          "job-1",
		Name:        "Kitchen",
		Hours:       model.PhaseHours{Millwork: 16, BoxConstruction: 16, Stain: 16, Install: 8},
		InstallDate: date("2025-12-23"),
	}
	p, err := schedule.New(rules.Default(), calendar.New(nil)).CalculatePhaseDates(p)
	require.NoError(t, err)
	p, err = st.CreateProject(ctx, p)
	require.NoError(t, err)
	return st, p
}

func newService(st store.Store, pub events.Publisher) *Service {
	return NewService(st, NewAllocator(rules.Default(), calendar.New(nil)), pub, nil)
}

func TestPhaseRange(t *testing.T) {
	_, p := seedStore(t)
	cases := []struct {
		kind       model.PhaseKind
		start, end string
	}{
		{model.PhaseMillwork, "2025-12-10", "2025-12-11"},
		{model.PhaseBoxConstruction, "2025-12-12", "2025-12-17"},
		{model.PhaseStain, "2025-12-18", "2025-12-22"},
		{model.PhaseInstall, "2025-12-23", "2025-12-23"},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			start, end, err := PhaseRange(p, c.kind)
			require.NoError(t, err)
			assert.Equal(t, c.start, start.String())
			assert.Equal(t, c.end, end.String())
		})
	}
}

func TestScheduleProject_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	st, p := seedStore(t)
	rec := &recorder{}
	svc := newService(st, rec)

	results, err := svc.ScheduleProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, results, 4)

	got := map[model.PhaseKind][2]int{}
	for _, r := range results {
		got[r.Phase] = [2]int{r.ScheduledHours, r.UnscheduledHours}
	}
	assert.Equal(t, [2]int{8, 8}, got[model.PhaseMillwork])
	assert.Equal(t, [2]int{16, 0}, got[model.PhaseBoxConstruction])
	assert.Equal(t, [2]int{12, 4}, got[model.PhaseStain])
	assert.Equal(t, [2]int{8, 0}, got[model.PhaseInstall])

	un, err := st.ListUnscheduled(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, un, 2)
	for _, u := range un {
		assert.NotEmpty(t, u.Reason)
		assert.False(t, u.UpdatedAt.IsZero())
	}
	assert.Len(t, rec.evs, 4)
}

func TestSchedulePhase_RerunReplacesAndClearsUnscheduled(t *testing.T) {
	ctx := context.Background()
	st, p := seedStore(t)
	svc := newService(st, nil)

	res, err := svc.SchedulePhase(ctx, p.ID, model.PhaseStain)
	require.NoError(t, err)
	require.Equal(t, 4, res.UnscheduledHours)

	for _, d := range []string{"2025-12-18", "2025-12-19", "2025-12-22"} {
		require.NoError(t, svc.SetOverride(ctx, model.CapacityOverride{
			Date: date(d), Phase: model.PhaseStain, AdjustedCapacity: 16, Reason: "extra sprayer",
		}))
	}
	res, err = svc.SchedulePhase(ctx, p.ID, model.PhaseStain)
	require.NoError(t, err)
	assert.Equal(t, 16, res.ScheduledHours)
	assert.Zero(t, res.UnscheduledHours)

	allocs, err := st.QueryPhaseAllocations(ctx, store.AllocationFilter{ProjectID: p.ID, Phase: store.Phase(model.PhaseStain)})
	require.NoError(t, err)
	total := 0
	for _, a := range allocs {
		total += a.AllocatedHours
	}
	assert.Equal(t, 16, total, "previous run must be replaced, not added to")

	un, err := st.ListUnscheduled(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, un)
}

func TestSchedulePhase_RespectsOtherProjects(t *testing.T) {
	ctx := context.Background()
	st, p := seedStore(t)
	svc := newService(st, nil)

	other := p
	other.ID = "job-2"
	_, err := st.CreateProject(ctx, other)
	require.NoError(t, err)

	_, err = svc.ScheduleProject(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.ScheduleProject(ctx, other.ID)
	require.NoError(t, err)

	allocs, err := st.QueryPhaseAllocations(ctx, store.AllocationFilter{})
	require.NoError(t, err)
	table, err := svc.Table(ctx, date("2025-12-01"), date("2025-12-31"))
	require.NoError(t, err)
	type key struct {
		phase model.PhaseKind
		day   model.Date
	}
	sums := map[key]int{}
	for _, a := range allocs {
		sums[key{a.Phase, a.Date}] += a.AllocatedHours
	}
	for k, v := range sums {
		assert.LessOrEqual(t, v, table.Effective(k.day, k.phase), "%s %s", k.phase, k.day)
	}
}

func TestSchedulePhase_MissingDates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, err := st.CreateProject(ctx, model.Project{
		ID:          "raw",
		Hours:       model.PhaseHours{Stain: 8},
		InstallDate: date("2025-12-23"),
	})
	require.NoError(t, err)

	_, err = newService(st, nil).SchedulePhase(ctx, "raw", model.PhaseStain)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPhaseDates)
	var mpd *MissingPhaseDatesError
	require.True(t, errors.As(err, &mpd))
	assert.Equal(t, model.PhaseStain, mpd.Phase)

	// zero hours never needs dates
	_, err = newService(st, nil).SchedulePhase(ctx, "raw", model.PhaseMillwork)
	assert.NoError(t, err)
}

func TestSetOverride_Rejects(t *testing.T) {
	svc := newService(store.NewMemoryStore(), nil)
	err := svc.SetOverride(context.Background(), model.CapacityOverride{Date: date("2025-12-01"), Phase: model.PhaseStain, AdjustedCapacity: -1})
	assert.ErrorIs(t, err, ErrInvalidOverride)
	err = svc.SetOverride(context.Background(), model.CapacityOverride{Date: date("2025-12-01"), Phase: model.PhaseMaterialOrder, AdjustedCapacity: 4})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestUtilization(t *testing.T) {
	table := NewTable([]model.DailyPhaseCapacity{{Phase: model.PhaseStain, MaxHours: 8}}, nil)
	days := []model.Date{date("2025-12-01"), date("2025-12-02")}
	allocs := []model.DailyPhaseAllocation{
		{Phase: model.PhaseStain, Date: date("2025-12-01"), AllocatedHours: 8},
		{Phase: model.PhaseStain, Date: date("2025-12-02"), AllocatedHours: 2},
		{Phase: model.PhaseStain, Date: date("2025-12-02"), AllocatedHours: 2},
	}
	rep := Utilization(allocs, table, days)
	require.Len(t, rep.Phases, 4)

	var stain PhaseUtilization
	for _, p := range rep.Phases {
		if p.Phase == model.PhaseStain {
			stain = p
		}
	}
	assert.InDelta(t, 0.75, stain.Mean, 1e-9)
	assert.InDelta(t, 1.0, stain.Peak, 1e-9)
	assert.Equal(t, "2025-12-01", stain.PeakDate.String())
	assert.Greater(t, stain.StdDev, 0.0)
	assert.Zero(t, stain.Overbooked)

	// install has no configured capacity and no allocations
	assert.Zero(t, rep.Phases[3].Mean)
}
