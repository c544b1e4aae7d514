package capacity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

// ErrMissingPhaseDates is matched by every MissingPhaseDatesError.
var ErrMissingPhaseDates = errors.New("phase dates missing")

// ErrInvalidOverride rejects negative or non-schedulable overrides.
var ErrInvalidOverride = errors.New("invalid capacity override")

// MissingPhaseDatesError reports a phase that has hours but no date range.
type MissingPhaseDatesError struct {
	ProjectID string
	Phase     model.PhaseKind
}

func (e *MissingPhaseDatesError) Error() string {
	return fmt.Sprintf("project %s: %s has hours but no start date", e.ProjectID, e.Phase)
}

func (e *MissingPhaseDatesError) Is(target error) bool { return target == ErrMissingPhaseDates }

// PhaseRange returns the dates a phase may use: from its start through the
// calendar day before the next phase starts. Install uses the install date
// only.
func PhaseRange(p model.Project, kind model.PhaseKind) (model.Date, model.Date, error) {
	start := p.PhaseStart(kind)
	if start == nil {
		return model.Date{}, model.Date{}, &MissingPhaseDatesError{ProjectID: p.ID, Phase: kind}
	}
	if kind == model.PhaseInstall {
		return *start, *start, nil
	}
	next := p.PhaseStart(kind + 1)
	if next == nil {
		return model.Date{}, model.Date{}, &MissingPhaseDatesError{ProjectID: p.ID, Phase: kind + 1}
	}
	return *start, next.AddDays(-1), nil
}

// Service runs the allocator against the stores and persists each run as
// one batch.
type Service struct {
	store     store.Store
	allocator Allocator
	pub       events.Publisher
	log       logger.Logger
	now       func() time.Time

	// one run per phase at a time so snapshots never go stale mid-run
	phaseMu [model.PhaseInstall + 1]sync.Mutex
}

// NewService wires the allocator to a store. pub may be nil.
func NewService(st store.Store, a Allocator, pub events.Publisher, log logger.Logger) *Service {
	return &Service{store: st, allocator: a, pub: pub, log: logger.OrNop(log), now: time.Now}
}

// Table loads defaults and the overrides between from and to.
func (s *Service) Table(ctx context.Context, from, to model.Date) (*Table, error) {
	caps, err := s.store.PhaseCapacities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load phase capacities: %w", err)
	}
	overrides, err := s.store.OverridesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load capacity overrides: %w", err)
	}
	return NewTable(caps, overrides), nil
}

// SchedulePhase allocates one phase of a project, replacing any allocations
// from a previous run. Unplaced hours are stored as unscheduled; a run that
// fits everything clears the unscheduled row.
func (s *Service) SchedulePhase(ctx context.Context, projectID string, kind model.PhaseKind) (Result, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return Result{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	return s.schedule(ctx, p, kind)
}

// ScheduleProject runs SchedulePhase for every schedulable phase in order.
// It stops at the first error and returns the results gathered so far.
func (s *Service) ScheduleProject(ctx context.Context, projectID string) ([]Result, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, err)
	}
	var out []Result
	for _, kind := range model.SchedulablePhases() {
		res, err := s.schedule(ctx, p, kind)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Service) schedule(ctx context.Context, p model.Project, kind model.PhaseKind) (Result, error) {
	if kind == model.PhaseMaterialOrder || kind > model.PhaseInstall {
		return Result{}, fmt.Errorf("phase %s is not schedulable", kind)
	}
	hours := p.Hours.Of(kind)
	if hours == 0 {
		return s.clear(ctx, p.ID, kind)
	}
	start, end, err := PhaseRange(p, kind)
	if err != nil {
		return Result{}, err
	}

	mu := &s.phaseMu[kind]
	mu.Lock()
	defer mu.Unlock()

	table, err := s.Table(ctx, start, end)
	if err != nil {
		return Result{}, err
	}
	existing, err := s.store.QueryPhaseAllocations(ctx, store.AllocationFilter{
		Phase: store.Phase(kind),
		From:  start,
		To:    end,
	})
	if err != nil {
		return Result{}, fmt.Errorf("query %s allocations: %w", kind, err)
	}

	res := s.allocator.Allocate(Request{
		ProjectID: p.ID,
		Phase:     kind,
		Start:     start,
		End:       end,
		Hours:     hours,
		Capacity:  table,
		Existing:  existing,
	})
	if err := s.store.ReplacePhaseAllocations(ctx, p.ID, kind, res.Allocations); err != nil {
		return Result{}, fmt.Errorf("persist %s allocations: %w", kind, err)
	}
	if res.Unscheduled != nil {
		res.Unscheduled.UpdatedAt = s.now()
		if err := s.store.UpsertUnscheduled(ctx, *res.Unscheduled); err != nil {
			return res, fmt.Errorf("record unscheduled %s hours: %w", kind, err)
		}
		s.log.Warnf("project %s: %d %s hours unscheduled: %s", p.ID, res.UnscheduledHours, kind, res.Unscheduled.Reason)
	} else if err := s.store.ClearUnscheduled(ctx, p.ID, kind); err != nil {
		return res, fmt.Errorf("clear unscheduled %s hours: %w", kind, err)
	}

	s.log.Infof("project %s: scheduled %d/%d %s hours over %d days", p.ID, res.ScheduledHours, hours, kind, res.DaysSearched)
	s.publish(res)
	return res, nil
}

// clear drops allocations and unscheduled hours for a phase with no hours.
func (s *Service) clear(ctx context.Context, projectID string, kind model.PhaseKind) (Result, error) {
	res := Result{ProjectID: projectID, Phase: kind}
	if err := s.store.ReplacePhaseAllocations(ctx, projectID, kind, nil); err != nil {
		return res, fmt.Errorf("clear %s allocations: %w", kind, err)
	}
	if err := s.store.ClearUnscheduled(ctx, projectID, kind); err != nil {
		return res, fmt.Errorf("clear unscheduled %s hours: %w", kind, err)
	}
	s.publish(res)
	return res, nil
}

func (s *Service) publish(res Result) {
	if s.pub == nil {
		return
	}
	ev := events.PhaseScheduled{
		ProjectID:        res.ProjectID,
		Phase:            res.Phase,
		ScheduledHours:   res.ScheduledHours,
		UnscheduledHours: res.UnscheduledHours,
	}
	if res.Unscheduled != nil {
		ev.Reason = res.Unscheduled.Reason
	}
	s.pub.Publish(ev)
}

// SetOverride stores a per-date capacity for a phase.
func (s *Service) SetOverride(ctx context.Context, o model.CapacityOverride) error {
	if o.Date.IsZero() || o.AdjustedCapacity < 0 || o.Phase == model.PhaseMaterialOrder || o.Phase > model.PhaseInstall {
		return fmt.Errorf("%w: %s %s %d", ErrInvalidOverride, o.Date, o.Phase, o.AdjustedCapacity)
	}
	if err := s.store.SetOverride(ctx, o); err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	s.log.Infof("capacity override %s %s = %d (%s)", o.Date, o.Phase, o.AdjustedCapacity, o.Reason)
	return nil
}

// ResetOverride restores the default capacity of phase on d.
func (s *Service) ResetOverride(ctx context.Context, d model.Date, phase model.PhaseKind) error {
	if err := s.store.ResetOverride(ctx, d, phase); err != nil {
		return fmt.Errorf("reset override: %w", err)
	}
	s.log.Infof("capacity override %s %s reset", d, phase)
	return nil
}

// Utilization reports allocated share of capacity per phase over the
// working days between from and to.
func (s *Service) Utilization(ctx context.Context, from, to model.Date) (Report, error) {
	table, err := s.Table(ctx, from, to)
	if err != nil {
		return Report{}, err
	}
	allocs, err := s.store.QueryPhaseAllocations(ctx, store.AllocationFilter{From: from, To: to})
	if err != nil {
		return Report{}, fmt.Errorf("query allocations: %w", err)
	}
	days := s.allocator.Calendar.WorkingDays(from, to)
	return Utilization(allocs, table, days), nil
}
