package hourblock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

var (
	// ErrInvalidHourBlock is returned for a manual entry outside the bookable
	// hours.
	ErrInvalidHourBlock = errors.New("invalid hour block")
	// ErrInvalidEntry is returned for a manual entry without a date or for a
	// phase that carries no hours.
	ErrInvalidEntry = errors.New("invalid manual entry")
)

// ManualEntry books one member on one date for the listed hour blocks.
type ManualEntry struct {
	MemberID string     `json:"member_id"`
	Date     model.Date `json:"date"`
	Hours    []int      `json:"hours"`
}

// ManualRequest is an explicit member x date x hour booking.
type ManualRequest struct {
	ProjectID string          `json:"project_id"`
	Phase     model.PhaseKind `json:"phase"`
	Entries   []ManualEntry   `json:"entries"`
}

// Service persists hour-block bookings. Every insert goes through the
// store's uniqueness check; a slot taken by a concurrent writer is counted
// as a conflict and the batch continues.
type Service struct {
	store     store.Store
	allocator Allocator
	pub       events.Publisher
	log       logger.Logger

	mu sync.Mutex
}

// NewService wires the allocator to a store. pub may be nil.
func NewService(st store.Store, a Allocator, pub events.Publisher, log logger.Logger) *Service {
	return &Service{store: st, allocator: a, pub: pub, log: logger.OrNop(log)}
}

// booking is the state a booking run plans against.
type booking struct {
	project model.Project
	start   model.Date
	end     model.Date
	table   *capacity.Table
	occ     *Occupancy
	// booked counts the project's stored blocks for the phase, on any date.
	booked int
}

// outstanding resolves the hours to book. hours <= 0 means the phase
// estimate minus what is already booked, so repeating a run books nothing
// new.
func (b booking) outstanding(phase model.PhaseKind, hours int) int {
	if hours > 0 {
		return hours
	}
	return max(b.project.Hours.Of(phase)-b.booked, 0)
}

// snapshot loads the phase range, capacity and occupancy for a booking run.
func (s *Service) snapshot(ctx context.Context, projectID string, phase model.PhaseKind) (booking, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return booking{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	start, end, err := capacity.PhaseRange(p, phase)
	if err != nil {
		return booking{}, err
	}
	table, err := s.capacityTable(ctx, start, end)
	if err != nil {
		return booking{}, err
	}
	existing, err := s.store.QueryHourAllocations(ctx, store.HourFilter{From: start, To: end})
	if err != nil {
		return booking{}, fmt.Errorf("query hour allocations: %w", err)
	}
	own, err := s.store.QueryHourAllocations(ctx, store.HourFilter{ProjectID: projectID, Phase: store.Phase(phase)})
	if err != nil {
		return booking{}, fmt.Errorf("query %s hour blocks: %w", phase, err)
	}
	return booking{
		project: p,
		start:   start,
		end:     end,
		table:   table,
		occ:     NewOccupancy(existing),
		booked:  len(own),
	}, nil
}

func (s *Service) capacityTable(ctx context.Context, from, to model.Date) (*capacity.Table, error) {
	caps, err := s.store.PhaseCapacities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load phase capacities: %w", err)
	}
	overrides, err := s.store.OverridesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load capacity overrides: %w", err)
	}
	return capacity.NewTable(caps, overrides), nil
}

// AssignMember books hours blocks for one member within the phase's range.
// hours <= 0 books whatever the phase estimate still lacks.
func (s *Service) AssignMember(ctx context.Context, projectID, memberID string, phase model.PhaseKind, hours int) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.snapshot(ctx, projectID, phase)
	if err != nil {
		return Assignment{}, err
	}
	plan := s.allocator.Assign(Request{
		ProjectID: projectID,
		MemberID:  memberID,
		Phase:     phase,
		Start:     b.start,
		End:       b.end,
		Hours:     b.outstanding(phase, hours),
		Capacity:  b.table,
		Occupancy: b.occ,
	})
	return s.commit(ctx, plan)
}

// AutoFill books the phase's hours across the active team, consolidating
// each worker's day before moving on. hours <= 0 books whatever the phase
// estimate still lacks, which makes a retry after a partial run safe.
func (s *Service) AutoFill(ctx context.Context, projectID string, phase model.PhaseKind, hours int) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("list members: %w", err)
	}
	b, err := s.snapshot(ctx, projectID, phase)
	if err != nil {
		return Assignment{}, err
	}
	plan := s.allocator.AutoFill(FillRequest{
		ProjectID: projectID,
		Phase:     phase,
		Start:     b.start,
		End:       b.end,
		Hours:     b.outstanding(phase, hours),
		Members:   members,
		Capacity:  b.table,
		Occupancy: b.occ,
	})
	return s.commit(ctx, plan)
}

// AssignManual books exactly the requested slots. Slots already held by the
// worker, either in the snapshot or rejected by the store, are skipped and
// counted as conflicts. Slots on a day where the phase is at capacity are
// skipped and left as shortfall. Any other store error stops the batch and
// is returned with what was booked so far.
func (s *Service) AssignManual(ctx context.Context, req ManualRequest) (Assignment, error) {
	out := Assignment{ProjectID: req.ProjectID, Phase: req.Phase}
	if !req.Phase.Schedulable() {
		return out, fmt.Errorf("%w: phase %s carries no hours", ErrInvalidEntry, req.Phase)
	}
	for _, e := range req.Entries {
		if e.Date.IsZero() {
			return out, fmt.Errorf("%w: entry for %s has no date", ErrInvalidEntry, e.MemberID)
		}
		for _, h := range e.Hours {
			if !s.allocator.Rules.ValidHourBlock(h) {
				return out, fmt.Errorf("%w: %d", ErrInvalidHourBlock, h)
			}
		}
		out.Requested += len(e.Hours)
	}

	var from, to model.Date
	for _, e := range req.Entries {
		if from.IsZero() || e.Date.Before(from) {
			from = e.Date
		}
		if e.Date.After(to) {
			to = e.Date
		}
	}
	if len(req.Entries) == 0 {
		return out, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	table, err := s.capacityTable(ctx, from, to)
	if err != nil {
		return out, err
	}
	existing, err := s.store.QueryHourAllocations(ctx, store.HourFilter{From: from, To: to})
	if err != nil {
		return out, fmt.Errorf("query hour allocations: %w", err)
	}
	occ := NewOccupancy(existing)

	for _, e := range req.Entries {
		for _, h := range e.Hours {
			alloc := model.DailyHourAllocation{
				ID:           s.allocator.id(),
				ProjectID:    req.ProjectID,
				TeamMemberID: e.MemberID,
				Phase:        req.Phase,
				Date:         e.Date,
				HourBlock:    h,
			}
			if occ.Busy(e.MemberID, Slot{e.Date, h}) {
				out.Conflicts++
				continue
			}
			if occ.PhaseLoad(req.Phase, e.Date) >= table.Effective(e.Date, req.Phase) {
				continue
			}
			if err := s.store.InsertHourAllocation(ctx, alloc); err != nil {
				if errors.Is(err, store.ErrSlotTaken) {
					out.Conflicts++
					continue
				}
				out.settle()
				s.publish(out)
				return out, fmt.Errorf("book %s %s %02d:00: %w", e.MemberID, e.Date, h, err)
			}
			occ.Add(alloc)
			out.Allocations = append(out.Allocations, alloc)
		}
	}
	out.settle()
	s.logResult(out)
	s.publish(out)
	return out, nil
}

// commit inserts a planned assignment slot by slot.
func (s *Service) commit(ctx context.Context, plan Assignment) (Assignment, error) {
	out := plan
	out.Allocations = nil
	for _, a := range plan.Allocations {
		if err := s.store.InsertHourAllocation(ctx, a); err != nil {
			if errors.Is(err, store.ErrSlotTaken) {
				out.Conflicts++
				continue
			}
			out.settle()
			s.publish(out)
			return out, fmt.Errorf("book %s %s %02d:00: %w", a.TeamMemberID, a.Date, a.HourBlock, err)
		}
		out.Allocations = append(out.Allocations, a)
	}
	out.settle()
	s.logResult(out)
	s.publish(out)
	return out, nil
}

// ClearPhase deletes every hour block of a project's phase.
func (s *Service) ClearPhase(ctx context.Context, projectID string, phase model.PhaseKind) (int, error) {
	n, err := s.store.DeleteHourAllocations(ctx, store.HourFilter{ProjectID: projectID, Phase: store.Phase(phase)})
	if err != nil {
		return 0, fmt.Errorf("clear %s hour blocks: %w", phase, err)
	}
	s.log.Infof("project %s: cleared %d %s hour blocks", projectID, n, phase)
	return n, nil
}

func (s *Service) logResult(a Assignment) {
	if a.Shortfall > 0 || a.Conflicts > 0 {
		s.log.Warnf("project %s %s: booked %d/%d hour blocks, %d conflicts", a.ProjectID, a.Phase, a.Scheduled, a.Requested, a.Conflicts)
		return
	}
	s.log.Infof("project %s %s: booked %d hour blocks", a.ProjectID, a.Phase, a.Scheduled)
}

func (s *Service) publish(a Assignment) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(events.HourBlocksAssigned{
		ProjectID: a.ProjectID,
		Phase:     a.Phase,
		Requested: a.Requested,
		Scheduled: a.Scheduled,
		Conflicts: a.Conflicts,
	})
}
