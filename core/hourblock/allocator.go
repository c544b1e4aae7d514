// Package hourblock books individual workers into one-hour blocks. A worker
// holds at most one block per hour, and a phase never holds more blocks on a
// day than its daily capacity.
package hourblock

import (
	"sort"

	"github.com/google/uuid"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/calendar"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

// Request books one member for Hours blocks between Start and End.
type Request struct {
	ProjectID string
	MemberID  string
	Phase     model.PhaseKind
	Start     model.Date
	End       model.Date
	Hours     int
	Capacity  *capacity.Table
	Occupancy *Occupancy
}

// FillRequest spreads Hours over Members, one worker-day at a time.
type FillRequest struct {
	ProjectID string
	Phase     model.PhaseKind
	Start     model.Date
	End       model.Date
	Hours     int
	Members   []model.TeamMember
	Capacity  *capacity.Table
	Occupancy *Occupancy
}

// Assignment is the outcome of a booking run. Shortfall is Requested minus
// Scheduled; Conflicts counts slots lost to a concurrent booking.
type Assignment struct {
	ProjectID   string                      `json:"project_id"`
	Phase       model.PhaseKind             `json:"phase"`
	Allocations []model.DailyHourAllocation `json:"allocations"`
	Requested   int                         `json:"requested"`
	Scheduled   int                         `json:"scheduled"`
	Shortfall   int                         `json:"shortfall"`
	Conflicts   int                         `json:"conflicts"`
}

func (a *Assignment) settle() {
	a.Scheduled = len(a.Allocations)
	a.Shortfall = max(a.Requested-a.Scheduled, 0)
}

// Allocator chooses slots. It does not persist anything; the occupancy it is
// given is updated with every slot it picks.
type Allocator struct {
	Rules    rules.Rules
	Calendar calendar.Calendar
	newID    func() string
}

// NewAllocator returns an allocator issuing uuid allocation ids.
func NewAllocator(r rules.Rules, cal calendar.Calendar) Allocator {
	return Allocator{Rules: r, Calendar: cal, newID: uuid.NewString}
}

func (a Allocator) id() string {
	if a.newID == nil {
		return uuid.NewString()
	}
	return a.newID()
}

// Assign books the member greedily by day, then hour, skipping hours the
// member already holds and days where the phase is at capacity. Fewer free
// slots than requested is reported as a shortfall.
func (a Allocator) Assign(req Request) Assignment {
	out := Assignment{ProjectID: req.ProjectID, Phase: req.Phase, Requested: req.Hours}
	occ := req.Occupancy
	if occ == nil {
		occ = NewOccupancy(nil)
	}
	remaining := req.Hours
	for _, d := range a.Calendar.WorkingDays(req.Start, req.End) {
		if remaining <= 0 {
			break
		}
		remaining -= a.fillDay(&out, occ, req.Capacity, req.MemberID, d, remaining, len(a.Rules.HourBlocks()))
	}
	out.settle()
	return out
}

// AutoFill walks the days in order and, for each day, takes members in
// priority order, booking each one's day up to the personal daily cap before
// moving to the next member.
func (a Allocator) AutoFill(req FillRequest) Assignment {
	out := Assignment{ProjectID: req.ProjectID, Phase: req.Phase, Requested: req.Hours}
	occ := req.Occupancy
	if occ == nil {
		occ = NewOccupancy(nil)
	}
	members := OrderMembers(req.Members, req.Phase)
	remaining := req.Hours
	for _, d := range a.Calendar.WorkingDays(req.Start, req.End) {
		for _, m := range members {
			if remaining <= 0 {
				out.settle()
				return out
			}
			room := a.Rules.PersonalDailyCap - occ.MemberLoad(m.ID, d)
			if room <= 0 {
				continue
			}
			remaining -= a.fillDay(&out, occ, req.Capacity, m.ID, d, min(remaining, room), room)
		}
	}
	out.settle()
	return out
}

// fillDay books up to want blocks (and at most limit) for member on d and
// returns how many it booked.
func (a Allocator) fillDay(out *Assignment, occ *Occupancy, table *capacity.Table, member string, d model.Date, want, limit int) int {
	limitCap := table.Effective(d, out.Phase)
	booked := 0
	for _, h := range a.Rules.HourBlocks() {
		if booked >= want || booked >= limit || occ.PhaseLoad(out.Phase, d) >= limitCap {
			break
		}
		if occ.Busy(member, Slot{d, h}) {
			continue
		}
		alloc := model.DailyHourAllocation{
			ID:           a.id(),
			ProjectID:    out.ProjectID,
			TeamMemberID: member,
			Phase:        out.Phase,
			Date:         d,
			HourBlock:    h,
		}
		occ.Add(alloc)
		out.Allocations = append(out.Allocations, alloc)
		booked++
	}
	return booked
}

// OrderMembers returns active members with those eligible for phase first,
// then by ascending priority and id.
func OrderMembers(members []model.TeamMember, phase model.PhaseKind) []model.TeamMember {
	out := make([]model.TeamMember, 0, len(members))
	for _, m := range members {
		if m.Active {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].EligibleFor(phase), out[j].EligibleFor(phase)
		if ei != ej {
			return ei
		}
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}
