package hourblock

import "github.com/canada7700/finish-line-calendar-app-sub000/core/model"

// Slot is one hour block on one day.
type Slot struct {
	Date model.Date `json:"date"`
	Hour int        `json:"hour"`
}

type memberSlot struct {
	member string
	slot   Slot
}

type memberDay struct {
	member string
	date   model.Date
}

type phaseDay struct {
	phase model.PhaseKind
	date  model.Date
}

// Occupancy indexes booked hour blocks: which worker hours are taken, and
// how many blocks each (phase, day) and (worker, day) already holds.
type Occupancy struct {
	busy      map[memberSlot]bool
	phaseLoad map[phaseDay]int
	dayLoad   map[memberDay]int
}

// NewOccupancy indexes existing allocations. It should cover every project
// and phase, since a worker is busy regardless of what they are booked on.
func NewOccupancy(existing []model.DailyHourAllocation) *Occupancy {
	o := &Occupancy{
		busy:      make(map[memberSlot]bool, len(existing)),
		phaseLoad: map[phaseDay]int{},
		dayLoad:   map[memberDay]int{},
	}
	for _, a := range existing {
		o.Add(a)
	}
	return o
}

// Busy reports whether member already holds slot.
func (o *Occupancy) Busy(member string, s Slot) bool {
	return o.busy[memberSlot{member, s}]
}

// PhaseLoad is the number of blocks booked for phase on d.
func (o *Occupancy) PhaseLoad(phase model.PhaseKind, d model.Date) int {
	return o.phaseLoad[phaseDay{phase, d}]
}

// MemberLoad is the number of blocks member holds on d.
func (o *Occupancy) MemberLoad(member string, d model.Date) int {
	return o.dayLoad[memberDay{member, d}]
}

// Add books a. It returns false, changing nothing, when the worker already
// holds that slot.
func (o *Occupancy) Add(a model.DailyHourAllocation) bool {
	k := memberSlot{a.TeamMemberID, Slot{a.Date, a.HourBlock}}
	if o.busy[k] {
		return false
	}
	o.busy[k] = true
	o.phaseLoad[phaseDay{a.Phase, a.Date}]++
	o.dayLoad[memberDay{a.TeamMemberID, a.Date}]++
	return true
}

// Remove undoes Add.
func (o *Occupancy) Remove(a model.DailyHourAllocation) {
	k := memberSlot{a.TeamMemberID, Slot{a.Date, a.HourBlock}}
	if !o.busy[k] {
		return
	}
	delete(o.busy, k)
	o.phaseLoad[phaseDay{a.Phase, a.Date}]--
	o.dayLoad[memberDay{a.TeamMemberID, a.Date}]--
}
