package capacity

import (
	"sort"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

type overrideKey struct {
	date  model.Date
	phase model.PhaseKind
}

// Table resolves the effective daily capacity of a phase. Overrides win over
// the phase default; a phase without a default has zero capacity.
type Table struct {
	defaults  map[model.PhaseKind]int
	overrides map[overrideKey]model.CapacityOverride
}

// NewTable builds a table from the store's defaults and overrides.
func NewTable(caps []model.DailyPhaseCapacity, overrides []model.CapacityOverride) *Table {
	t := &Table{
		defaults:  make(map[model.PhaseKind]int, len(caps)),
		overrides: make(map[overrideKey]model.CapacityOverride, len(overrides)),
	}
	for _, c := range caps {
		t.defaults[c.Phase] = c.MaxHours
	}
	for _, o := range overrides {
		t.SetOverride(o)
	}
	return t
}

// Default returns the phase's capacity when no override applies.
func (t *Table) Default(phase model.PhaseKind) int {
	if t == nil {
		return 0
	}
	return t.defaults[phase]
}

// Effective returns the capacity of phase on d.
func (t *Table) Effective(d model.Date, phase model.PhaseKind) int {
	if t == nil {
		return 0
	}
	if o, ok := t.overrides[overrideKey{d, phase}]; ok {
		return o.AdjustedCapacity
	}
	return t.defaults[phase]
}

// Override returns the override for (d, phase) if one exists.
func (t *Table) Override(d model.Date, phase model.PhaseKind) (model.CapacityOverride, bool) {
	if t == nil {
		return model.CapacityOverride{}, false
	}
	o, ok := t.overrides[overrideKey{d, phase}]
	return o, ok
}

// SetOverride replaces any override for the same date and phase.
func (t *Table) SetOverride(o model.CapacityOverride) {
	t.overrides[overrideKey{o.Date, o.Phase}] = o
}

// ResetOverride drops the override so the default applies again.
func (t *Table) ResetOverride(d model.Date, phase model.PhaseKind) {
	delete(t.overrides, overrideKey{d, phase})
}

// Overrides lists the overrides ordered by date then phase.
func (t *Table) Overrides() []model.CapacityOverride {
	out := make([]model.CapacityOverride, 0, len(t.overrides))
	for _, o := range t.overrides {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].Phase < out[j].Phase
	})
	return out
}
