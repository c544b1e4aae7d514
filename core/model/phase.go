package model

import "fmt"

// PhaseKind identifies a sequential production stage.
type PhaseKind int

const (
	PhaseMaterialOrder PhaseKind = iota
	PhaseMillwork
	PhaseBoxConstruction
	PhaseStain
	PhaseInstall
)

// AllPhases lists every phase in production order.
func AllPhases() []PhaseKind {
	return []PhaseKind{PhaseMaterialOrder, PhaseMillwork, PhaseBoxConstruction, PhaseStain, PhaseInstall}
}

// SchedulablePhases lists the phases that carry hours and shop capacity.
func SchedulablePhases() []PhaseKind {
	return []PhaseKind{PhaseMillwork, PhaseBoxConstruction, PhaseStain, PhaseInstall}
}

// Schedulable reports whether k carries hours and shop capacity.
func (k PhaseKind) Schedulable() bool {
	return k >= PhaseMillwork && k <= PhaseInstall
}

// String returns the wire name of the phase.
func (k PhaseKind) String() string {
	switch k {
	case PhaseMaterialOrder:
		return "material_order"
	case PhaseMillwork:
		return "millwork"
	case PhaseBoxConstruction:
		return "box_construction"
	case PhaseStain:
		return "stain"
	case PhaseInstall:
		return "install"
	default:
		return "unknown"
	}
}

// ParsePhaseKind converts a wire name back into a PhaseKind. The camelCase
// spellings used by older clients are accepted too.
func ParsePhaseKind(s string) (PhaseKind, error) {
	switch s {
	case "material_order", "materialOrder":
		return PhaseMaterialOrder, nil
	case "millwork":
		return PhaseMillwork, nil
	case "box_construction", "boxConstruction":
		return PhaseBoxConstruction, nil
	case "stain":
		return PhaseStain, nil
	case "install":
		return PhaseInstall, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PhaseKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PhaseKind) UnmarshalText(b []byte) error {
	v, err := ParsePhaseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ProjectPhase is a materialized phase of a project for calendar display.
// It is always derived from the project's dates and never stored.
type ProjectPhase struct {
	ProjectID string    `json:"project_id"`
	Project   string    `json:"project"`
	Phase     PhaseKind `json:"phase"`
	StartDate Date      `json:"start_date"`
	EndDate   Date      `json:"end_date"`
	Hours     int       `json:"hours"`
}
