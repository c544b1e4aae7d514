package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeHours is returned for a phase estimate below zero.
var ErrNegativeHours = errors.New("phase hours must not be negative")

// ProjectStatus is the coarse production state of a project.
type ProjectStatus string

const (
	StatusPlanning  ProjectStatus = "planning"
	StatusShop      ProjectStatus = "shop"
	StatusStain     ProjectStatus = "stain"
	StatusInstall   ProjectStatus = "install"
	StatusCompleted ProjectStatus = "completed"
	StatusCustom    ProjectStatus = "custom"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusShop, StatusStain, StatusInstall, StatusCompleted, StatusCustom:
		return true
	}
	return false
}

// PhaseHours holds the estimated hours per schedulable phase.
type PhaseHours struct {
	Millwork        int `json:"millwork"`
	BoxConstruction int `json:"box_construction"`
	Stain           int `json:"stain"`
	Install         int `json:"install"`
}

// Validate rejects negative hour totals.
func (h PhaseHours) Validate() error {
	for _, k := range SchedulablePhases() {
		if h.Of(k) < 0 {
			return fmt.Errorf("%s: %w", k, ErrNegativeHours)
		}
	}
	return nil
}

// Of returns the hours for kind. Material ordering has no hours.
func (h PhaseHours) Of(kind PhaseKind) int {
	switch kind {
	case PhaseMillwork:
		return h.Millwork
	case PhaseBoxConstruction:
		return h.BoxConstruction
	case PhaseStain:
		return h.Stain
	case PhaseInstall:
		return h.Install
	default:
		return 0
	}
}

// Project is a cabinet job anchored on its install date. Every other date is
// derived from InstallDate and Hours.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Hours       PhaseHours    `json:"hours"`
	InstallDate Date          `json:"install_date"`
	Status      ProjectStatus `json:"status"`

	MaterialOrderDate        *Date `json:"material_order_date,omitempty"`
	MillworkStartDate        *Date `json:"millwork_start_date,omitempty"`
	BoxConstructionStartDate *Date `json:"box_construction_start_date,omitempty"`
	BoxToekickAssemblyDate   *Date `json:"box_toekick_assembly_date,omitempty"`
	MillingFillersDate       *Date `json:"milling_fillers_date,omitempty"`
	StainStartDate           *Date `json:"stain_start_date,omitempty"`
	StainLacquerDate         *Date `json:"stain_lacquer_date,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// PhaseStart returns the start date of kind, or nil when it has not been
// derived yet.
func (p Project) PhaseStart(kind PhaseKind) *Date {
	switch kind {
	case PhaseMaterialOrder:
		return p.MaterialOrderDate
	case PhaseMillwork:
		return p.MillworkStartDate
	case PhaseBoxConstruction:
		return p.BoxConstructionStartDate
	case PhaseStain:
		return p.StainStartDate
	case PhaseInstall:
		if p.InstallDate.IsZero() {
			return nil
		}
		d := p.InstallDate
		return &d
	default:
		return nil
	}
}

// Clone returns a deep copy so derived date pointers are not shared.
func (p Project) Clone() Project {
	c := p
	for _, f := range []**Date{
		&c.MaterialOrderDate, &c.MillworkStartDate, &c.BoxConstructionStartDate,
		&c.BoxToekickAssemblyDate, &c.MillingFillersDate, &c.StainStartDate, &c.StainLacquerDate,
	} {
		if *f != nil {
			v := **f
			*f = &v
		}
	}
	return c
}

// ClearDerived drops every derived date.
func (p *Project) ClearDerived() {
	p.MaterialOrderDate = nil
	p.MillworkStartDate = nil
	p.BoxConstructionStartDate = nil
	p.BoxToekickAssemblyDate = nil
	p.MillingFillersDate = nil
	p.StainStartDate = nil
	p.StainLacquerDate = nil
}

// NamedDate pairs a derived date with its field name.
type NamedDate struct {
	Name string
	Date *Date
}

// OrderedDates lists every date of the project in production order, ending
// with the install date.
func (p Project) OrderedDates() []NamedDate {
	install := p.InstallDate
	return []NamedDate{
		{"material_order_date", p.MaterialOrderDate},
		{"millwork_start_date", p.MillworkStartDate},
		{"box_construction_start_date", p.BoxConstructionStartDate},
		{"box_toekick_assembly_date", p.BoxToekickAssemblyDate},
		{"milling_fillers_date", p.MillingFillersDate},
		{"stain_start_date", p.StainStartDate},
		{"stain_lacquer_date", p.StainLacquerDate},
		{"install_date", &install},
	}
}
