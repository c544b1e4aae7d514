package capacity

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// DayUtilization is one phase's load on one working day.
type DayUtilization struct {
	Date      model.Date `json:"date"`
	Allocated int        `json:"allocated"`
	Capacity  int        `json:"capacity"`
	Ratio     float64    `json:"ratio"`
}

// Overbooked reports allocations above capacity, which only happens when an
// override lowered capacity after hours were placed.
func (d DayUtilization) Overbooked() bool { return d.Allocated > d.Capacity }

// PhaseUtilization summarizes a phase over the report's days.
type PhaseUtilization struct {
	Phase      model.PhaseKind  `json:"phase"`
	Mean       float64          `json:"mean"`
	StdDev     float64          `json:"std_dev"`
	Peak       float64          `json:"peak"`
	PeakDate   model.Date       `json:"peak_date"`
	Overbooked int              `json:"overbooked_days"`
	Days       []DayUtilization `json:"days"`
}

// Report holds utilization for every schedulable phase.
type Report struct {
	Phases []PhaseUtilization `json:"phases"`
}

// Utilization computes per-phase statistics of allocated/effective capacity
// over days. A day with no capacity counts as fully used when anything is
// allocated to it and as idle otherwise.
func Utilization(allocs []model.DailyPhaseAllocation, table *Table, days []model.Date) Report {
	type key struct {
		phase model.PhaseKind
		date  model.Date
	}
	sums := make(map[key]int, len(allocs))
	for _, a := range allocs {
		sums[key{a.Phase, a.Date}] += a.AllocatedHours
	}

	var rep Report
	for _, phase := range model.SchedulablePhases() {
		pu := PhaseUtilization{Phase: phase}
		if len(days) == 0 {
			rep.Phases = append(rep.Phases, pu)
			continue
		}
		ratios := make([]float64, len(days))
		pu.Days = make([]DayUtilization, len(days))
		for i, d := range days {
			du := DayUtilization{
				Date:      d,
				Allocated: sums[key{phase, d}],
				Capacity:  table.Effective(d, phase),
			}
			switch {
			case du.Capacity > 0:
				du.Ratio = float64(du.Allocated) / float64(du.Capacity)
			case du.Allocated > 0:
				du.Ratio = 1
			}
			if du.Overbooked() {
				pu.Overbooked++
			}
			ratios[i] = du.Ratio
			pu.Days[i] = du
		}
		pu.Mean, pu.StdDev = stat.MeanStdDev(ratios, nil)
		if len(ratios) < 2 {
			pu.StdDev = 0
		}
		peak := floats.MaxIdx(ratios)
		pu.Peak, pu.PeakDate = ratios[peak], days[peak]
		rep.Phases = append(rep.Phases, pu)
	}
	return rep
}
