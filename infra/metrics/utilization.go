package metrics

import (
	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	coremetrics "github.com/canada7700/finish-line-calendar-app-sub000/core/metrics"
)

// Samples flattens a utilization report into per-day samples.
func Samples(rep capacity.Report) []coremetrics.UtilizationSample {
	var out []coremetrics.UtilizationSample
	for _, pu := range rep.Phases {
		for _, d := range pu.Days {
			out = append(out, coremetrics.UtilizationSample{
				Phase:    pu.Phase,
				Date:     d.Date,
				Ratio:    d.Ratio,
				Overbook: d.Overbooked(),
			})
		}
	}
	return out
}

// RecordReport pushes rep to sink when it records utilization.
func RecordReport(sink coremetrics.Sink, rep capacity.Report) error {
	r, ok := sink.(coremetrics.UtilizationRecorder)
	if !ok {
		return nil
	}
	return r.RecordUtilization(Samples(rep))
}
