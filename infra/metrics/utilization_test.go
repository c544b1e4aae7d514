package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

func TestRecordReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry("shop", reg)
	require.NoError(t, err)

	day := model.MustParseDate("2025-12-22")
	rep := capacity.Report{Phases: []capacity.PhaseUtilization{{
		Phase: model.PhaseStain,
		Days: []capacity.DayUtilization{
			{Date: day, Allocated: 8, Capacity: 16, Ratio: 0.5},
			{Date: day.AddDays(1), Allocated: 10, Capacity: 8, Ratio: 1.25},
		},
	}}}

	samples := Samples(rep)
	require.Len(t, samples, 2)
	assert.False(t, samples[0].Overbook)
	assert.True(t, samples[1].Overbook)

	require.NoError(t, RecordReport(s, rep))
	assert.Equal(t, 0.5, testutil.ToFloat64(s.utilization.WithLabelValues("stain", "2025-12-22")))
	assert.Equal(t, 1.25, testutil.ToFloat64(s.utilization.WithLabelValues("stain", "2025-12-23")))
}

func TestRecordReportSkipsPlainSinks(t *testing.T) {
	var only phaseOnly
	require.NoError(t, RecordReport(&only, capacity.Report{}))
}
