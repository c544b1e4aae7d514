// Package export writes phase bars and hour-block bookings for spreadsheets
// and other tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// Formats lists the values accepted by Write.
var Formats = []string{"json", "csv"}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePhasesCSV writes one row per phase bar. End dates are exclusive.
func WritePhasesCSV(w io.Writer, list []model.ProjectPhase) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"project_id", "project", "phase", "start_date", "end_date", "hours"}); err != nil {
		return err
	}
	for _, p := range list {
		rec := []string{
			p.ProjectID,
			p.Project,
			p.Phase.String(),
			p.StartDate.String(),
			p.EndDate.String(),
			strconv.Itoa(p.Hours),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHoursCSV writes one row per booked hour block.
func WriteHoursCSV(w io.Writer, list []model.DailyHourAllocation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "hour_block", "team_member_id", "project_id", "phase"}); err != nil {
		return err
	}
	for _, a := range list {
		rec := []string{
			a.Date.String(),
			fmt.Sprintf("%02d:00", a.HourBlock),
			a.TeamMemberID,
			a.ProjectID,
			a.Phase.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePhases writes list in format ("json" or "csv").
func WritePhases(w io.Writer, format string, list []model.ProjectPhase) error {
	switch format {
	case "", "json":
		if list == nil {
			list = []model.ProjectPhase{}
		}
		return WriteJSON(w, list)
	case "csv":
		return WritePhasesCSV(w, list)
	default:
		return fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
	}
}

// WriteHours writes list in format ("json" or "csv").
func WriteHours(w io.Writer, format string, list []model.DailyHourAllocation) error {
	switch format {
	case "", "json":
		if list == nil {
			list = []model.DailyHourAllocation{}
		}
		return WriteJSON(w, list)
	case "csv":
		return WriteHoursCSV(w, list)
	default:
		return fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
	}
}
