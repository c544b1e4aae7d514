// Package calendar implements business-day arithmetic over model.Date.
// A business day is Monday to Friday and not a holiday.
package calendar

import "github.com/canada7700/finish-line-calendar-app-sub000/core/model"

// HolidayChecker reports whether a date is a holiday.
type HolidayChecker interface {
	IsHoliday(d model.Date) bool
}

type noHolidays struct{}

func (noHolidays) IsHoliday(model.Date) bool { return false }

// Calendar steps through business days. The zero value treats only
// weekends as non-working.
type Calendar struct {
	holidays HolidayChecker
}

// New returns a Calendar backed by h. A nil checker means no holidays.
func New(h HolidayChecker) Calendar {
	if h == nil {
		h = noHolidays{}
	}
	return Calendar{holidays: h}
}

// IsWorkingDay is false for weekends and holidays.
func (c Calendar) IsWorkingDay(d model.Date) bool {
	if d.IsWeekend() {
		return false
	}
	return c.holidays == nil || !c.holidays.IsHoliday(d)
}

// AddBusinessDays returns the n-th business day after d. d itself is never
// counted. Negative n walks backward.
func (c Calendar) AddBusinessDays(d model.Date, n int) model.Date {
	if n < 0 {
		return c.step(d, -n, -1)
	}
	return c.step(d, n, 1)
}

// SubtractBusinessDays returns the n-th business day before d.
func (c Calendar) SubtractBusinessDays(d model.Date, n int) model.Date {
	if n < 0 {
		return c.step(d, -n, 1)
	}
	return c.step(d, n, -1)
}

func (c Calendar) step(d model.Date, n, dir int) model.Date {
	for n > 0 {
		d = d.AddDays(dir)
		if c.IsWorkingDay(d) {
			n--
		}
	}
	return d
}

// NextWorkingDay returns d when it is a working day, otherwise the first
// working day after it.
func (c Calendar) NextWorkingDay(d model.Date) model.Date {
	for !c.IsWorkingDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// WorkingDays lists the working days in [start, end] in chronological
// order. It returns nil when end is before start.
func (c Calendar) WorkingDays(start, end model.Date) []model.Date {
	if end.Before(start) {
		return nil
	}
	var out []model.Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		if c.IsWorkingDay(d) {
			out = append(out, d)
		}
	}
	return out
}
