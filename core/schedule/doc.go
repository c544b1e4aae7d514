// Package schedule derives a project's phase dates by walking backward in
// business days from its fixed install date.
//
// Order of subtraction, from install:
//
//	stain lacquer    = install − StainLacquerGapDays
//	stain start      = stain lacquer − days(stain hours)
//	milling fillers  = stain start − MillingFillersGapDays
//	box toekick      = milling fillers − BoxToekickGapDays
//	box construction = box toekick − days(box hours)
//	millwork start   = box construction − days(millwork hours)
//	material order   = millwork start − MaterialLeadDays
//
// days(h) is ceil(h / HoursPerDay) with a floor of one day.
package schedule
