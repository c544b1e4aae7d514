// Package schedule exposes read-only scheduling views over HTTP.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/holiday"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/phases"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

// ProjectLister is the read side of store.ProjectStore.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
}

// UtilizationReporter is implemented by capacity.Service.
type UtilizationReporter interface {
	Utilization(ctx context.Context, from, to model.Date) (capacity.Report, error)
}

// HolidayStatus is implemented by holiday.Registry.
type HolidayStatus interface {
	Status() holiday.Status
	Holidays() []model.Holiday
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// dateParam reads an optional YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (model.Date, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return model.Date{}, true
	}
	d, err := model.ParseDate(v)
	return d, err == nil
}

// NewPhasesHandler serves GET /api/phases. Phases are derived on every
// request and never stored. Optional query parameters: project_id, from, to.
func NewPhasesHandler(projects ProjectLister, gen phases.Generator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		from, okFrom := dateParam(r, "from")
		to, okTo := dateParam(r, "to")
		if !okFrom || !okTo {
			http.Error(w, "from and to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		var list []model.Project
		if id := r.URL.Query().Get("project_id"); id != "" {
			p, err := projects.GetProject(r.Context(), id)
			if err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, store.ErrNotFound) {
					status = http.StatusNotFound
				}
				http.Error(w, err.Error(), status)
				return
			}
			list = []model.Project{p}
		} else {
			all, err := projects.ListProjects(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			list = all
		}
		out := gen.Generate(list)
		if !from.IsZero() || !to.IsZero() {
			lo, hi := from, to
			if hi.IsZero() {
				hi = model.NewDate(9999, time.December, 31)
			}
			out = phases.Overlapping(out, lo, hi)
		}
		if out == nil {
			out = []model.ProjectPhase{}
		}
		writeJSON(w, out)
	})
}

type holidayStatusResponse struct {
	Loaded   bool            `json:"loaded"`
	Count    int             `json:"count"`
	LoadedAt *time.Time      `json:"loaded_at,omitempty"`
	Error    string          `json:"error,omitempty"`
	Holidays []model.Holiday `json:"holidays,omitempty"`
}

// NewHolidayStatusHandler serves GET /api/holidays/status so clients can
// warn when dates were derived without holiday data. Add ?list=1 to include
// the cached holidays.
func NewHolidayStatusHandler(reg HolidayStatus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		st := reg.Status()
		resp := holidayStatusResponse{Loaded: st.Loaded, Count: st.Count, Error: st.ErrText()}
		if !st.LoadedAt.IsZero() {
			at := st.LoadedAt.UTC()
			resp.LoadedAt = &at
		}
		if r.URL.Query().Get("list") != "" {
			resp.Holidays = reg.Holidays()
		}
		writeJSON(w, resp)
	})
}

// NewUtilizationHandler serves GET /api/capacity/utilization?from=&to=.
// Both bounds are required and the range is limited to one year.
func NewUtilizationHandler(rep UtilizationReporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		from, okFrom := dateParam(r, "from")
		to, okTo := dateParam(r, "to")
		if !okFrom || !okTo || from.IsZero() || to.IsZero() {
			http.Error(w, "from and to are required as YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if to.Before(from) || from.DaysUntil(to) > 366 {
			http.Error(w, "invalid range", http.StatusBadRequest)
			return
		}
		report, err := rep.Utilization(r.Context(), from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, report)
	})
}

// Deps are the collaborators behind the schedule routes.
type Deps struct {
	Projects    ProjectLister
	Generator   phases.Generator
	Holidays    HolidayStatus
	Utilization UtilizationReporter
}

// Register mounts every schedule route on mux, plus /healthz.
func Register(mux *http.ServeMux, d Deps) {
	mux.Handle("/api/phases", NewPhasesHandler(d.Projects, d.Generator))
	mux.Handle("/api/holidays/status", NewHolidayStatusHandler(d.Holidays))
	mux.Handle("/api/capacity/utilization", NewUtilizationHandler(d.Utilization))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
