// Package holiday owns the cached set of non-working dates used by the
// scheduling engine. The cache is explicitly loaded and reloaded; lookups
// never touch the source.
package holiday

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// Source fetches the full holiday list.
type Source interface {
	FetchHolidays(ctx context.Context) ([]model.Holiday, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]model.Holiday, error)

func (f SourceFunc) FetchHolidays(ctx context.Context) ([]model.Holiday, error) { return f(ctx) }

// Publisher receives HolidaysReloaded events.
type Publisher = events.Publisher

// Status describes the cache. Loaded is false until a fetch succeeds and
// again after a failed reload; Err holds the last fetch error. Callers
// should warn that derived dates may be wrong when Loaded is false.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Err      error     `json:"-"`
}

// ErrText returns the last fetch error text, if any.
func (s Status) ErrText() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Registry caches holidays. It is safe for concurrent use.
type Registry struct {
	src Source
	log logger.Logger
	pub Publisher
	now func() time.Time

	mu     sync.RWMutex
	byDate map[model.Date]model.Holiday
	status Status
}

// NewRegistry creates an empty, unloaded registry.
func NewRegistry(src Source, log logger.Logger, pub Publisher) *Registry {
	return &Registry{
		src:    src,
		log:    logger.OrNop(log),
		pub:    pub,
		now:    time.Now,
		byDate: map[model.Date]model.Holiday{},
	}
}

// Load fetches holidays the first time it is called and returns the cached
// status afterwards. A failed first load may be retried by calling Load
// again.
func (r *Registry) Load(ctx context.Context) Status {
	r.mu.RLock()
	st := r.status
	r.mu.RUnlock()
	if st.Loaded {
		return st
	}
	return r.fetch(ctx)
}

// ForceReload refetches unconditionally. The cache is swapped only on
// success, so a failing source leaves the previous holidays in place.
func (r *Registry) ForceReload(ctx context.Context) Status {
	return r.fetch(ctx)
}

func (r *Registry) fetch(ctx context.Context) Status {
	var (
		list []model.Holiday
		err  error
	)
	if r.src == nil {
		err = errNoSource
	} else {
		list, err = r.src.FetchHolidays(ctx)
	}

	r.mu.Lock()
	if err != nil {
		r.status.Loaded = false
		r.status.Err = err
		st := r.status
		r.mu.Unlock()
		r.log.Warnf("holiday load failed, using %d cached holidays: %v", st.Count, err)
		r.publish(st)
		return st
	}
	byDate := make(map[model.Date]model.Holiday, len(list))
	for _, h := range list {
		if h.Date.IsZero() {
			continue
		}
		byDate[h.Date] = h
	}
	r.byDate = byDate
	r.status = Status{Loaded: true, Count: len(byDate), LoadedAt: r.now()}
	st := r.status
	r.mu.Unlock()
	r.log.Infof("loaded %d holidays", st.Count)
	r.publish(st)
	return st
}

func (r *Registry) publish(st Status) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(events.HolidaysReloaded{Loaded: st.Loaded, Count: st.Count, Error: st.ErrText()})
}

// Status returns the current cache status.
func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// IsHoliday reports whether d is a cached holiday. An unloaded registry
// answers false.
func (r *Registry) IsHoliday(d model.Date) bool {
	r.mu.RLock()
	_, ok := r.byDate[d]
	r.mu.RUnlock()
	return ok
}

// IsWorkingDay is false on weekends and cached holidays.
func (r *Registry) IsWorkingDay(d model.Date) bool {
	return !d.IsWeekend() && !r.IsHoliday(d)
}

// Holidays returns the cached holidays sorted by date.
func (r *Registry) Holidays() []model.Holiday {
	r.mu.RLock()
	out := make([]model.Holiday, 0, len(r.byDate))
	for _, h := range r.byDate {
		out = append(out, h)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
