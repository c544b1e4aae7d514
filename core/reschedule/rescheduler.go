// Package reschedule moves a project's install date and rederives every
// dependent date, keeping the displayed project list in step with the store.
package reschedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/monitoring"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/schedule"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
)

// State of the rescheduler.
type State int

const (
	Idle State = iota
	Rescheduling
)

func (s State) String() string {
	if s == Rescheduling {
		return "rescheduling"
	}
	return "idle"
}

var (
	// ErrBusy is returned while another reschedule is in flight.
	ErrBusy = errors.New("a reschedule is already in progress")
	// ErrConfirmationRequired is returned for a large move that was not confirmed.
	ErrConfirmationRequired = errors.New("install date move requires confirmation")
)

// ConfirmFunc is asked before a move larger than the confirmation threshold.
// shiftDays is signed calendar days.
type ConfirmFunc func(p model.Project, newInstall model.Date, shiftDays int) bool

// AlwaysConfirm approves every move.
func AlwaysConfirm(model.Project, model.Date, int) bool { return true }

// Options holds the optional collaborators of a Rescheduler.
type Options struct {
	Cache     *ProjectCache
	Publisher events.Publisher
	Monitor   monitoring.Monitor
	Logger    logger.Logger
	// OnChange runs after the cache changes, including on rollback.
	OnChange func()
}

// Rescheduler runs one reschedule at a time.
type Rescheduler struct {
	store     store.ProjectStore
	scheduler schedule.ProjectScheduler
	threshold int

	cache    *ProjectCache
	pub      events.Publisher
	mon      monitoring.Monitor
	log      logger.Logger
	onChange func()

	mu    sync.Mutex
	state State
}

// New creates an idle Rescheduler. A missing cache is replaced by an empty
// one.
func New(st store.ProjectStore, sched schedule.ProjectScheduler, opts Options) *Rescheduler {
	cache := opts.Cache
	if cache == nil {
		cache = NewProjectCache(nil)
	}
	return &Rescheduler{
		store:     st,
		scheduler: sched,
		threshold: sched.Rules.ConfirmThresholdDays,
		cache:     cache,
		pub:       opts.Publisher,
		mon:       monitoring.OrNop(opts.Monitor),
		log:       logger.OrNop(opts.Logger),
		onChange:  opts.OnChange,
	}
}

// Cache returns the displayed project list.
func (r *Rescheduler) Cache() *ProjectCache { return r.cache }

// State returns the current state.
func (r *Rescheduler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Busy reports whether a reschedule is in flight. Drag operations should be
// refused while it is true.
func (r *Rescheduler) Busy() bool { return r.State() == Rescheduling }

func (r *Rescheduler) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Rescheduling {
		return ErrBusy
	}
	r.state = Rescheduling
	return nil
}

func (r *Rescheduler) end() {
	r.mu.Lock()
	r.state = Idle
	r.mu.Unlock()
}

// NeedsConfirmation reports whether moving p to newInstall exceeds the
// threshold.
func (r *Rescheduler) NeedsConfirmation(p model.Project, newInstall model.Date) bool {
	shift := p.InstallDate.DaysUntil(newInstall)
	return shift > r.threshold || -shift > r.threshold
}

// Reschedule moves the project's install date and recalculates its phase
// dates. The cache is updated before the write and reverted if the write
// fails; on success it holds the store's record.
func (r *Rescheduler) Reschedule(ctx context.Context, projectID string, newInstall model.Date, confirm ConfirmFunc) (model.Project, error) {
	if newInstall.IsZero() {
		return model.Project{}, schedule.ErrMissingInstallDate
	}
	if err := r.begin(); err != nil {
		return model.Project{}, err
	}
	defer r.end()

	current, err := r.current(ctx, projectID)
	if err != nil {
		return model.Project{}, err
	}
	if r.NeedsConfirmation(current, newInstall) {
		shift := current.InstallDate.DaysUntil(newInstall)
		if confirm == nil || !confirm(current, newInstall, shift) {
			return model.Project{}, fmt.Errorf("move %s by %d days: %w", projectID, shift, ErrConfirmationRequired)
		}
	}

	next := current.Clone()
	next.InstallDate = newInstall
	saved, err := r.commit(ctx, next)
	if err != nil {
		return model.Project{}, err
	}
	r.log.Infof("project %s: install moved %s -> %s", projectID, current.InstallDate, saved.InstallDate)
	if r.pub != nil {
		r.pub.Publish(events.ProjectRescheduled{
			ProjectID:  projectID,
			OldInstall: current.InstallDate,
			NewInstall: saved.InstallDate,
		})
	}
	return saved, nil
}

// Recalculate rederives a project's dates without moving its install date,
// as done when a project is created or its hours change.
func (r *Rescheduler) Recalculate(ctx context.Context, projectID string) (model.Project, error) {
	if err := r.begin(); err != nil {
		return model.Project{}, err
	}
	defer r.end()
	current, err := r.current(ctx, projectID)
	if err != nil {
		return model.Project{}, err
	}
	return r.commit(ctx, current)
}

func (r *Rescheduler) current(ctx context.Context, id string) (model.Project, error) {
	if p, ok := r.cache.Get(id); ok {
		return p, nil
	}
	p, err := r.store.GetProject(ctx, id)
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// commit recalculates p, applies it to the cache, persists it and rolls the
// cache back when the store rejects it.
func (r *Rescheduler) commit(ctx context.Context, p model.Project) (model.Project, error) {
	next, err := r.scheduler.CalculatePhaseDates(p)
	if err != nil {
		return model.Project{}, fmt.Errorf("recalculate %s: %w", p.ID, err)
	}

	snap := r.cache.Snapshot(p.ID)
	r.cache.Apply(next)
	r.changed()

	saved, err := r.store.UpdateProject(ctx, next)
	if err != nil {
		r.cache.Revert(snap)
		r.changed()
		r.mon.CaptureException(err, map[string]string{"op": "reschedule", "project_id": p.ID})
		r.log.Errorf("project %s: persist failed, rolled back: %v", p.ID, err)
		return model.Project{}, fmt.Errorf("persist project %s: %w", p.ID, err)
	}
	r.cache.Apply(saved)
	r.changed()
	return saved, nil
}

func (r *Rescheduler) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
