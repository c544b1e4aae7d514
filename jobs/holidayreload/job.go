// Package holidayreload refreshes the holiday registry on a cron schedule.
package holidayreload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/holiday"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
)

// Reloader is the part of holiday.Registry the job drives.
type Reloader interface {
	ForceReload(ctx context.Context) holiday.Status
}

// Job reloads holidays on every tick of a standard cron spec. Overlapping
// runs are skipped.
type Job struct {
	reg     Reloader
	log     logger.Logger
	timeout time.Duration
	cron    *cron.Cron
	entry   cron.EntryID

	mu  sync.Mutex
	ctx context.Context
}

// New parses spec ("0 3 * * *", "@daily", "@every 6h") and prepares the
// schedule without starting it.
func New(spec string, reg Reloader, log logger.Logger) (*Job, error) {
	if reg == nil {
		return nil, fmt.Errorf("holiday reloader is required")
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse reload spec %q: %w", spec, err)
	}
	j := &Job{
		reg:     reg,
		log:     logger.OrNop(log),
		timeout: 30 * time.Second,
		ctx:     context.Background(),
	}
	cl := cronLogger{j.log}
	j.cron = cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	j.entry = j.cron.Schedule(sched, cron.FuncJob(j.tick))
	return j, nil
}

// Start runs the schedule until ctx is canceled.
func (j *Job) Start(ctx context.Context) {
	j.mu.Lock()
	j.ctx = ctx
	j.mu.Unlock()
	j.cron.Start()
	go func() {
		<-ctx.Done()
		<-j.cron.Stop().Done()
	}()
}

// Stop halts the schedule and waits for a running reload to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
}

// Next is the time of the next scheduled reload, zero before Start.
func (j *Job) Next() time.Time {
	return j.cron.Entry(j.entry).Next
}

// RunOnce reloads immediately and logs the outcome.
func (j *Job) RunOnce(ctx context.Context) holiday.Status {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	st := j.reg.ForceReload(ctx)
	if !st.Loaded {
		j.log.Warnf("scheduled holiday reload failed: %s", st.ErrText())
	} else {
		j.log.Debugf("scheduled holiday reload: %d holidays", st.Count)
	}
	return st
}

func (j *Job) tick() {
	j.mu.Lock()
	ctx := j.ctx
	j.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	j.RunOnce(ctx)
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct{ log logger.Logger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Debugw("cron: "+msg, fields(kv))
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	f := fields(kv)
	f["error"] = err.Error()
	l.log.Errorf("cron: %s %v", msg, f)
}

func fields(kv []interface{}) map[string]any {
	out := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
