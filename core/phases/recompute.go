package phases

import (
	"sync"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

// Recomputer coalesces change notifications into a single call of fn after
// a quiet period. While a drag gesture is active notifications are held
// back; when the drag ends one recompute runs after the longer drag delay.
type Recomputer struct {
	fn    func()
	delay time.Duration
	drag  time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	dragging bool
	pending  bool
	stopped  bool
}

// NewRecomputer builds a Recomputer using the debounce delays from r.
func NewRecomputer(r rules.Rules, fn func()) *Recomputer {
	return &Recomputer{fn: fn, delay: r.RecomputeDebounce(), drag: r.DragRecomputeDebounce()}
}

// Notify reports an ordinary data change.
func (r *Recomputer) Notify() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if r.dragging {
		r.pending = true
		return
	}
	r.scheduleLocked(r.delay)
}

// BeginDrag suspends recomputation. A recompute already waiting is held
// until EndDrag.
func (r *Recomputer) BeginDrag() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.dragging {
		return
	}
	r.dragging = true
	if r.timer != nil && r.timer.Stop() {
		r.pending = true
	}
	r.gen++
}

// EndDrag resumes recomputation and schedules one run after the drag delay.
func (r *Recomputer) EndDrag() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || !r.dragging {
		return
	}
	r.dragging = false
	r.pending = false
	r.scheduleLocked(r.drag)
}

// Dragging reports whether a drag gesture is in progress.
func (r *Recomputer) Dragging() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dragging
}

// Stop cancels any scheduled run. Later notifications are ignored.
func (r *Recomputer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
	}
}

func (r *Recomputer) scheduleLocked(d time.Duration) {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	gen := r.gen
	r.timer = time.AfterFunc(d, func() { r.fire(gen) })
}

func (r *Recomputer) fire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || r.dragging || r.stopped {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	r.fn()
}
