package phases

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/rules"
)

func fastRules() rules.Rules {
	r := rules.Default()
	r.RecomputeDebounceMS = 20
	r.DragRecomputeDebounceMS = 60
	return r
}

func TestRecomputerCoalescesNotifications(t *testing.T) {
	var runs atomic.Int32
	rc := NewRecomputer(fastRules(), func() { runs.Add(1) })
	defer rc.Stop()
	for i := 0; i < 5; i++ {
		rc.Notify()
	}
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, runs.Load())
}

func TestRecomputerSuspendsDuringDrag(t *testing.T) {
	var runs atomic.Int32
	rc := NewRecomputer(fastRules(), func() { runs.Add(1) })
	defer rc.Stop()

	rc.BeginDrag()
	assert.True(t, rc.Dragging())
	rc.Notify()
	time.Sleep(80 * time.Millisecond)
	assert.EqualValues(t, 0, runs.Load(), "no recompute mid-drag")

	start := time.Now()
	rc.EndDrag()
	assert.False(t, rc.Dragging())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestRecomputerDragCancelsPendingRun(t *testing.T) {
	var runs atomic.Int32
	rc := NewRecomputer(fastRules(), func() { runs.Add(1) })
	defer rc.Stop()
	rc.Notify()
	rc.BeginDrag()
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, runs.Load())
	rc.EndDrag()
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRecomputerStop(t *testing.T) {
	var runs atomic.Int32
	rc := NewRecomputer(fastRules(), func() { runs.Add(1) })
	rc.Notify()
	rc.Stop()
	rc.Notify()
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 0, runs.Load())
}
