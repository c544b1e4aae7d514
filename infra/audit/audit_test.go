package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/internal/eventbus"
)

var t0 = time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord(events.PhaseScheduled{ProjectID: "p1", Phase: model.PhaseStain, ScheduledHours: 6}, t0)
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.ProjectID)
	assert.Equal(t, events.PhaseScheduled{}.Topic(), rec.Topic)
	assert.Contains(t, string(rec.Event), `"stain"`)

	rec, err = NewRecord(events.HolidaysReloaded{Loaded: true, Count: 3}, t0)
	require.NoError(t, err)
	assert.Empty(t, rec.ProjectID)
}

func TestQueryMatch(t *testing.T) {
	rec := Record{Timestamp: t0, Topic: "phase/scheduled", ProjectID: "p1"}
	assert.True(t, Query{}.Match(rec))
	assert.True(t, Query{Start: t0, End: t0}.Match(rec))
	assert.False(t, Query{Start: t0.Add(time.Second)}.Match(rec))
	assert.False(t, Query{End: t0.Add(-time.Second)}.Match(rec))
	assert.False(t, Query{ProjectID: "p2"}.Match(rec))
	assert.False(t, Query{Topic: "other"}.Match(rec))
}

func TestJSONLStoreAppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "events.jsonl")
	st, err := NewJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	for i, id := range []string{"p2", "p1", "p1"} {
		rec, err := NewRecord(events.ProjectRescheduled{ProjectID: id}, t0.Add(time.Duration(3-i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, st.Append(ctx, rec))
	}

	all, err := st.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Timestamp.Before(all[2].Timestamp))

	p1, err := st.Query(ctx, Query{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Len(t, p1, 2)
}

func TestJSONLStoreQueryMissingFile(t *testing.T) {
	st, err := NewJSONLStore(filepath.Join(t.TempDir(), "none.jsonl"), 1, 1, 1)
	require.NoError(t, err)
	out, err := st.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

type memStore struct {
	ch chan Record
}

func (m *memStore) Append(_ context.Context, r Record) error { m.ch <- r; return nil }
func (m *memStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (m *memStore) Close() error                                   { return nil }

func TestStartRecordsBusEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &memStore{ch: make(chan Record, 1)}
	Start(ctx, bus, st, nil)
	bus.Publish(events.HourBlocksAssigned{ProjectID: "p9", Phase: model.PhaseInstall})

	select {
	case rec := <-st.ch:
		assert.Equal(t, "p9", rec.ProjectID)
	case <-time.After(time.Second):
		t.Fatal("event not recorded")
	}
}
