package holiday

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

type recordingPub struct{ events []events.Event }

func (p *recordingPub) Publish(e events.Event) { p.events = append(p.events, e) }

func christmas() []model.Holiday {
	return []model.Holiday{
		{Date: model.MustParseDate("2025-12-25"), Name: "Christmas"},
		{Date: model.MustParseDate("2025-12-24"), Name: "Christmas Eve"},
	}
}

func TestLoadCachesAndLooksUp(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(context.Context) ([]model.Holiday, error) {
		calls.Add(1)
		return christmas(), nil
	})
	r := NewRegistry(src, nil, nil)
	assert.False(t, r.Status().Loaded)

	st := r.Load(context.Background())
	require.True(t, st.Loaded)
	assert.Equal(t, 2, st.Count)
	r.Load(context.Background())
	assert.EqualValues(t, 1, calls.Load(), "second Load must use the cache")

	assert.True(t, r.IsHoliday(model.MustParseDate("2025-12-25")))
	assert.False(t, r.IsWorkingDay(model.MustParseDate("2025-12-24")))
	assert.True(t, r.IsWorkingDay(model.MustParseDate("2025-12-23")))
	assert.False(t, r.IsWorkingDay(model.MustParseDate("2025-12-27")))

	hs := r.Holidays()
	require.Len(t, hs, 2)
	assert.Equal(t, "Christmas Eve", hs[0].Name)
}

func TestForceReloadRefetches(t *testing.T) {
	list := christmas()
	r := NewRegistry(SourceFunc(func(context.Context) ([]model.Holiday, error) { return list, nil }), nil, nil)
	r.Load(context.Background())
	list = append(list, model.Holiday{Date: model.MustParseDate("2026-01-01"), Name: "New Year"})
	st := r.ForceReload(context.Background())
	assert.Equal(t, 3, st.Count)
	assert.True(t, r.IsHoliday(model.MustParseDate("2026-01-01")))
}

func TestLoadFailureFailsOpen(t *testing.T) {
	pub := &recordingPub{}
	r := NewRegistry(SourceFunc(func(context.Context) ([]model.Holiday, error) {
		return nil, errors.New("backend down")
	}), nil, pub)
	st := r.Load(context.Background())
	assert.False(t, st.Loaded)
	assert.EqualError(t, st.Err, "backend down")
	assert.False(t, r.IsHoliday(model.MustParseDate("2025-12-25")))
	assert.True(t, r.IsWorkingDay(model.MustParseDate("2025-12-25")))
	require.Len(t, pub.events, 1)
	ev := pub.events[0].(events.HolidaysReloaded)
	assert.False(t, ev.Loaded)
	assert.Equal(t, "backend down", ev.Error)
}

func TestReloadFailureKeepsStaleCache(t *testing.T) {
	fail := false
	r := NewRegistry(SourceFunc(func(context.Context) ([]model.Holiday, error) {
		if fail {
			return nil, errors.New("timeout")
		}
		return christmas(), nil
	}), nil, nil)
	require.True(t, r.Load(context.Background()).Loaded)
	fail = true
	st := r.ForceReload(context.Background())
	assert.False(t, st.Loaded)
	assert.Equal(t, 2, st.Count)
	assert.True(t, r.IsHoliday(model.MustParseDate("2025-12-25")))

	fail = false
	assert.True(t, r.Load(context.Background()).Loaded, "Load retries after a failure")
}

func TestNilSource(t *testing.T) {
	r := NewRegistry(nil, nil, nil)
	st := r.Load(context.Background())
	assert.False(t, st.Loaded)
	assert.Error(t, st.Err)
}

func TestStaticSource(t *testing.T) {
	r := NewRegistry(Static(christmas()), nil, nil)
	assert.True(t, r.Load(context.Background()).Loaded)
}
