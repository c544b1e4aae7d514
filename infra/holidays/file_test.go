package holidays

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/holiday"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

func TestDecodeYAMLList(t *testing.T) {
	hs, err := Decode(strings.NewReader(`
- date: 2026-01-01
  name: New Year
- date: "2025-12-25"
  name: Christmas
`), "yaml")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "2025-12-25", hs[0].Date.String())
	assert.Equal(t, "New Year", hs[1].Name)
}

func TestDecodeYAMLDocument(t *testing.T) {
	hs, err := Decode(strings.NewReader(`
holidays:
  - {date: 2025-12-25, name: Xmas}
  - {date: 2025-12-25, name: Christmas}
  - {date: 2025-12-26, name: Boxing Day}
`), "yml")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "Christmas", hs[0].Name)
}

func TestDecodeJSON(t *testing.T) {
	hs, err := Decode(strings.NewReader(`[{"date":"2025-12-25","name":"Christmas"}]`), "json")
	require.NoError(t, err)
	require.Len(t, hs, 1)

	hs, err = Decode(strings.NewReader(`{"holidays":[{"date":"2026-07-01","name":"Canada Day"}]}`), "json")
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, model.NewDate(2026, 7, 1), hs[0].Date)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"name":"undated"}]`), "json")
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(`- date: 2025-02-30`), "yaml")
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(`x`), "toml")
	assert.Error(t, err)

	hs, err := Decode(strings.NewReader("  \n"), "yaml")
	require.NoError(t, err)
	assert.Empty(t, hs)
}

func TestFileFeedsRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- {date: 2025-12-25, name: Christmas}\n"), 0o600))

	reg := holiday.NewRegistry(NewFile(path), nil, nil)
	st := reg.Load(context.Background())
	require.True(t, st.Loaded)
	assert.True(t, reg.IsHoliday(model.MustParseDate("2025-12-25")))

	require.NoError(t, os.WriteFile(path, []byte("- {date: 2025-12-26, name: Boxing Day}\n"), 0o600))
	st = reg.ForceReload(context.Background())
	require.True(t, st.Loaded)
	assert.False(t, reg.IsHoliday(model.MustParseDate("2025-12-25")))
	assert.True(t, reg.IsHoliday(model.MustParseDate("2025-12-26")))
}

func TestMissingFileFailsOpen(t *testing.T) {
	reg := holiday.NewRegistry(NewFile(filepath.Join(t.TempDir(), "nope.yaml")), nil, nil)
	st := reg.Load(context.Background())
	assert.False(t, st.Loaded)
	assert.NotEmpty(t, st.ErrText())
	assert.True(t, reg.IsWorkingDay(model.MustParseDate("2025-12-25")))
}
