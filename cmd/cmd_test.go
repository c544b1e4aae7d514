package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), buf.String())
	return buf.String()
}

func TestProjectLifecycle(t *testing.T) {
	t.Setenv("K_STORAGE__PATH", filepath.Join(t.TempDir(), "shop.db"))

	var created model.Project
	out := execute(t, "project", "add", "--id", "p1", "--name", "Smith kitchen",
		"--install", "2025-12-23", "--millwork-hours", "40", "--stain-hours", "16")
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "p1", created.ID)
	require.NotNil(t, created.MillworkStartDate)
	assert.True(t, created.MillworkStartDate.Before(created.InstallDate))

	var bars []model.ProjectPhase
	require.NoError(t, json.Unmarshal([]byte(execute(t, "phases", "--project", "p1")), &bars))
	assert.NotEmpty(t, bars)

	assert.Contains(t, execute(t, "holidays", "add", "2025-12-25", "--name", "Christmas"), "1 holidays loaded")

	var moved model.Project
	require.NoError(t, json.Unmarshal([]byte(execute(t, "reschedule", "p1", "2026-01-06", "--yes")), &moved))
	assert.Equal(t, "2026-01-06", moved.InstallDate.String())
}

func TestRescheduleNeedsConfirmation(t *testing.T) {
	t.Setenv("K_STORAGE__PATH", filepath.Join(t.TempDir(), "shop.db"))
	execute(t, "project", "add", "--id", "p2", "--name", "Jones bath", "--install", "2026-03-02")

	rescheduleOpts.yes = false
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(bytes.NewBufferString("n\n"))
	rootCmd.SetArgs([]string{"reschedule", "p2", "2026-06-01"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "[y/N]")
}

func TestPhaseAndHours(t *testing.T) {
	kind, n, err := phaseAndHours("stain", "12")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStain, kind)
	assert.Equal(t, 12, n)

	_, _, err = phaseAndHours("stain", "-1")
	assert.Error(t, err)
	_, _, err = phaseAndHours("paint", "4")
	assert.Error(t, err)
}
