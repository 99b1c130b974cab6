package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/settings"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const scheduleYAML = `
startTime: "09:00 AM"
endTime: "11:00 AM"
interval: 30
workDays: [1, 2, 3, 4, 5]
lunchBreak:
  start: "12:00 PM"
  end: "01:00 PM"
  enabled: false
`

func TestLoadScheduleDefaults(t *testing.T) {
	cfg, err := loadSchedule("")
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultConfiguration(), cfg)
}

func TestLoadScheduleYAML(t *testing.T) {
	cfg, err := loadSchedule(writeFile(t, "schedule.yaml", scheduleYAML))
	require.NoError(t, err)
	assert.Equal(t, "09:00 AM", cfg.StartTime)
	assert.Equal(t, "11:00 AM", cfg.EndTime)
	assert.Equal(t, 30, cfg.Interval)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.WorkDays)
	assert.False(t, cfg.LunchBreak.Enabled)
}

func TestLoadScheduleEnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("SLOTCTL_INTERVAL", "45")
	t.Setenv("SLOTCTL_LUNCHBREAK_START", "12:30 PM")
	t.Setenv("SLOTCTL_LUNCHBREAK_ENABLED", "true")

	cfg, err := loadSchedule(writeFile(t, "schedule.yaml", scheduleYAML))
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Interval)
	assert.Equal(t, "12:30 PM", cfg.LunchBreak.Start)
	assert.Equal(t, "01:00 PM", cfg.LunchBreak.End)
	assert.True(t, cfg.LunchBreak.Enabled)
}

func TestLoadScheduleMissingFile(t *testing.T) {
	_, err := loadSchedule(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSlotsCommandTable(t *testing.T) {
	cfgPath := writeFile(t, "schedule.yaml", scheduleYAML)
	apptsPath := writeFile(t, "appts.json",
		`[{"patientName":"Ada Lovelace","date":"2024-06-12","time":"09:30 AM","duration":"1 hour"}]`)

	out, err := runCLI(t, "slots", "--config", cfgPath, "--date", "2024-06-12", "--appointments", apptsPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "available")
	assert.Contains(t, lines[2], "start-of-appointment")
	assert.Contains(t, lines[2], "Ada Lovelace")
	assert.Contains(t, lines[2], "60 min")
	assert.Contains(t, lines[3], "occupied")
	assert.Contains(t, lines[4], "available")
	assert.Equal(t, "2024-06-12: 1 start, 1 occupied, 2 available", lines[5])
}

func TestSlotsCommandJSONClosedDay(t *testing.T) {
	cfgPath := writeFile(t, "schedule.yaml", scheduleYAML)

	// 2024-06-15 is a Saturday
	out, err := runCLI(t, "slots", "--config", cfgPath, "--date", "2024-06-15", "--json")
	require.NoError(t, err)

	var body struct {
		Closed bool              `json:"closed"`
		Slots  []json.RawMessage `json:"slots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.True(t, body.Closed)
	assert.Empty(t, body.Slots)
}

func TestSlotsCommandRejectsBadDate(t *testing.T) {
	_, err := runCLI(t, "slots", "--date", "12/06/2024")
	assert.Error(t, err)
}

func TestSlotsCommandValidate(t *testing.T) {
	cfgPath := writeFile(t, "schedule.yaml", `
startTime: "05:00 PM"
endTime: "08:00 AM"
interval: 30
`)
	_, err := runCLI(t, "slots", "--config", cfgPath, "--date", "2024-06-12", "--validate")
	assert.ErrorIs(t, err, settings.ErrInvalidSchedule)

	out, err := runCLI(t, "slots", "--config", cfgPath, "--date", "2024-06-12")
	require.NoError(t, err)
	assert.Contains(t, out, "closed or no slots configured")
}

func TestTimeCommand(t *testing.T) {
	out, err := runCLI(t, "time", "14:05")
	require.NoError(t, err)
	assert.Contains(t, out, `normalized: "02:05 PM"`)
	assert.Contains(t, out, "minutes:    845")
	assert.Contains(t, out, "display:    2:05 PM")

	out, err = runCLI(t, "time", "noon")
	require.NoError(t, err)
	assert.Contains(t, out, "parts:      unrecognized")
	assert.Contains(t, out, "minutes:    0")
}
