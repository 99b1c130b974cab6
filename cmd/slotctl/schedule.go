package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hackgods/clinic-scheduling/internal/settings"
	"github.com/hackgods/clinic-scheduling/internal/slots"
)

// booking is one entry of the --appointments file.
type booking struct {
	PatientName string `json:"patientName"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    string `json:"duration"`
}

func (b booking) OccupancyDate() string     { return b.Date }
func (b booking) OccupancyTime() string     { return b.Time }
func (b booking) OccupancyDuration() string { return b.Duration }

// loadSchedule reads a yaml/json/toml schedule file on top of the default
// configuration. SLOTCTL_* environment variables override file values, with
// nested keys joined by underscores (SLOTCTL_LUNCHBREAK_START). An empty path
// yields the defaults.
func loadSchedule(path string) (slots.ScheduleConfiguration, error) {
	def := settings.DefaultConfiguration()

	v := viper.New()
	v.SetDefault("startTime", def.StartTime)
	v.SetDefault("endTime", def.EndTime)
	v.SetDefault("interval", def.Interval)
	v.SetDefault("workDays", def.WorkDays)
	v.SetDefault("lunchBreak.start", def.LunchBreak.Start)
	v.SetDefault("lunchBreak.end", def.LunchBreak.End)
	v.SetDefault("lunchBreak.enabled", def.LunchBreak.Enabled)

	v.SetEnvPrefix("SLOTCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return slots.ScheduleConfiguration{}, fmt.Errorf("read schedule %s: %w", path, err)
		}
	}

	var cfg slots.ScheduleConfiguration
	if err := v.Unmarshal(&cfg); err != nil {
		return slots.ScheduleConfiguration{}, fmt.Errorf("decode schedule: %w", err)
	}
	return cfg, nil
}

func loadBookings(path string) ([]booking, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read appointments: %w", err)
	}

	var out []booking
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return out, nil
}
