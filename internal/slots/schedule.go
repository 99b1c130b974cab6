// Package slots turns a practice's working-hours configuration into bookable
// time slots and classifies them against a day's appointments.
//
// Everything here is a pure function over already fetched data. Malformed input
// never produces an error: bad times degrade to 0 or nil, bad ranges to no
// slots, bad durations to DefaultDurationMinutes.
package slots

import (
	"context"
	"time"
)

// LunchBreak is a sub-interval of the working day excluded from generation.
type LunchBreak struct {
	Start   string `json:"start" mapstructure:"start"`
	End     string `json:"end" mapstructure:"end"`
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
}

// ScheduleConfiguration is the persisted schedule settings document.
type ScheduleConfiguration struct {
	StartTime  string     `json:"startTime" mapstructure:"startTime"`
	EndTime    string     `json:"endTime" mapstructure:"endTime"`
	Interval   int        `json:"interval" mapstructure:"interval"`
	WorkDays   []int      `json:"workDays" mapstructure:"workDays"`
	LunchBreak LunchBreak `json:"lunchBreak" mapstructure:"lunchBreak"`
}

// IsWorkDay reports whether the practice is open on the given weekday.
func (c ScheduleConfiguration) IsWorkDay(day time.Weekday) bool {
	for _, d := range c.WorkDays {
		if d == int(day) {
			return true
		}
	}
	return false
}

// ConfigProvider loads and saves the schedule configuration. The generator
// receives configuration from a provider instead of reading shared settings.
type ConfigProvider interface {
	Load(ctx context.Context) (ScheduleConfiguration, error)
	Save(ctx context.Context, cfg ScheduleConfiguration) error
}
