package settings

import (
	"errors"
	"fmt"

	"github.com/hackgods/clinic-scheduling/internal/slots"
)

var ErrInvalidSchedule = errors.New("invalid schedule configuration")

// Validate checks a configuration submitted through the settings endpoint.
// The slot engine does not call it; stored data is used as found.
func Validate(cfg slots.ScheduleConfiguration) error {
	if slots.ExtractTimeParts(cfg.StartTime) == nil {
		return fmt.Errorf("%w: startTime %q is not H:MM AM/PM", ErrInvalidSchedule, cfg.StartTime)
	}
	if slots.ExtractTimeParts(cfg.EndTime) == nil {
		return fmt.Errorf("%w: endTime %q is not H:MM AM/PM", ErrInvalidSchedule, cfg.EndTime)
	}
	if slots.ToMinutes(cfg.StartTime) >= slots.ToMinutes(cfg.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidSchedule)
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidSchedule)
	}

	seen := make(map[int]struct{}, len(cfg.WorkDays))
	for _, d := range cfg.WorkDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: work day %d out of range 0-6", ErrInvalidSchedule, d)
		}
		if _, dup := seen[d]; dup {
			return fmt.Errorf("%w: work day %d listed twice", ErrInvalidSchedule, d)
		}
		seen[d] = struct{}{}
	}

	if cfg.LunchBreak.Enabled {
		if slots.ExtractTimeParts(cfg.LunchBreak.Start) == nil || slots.ExtractTimeParts(cfg.LunchBreak.End) == nil {
			return fmt.Errorf("%w: lunch break times must be H:MM AM/PM", ErrInvalidSchedule)
		}
		if slots.ToMinutes(cfg.LunchBreak.Start) >= slots.ToMinutes(cfg.LunchBreak.End) {
			return fmt.Errorf("%w: lunch break start must be before end", ErrInvalidSchedule)
		}
	}

	return nil
}
