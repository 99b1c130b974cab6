package slots

import "time"

// GenerateSlots returns the ordered bookable start times for one working day.
// A non-positive interval or a start that is not before the end yields an
// empty list.
func GenerateSlots(cfg ScheduleConfiguration) []string {
	out := make([]string, 0)

	if cfg.Interval <= 0 {
		return out
	}

	startMin := ToMinutes(cfg.StartTime)
	endMin := ToMinutes(cfg.EndTime)
	if startMin >= endMin {
		return out
	}

	lunchStart, lunchEnd := -1, -1
	if cfg.LunchBreak.Enabled {
		lunchStart = ToMinutes(cfg.LunchBreak.Start)
		lunchEnd = ToMinutes(cfg.LunchBreak.End)
	}

	for i := startMin; i < endMin; i += cfg.Interval {
		if i >= lunchStart && i < lunchEnd {
			continue
		}
		out = append(out, ToTimeString(i))
	}

	return out
}

// SlotsForDay is GenerateSlots gated by the configured work days.
func SlotsForDay(cfg ScheduleConfiguration, day time.Time) []string {
	if !cfg.IsWorkDay(day.Weekday()) {
		return make([]string, 0)
	}
	return GenerateSlots(cfg)
}
