package slots

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// TimeParts is the canonical (hour, minute, period) triple used as a lookup key.
// Hour is the 12-hour display hour.
type TimeParts struct {
	Hour   int
	Minute int
	Period string // "AM" or "PM"
}

// Minutes returns minutes since midnight.
func (p TimeParts) Minutes() int {
	h := p.Hour % 12
	if p.Period == "PM" {
		h += 12
	}
	return h*60 + p.Minute
}

var (
	twelveHourRE     = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`)
	twentyFourHourRE = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// ToMinutes parses "H:MM AM/PM" into minutes since midnight.
// Malformed input yields 0.
func ToMinutes(timeStr string) int {
	fields := strings.Fields(timeStr)
	if len(fields) != 2 {
		return 0
	}

	clock := strings.Split(fields[0], ":")
	if len(clock) != 2 {
		return 0
	}

	hour, err := strconv.Atoi(clock[0])
	if err != nil {
		return 0
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil {
		return 0
	}
	if hour < 0 || hour > 12 || minute < 0 || minute > 59 {
		return 0
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0
	}

	return hour*60 + minute
}

// ToTimeString is the inverse of ToMinutes: 0 -> "12:00 AM", 720 -> "12:00 PM".
// Values outside a day wrap around.
func ToTimeString(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}

	hour := minutes / 60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%d:%02d %s", display, minutes%60, period)
}

// ExtractTimeParts finds an "H:MM AM/PM" time inside timeStr. Hour 0 reads as 12.
// nil means the value cannot be compared and must not occupy or match a slot.
func ExtractTimeParts(timeStr string) *TimeParts {
	m := twelveHourRE.FindStringSubmatch(timeStr)
	if m == nil {
		return nil
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 12 || minute > 59 {
		return nil
	}
	if hour == 0 {
		hour = 12
	}

	return &TimeParts{
		Hour:   hour,
		Minute: minute,
		Period: strings.ToUpper(m[3]),
	}
}

// NormalizeTimeFormat converts 24-hour ("14:00", "14:00:00") or 12-hour input
// into the zero-padded 12-hour form ("02:00 PM"). Anything else comes back trimmed.
func NormalizeTimeFormat(timeStr string) string {
	s := strings.TrimSpace(timeStr)

	if p := ExtractTimeParts(s); p != nil {
		return fmt.Sprintf("%02d:%02d %s", p.Hour, p.Minute, p.Period)
	}

	m := twentyFourHourRE.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return s
	}

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%02d:%02d %s", display, minute, period)
}

// parseStartMinutes resolves a free-form appointment time to minutes since
// midnight. ok is false when the value cannot be compared.
func parseStartMinutes(timeStr string) (int, bool) {
	p := ExtractTimeParts(NormalizeTimeFormat(timeStr))
	if p == nil {
		return 0, false
	}
	return p.Minutes(), true
}
