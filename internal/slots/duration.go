package slots

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationMinutes applies when a duration string cannot be parsed.
const DefaultDurationMinutes = 30

const durationUnits = `hours|hour|hrs|hr|h|minutes|minute|mins|min|m`

// compoundDurationRE matches input where every term carries a unit, such as
// "1h 30m" or "1 hour, 15 min".
var (
	durationTermRE     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(` + durationUnits + `)?\b`)
	compoundDurationRE = regexp.MustCompile(`^(?:\d+(?:\.\d+)?\s*(?:` + durationUnits + `)\b[\s,]*(?:and\s+)?)+$`)
	unitThenDigitRE    = regexp.MustCompile(`([a-z])(\d)`)
)

// ParseDurationMinutes reads free-form durations such as "30 min", "45",
// "1.5 hours" or "1h 30m". Bare numbers are minutes. Terms are added only when
// every term has a unit; otherwise the first term wins, so ranges and notes
// ("30-45 min", "30 min (approx)") read as their leading value. Unparseable
// input yields DefaultDurationMinutes. The result is capped at one day.
func ParseDurationMinutes(duration string) int {
	s := strings.ToLower(strings.TrimSpace(duration))
	s = unitThenDigitRE.ReplaceAllString(s, "$1 $2")
	matches := durationTermRE.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return DefaultDurationMinutes
	}
	if !compoundDurationRE.MatchString(s) {
		matches = matches[:1]
	}

	total := 0.0
	for _, m := range matches {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil || math.IsInf(n, 0) {
			return DefaultDurationMinutes
		}
		switch m[2] {
		case "hours", "hour", "hrs", "hr", "h":
			total += n * 60
		default:
			total += n
		}
		if total >= minutesPerDay {
			return minutesPerDay
		}
	}

	return int(math.Round(total))
}

// FormatDuration renders minutes the way appointment records store them.
func FormatDuration(minutes int) string {
	return strconv.Itoa(minutes) + " min"
}
