package slots

import "strings"

// Status is the classification of a generated slot.
type Status string

const (
	StatusStart     Status = "start-of-appointment"
	StatusOccupied  Status = "occupied"
	StatusAvailable Status = "available"
)

// Occupant is the subset of an appointment record the resolver reads.
type Occupant interface {
	OccupancyDate() string
	OccupancyTime() string
	OccupancyDuration() string
}

// Slot is a generated start time annotated with its status. Appointment is set
// only for StatusStart.
type Slot[T Occupant] struct {
	Time        string `json:"time"`
	Status      Status `json:"status"`
	Appointment *T     `json:"appointment,omitempty"`
}

// Summary counts slots per status.
type Summary struct {
	Start     int `json:"start"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

type occupancy[T Occupant] struct {
	start    int
	duration int
	ref      *T
}

// ClassifySlots annotates each slot as the start of an appointment, occupied by
// an earlier appointment, or available. Only appointments dated day
// (YYYY-MM-DD) are considered. Appointments whose time cannot be parsed or
// whose duration is not positive are ignored. When several appointments start
// at the same slot the last one in appts is attached.
func ClassifySlots[T Occupant](slotTimes []string, appts []T, day string) []Slot[T] {
	occ := dayOccupancy(appts, day)

	starts := make(map[int]*T, len(occ))
	for _, o := range occ {
		starts[o.start] = o.ref
	}

	out := make([]Slot[T], 0, len(slotTimes))
	for _, t := range slotTimes {
		m := ToMinutes(t)
		s := Slot[T]{Time: t, Status: StatusAvailable}

		if ref, ok := starts[m]; ok {
			s.Status = StatusStart
			s.Appointment = ref
		} else {
			for _, o := range occ {
				if m >= o.start && m < o.start+o.duration {
					s.Status = StatusOccupied
					break
				}
			}
		}

		out = append(out, s)
	}

	return out
}

// Summarize counts classified slots per status.
func Summarize[T Occupant](classified []Slot[T]) Summary {
	var sum Summary
	for _, s := range classified {
		switch s.Status {
		case StatusStart:
			sum.Start++
		case StatusOccupied:
			sum.Occupied++
		default:
			sum.Available++
		}
	}
	return sum
}

// Overlaps reports whether [aStart, aStart+aDur) and [bStart, bStart+bDur)
// intersect.
func Overlaps(aStart, aDur, bStart, bDur int) bool {
	return aStart < bStart+bDur && bStart < aStart+aDur
}

// FindConflict returns the first appointment on day whose interval overlaps a
// booking at timeStr lasting duration. Unparseable candidates never conflict.
func FindConflict[T Occupant](appts []T, day, timeStr, duration string) (*T, bool) {
	start, ok := parseStartMinutes(timeStr)
	if !ok {
		return nil, false
	}
	dur := ParseDurationMinutes(duration)
	if dur <= 0 {
		return nil, false
	}

	for _, o := range dayOccupancy(appts, day) {
		if Overlaps(start, dur, o.start, o.duration) {
			return o.ref, true
		}
	}
	return nil, false
}

func dayOccupancy[T Occupant](appts []T, day string) []occupancy[T] {
	day = datePart(day)
	out := make([]occupancy[T], 0, len(appts))
	for i := range appts {
		a := &appts[i]
		if datePart((*a).OccupancyDate()) != day {
			continue
		}
		start, ok := parseStartMinutes((*a).OccupancyTime())
		if !ok {
			continue
		}
		dur := ParseDurationMinutes((*a).OccupancyDuration())
		if dur <= 0 {
			continue
		}
		out = append(out, occupancy[T]{start: start, duration: dur, ref: a})
	}
	return out
}

// datePart accepts "2024-06-12" as well as ISO date-times such as
// "2024-06-12T09:00:00Z".
func datePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return s
}
