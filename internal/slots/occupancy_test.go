package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type booking struct {
	ID       string
	Date     string
	Time     string
	Duration string
}

func (b booking) OccupancyDate() string     { return b.Date }
func (b booking) OccupancyTime() string     { return b.Time }
func (b booking) OccupancyDuration() string { return b.Duration }

func quarterHourSlots() []string {
	return GenerateSlots(ScheduleConfiguration{StartTime: "08:00 AM", EndTime: "10:00 AM", Interval: 15})
}

func statusAt(t *testing.T, classified []Slot[booking], time string) Slot[booking] {
	t.Helper()
	for _, s := range classified {
		if s.Time == time {
			return s
		}
	}
	t.Fatalf("slot %s not generated", time)
	return Slot[booking]{}
}

func TestClassifySlotsAppointmentSpanningSlots(t *testing.T) {
	appts := []booking{{ID: "a1", Date: "2024-06-12", Time: "9:00 AM", Duration: "45 min"}}

	got := ClassifySlots(quarterHourSlots(), appts, "2024-06-12")

	start := statusAt(t, got, "9:00 AM")
	assert.Equal(t, StatusStart, start.Status)
	require.NotNil(t, start.Appointment)
	assert.Equal(t, "a1", start.Appointment.ID)

	for _, tm := range []string{"9:15 AM", "9:30 AM"} {
		s := statusAt(t, got, tm)
		assert.Equal(t, StatusOccupied, s.Status, tm)
		assert.Nil(t, s.Appointment, tm)
	}

	assert.Equal(t, StatusAvailable, statusAt(t, got, "9:45 AM").Status)
	assert.Equal(t, StatusAvailable, statusAt(t, got, "8:45 AM").Status)
}

func TestClassifySlotsTwentyFourHourAppointmentTime(t *testing.T) {
	slotTimes := GenerateSlots(ScheduleConfiguration{StartTime: "01:00 PM", EndTime: "04:00 PM", Interval: 30})
	appts := []booking{{ID: "a1", Date: "2024-06-12", Time: "14:00:00", Duration: "60 min"}}

	got := ClassifySlots(slotTimes, appts, "2024-06-12")

	assert.Equal(t, StatusStart, statusAt(t, got, "2:00 PM").Status)
	assert.Equal(t, StatusOccupied, statusAt(t, got, "2:30 PM").Status)
	assert.Equal(t, StatusAvailable, statusAt(t, got, "3:00 PM").Status)
}

func TestClassifySlotsFractionalHourDuration(t *testing.T) {
	slotTimes := GenerateSlots(ScheduleConfiguration{StartTime: "01:00 PM", EndTime: "08:00 PM", Interval: 60})
	appts := []booking{{ID: "a1", Date: "2024-06-12", Time: "14:00", Duration: "1.5 hours"}}

	got := ClassifySlots(slotTimes, appts, "2024-06-12")

	assert.Equal(t, StatusStart, statusAt(t, got, "2:00 PM").Status)
	assert.Equal(t, StatusOccupied, statusAt(t, got, "3:00 PM").Status)
	for _, tm := range []string{"4:00 PM", "5:00 PM", "6:00 PM", "7:00 PM"} {
		assert.Equal(t, StatusAvailable, statusAt(t, got, tm).Status, tm)
	}
}

func TestClassifySlotsCrossDayIsolation(t *testing.T) {
	appts := []booking{
		{ID: "yesterday", Date: "2024-06-11", Time: "9:00 AM", Duration: "60 min"},
		{ID: "iso", Date: "2024-06-11T00:00:00Z", Time: "8:00 AM", Duration: "30 min"},
	}

	got := ClassifySlots(quarterHourSlots(), appts, "2024-06-12")

	for _, s := range got {
		assert.Equal(t, StatusAvailable, s.Status, s.Time)
	}
}

func TestClassifySlotsISODateMatchesDay(t *testing.T) {
	appts := []booking{{ID: "a1", Date: "2024-06-12T00:00:00.000Z", Time: "8:00 AM", Duration: "15 min"}}

	got := ClassifySlots(quarterHourSlots(), appts, "2024-06-12")

	assert.Equal(t, StatusStart, statusAt(t, got, "8:00 AM").Status)
	assert.Equal(t, StatusAvailable, statusAt(t, got, "8:15 AM").Status)
}

func TestClassifySlotsMalformedDurationFallsBack(t *testing.T) {
	malformed := []booking{{ID: "a1", Date: "2024-06-12", Time: "9:00 AM", Duration: "abc"}}
	explicit := []booking{{ID: "a1", Date: "2024-06-12", Time: "9:00 AM", Duration: "30 min"}}

	a := ClassifySlots(quarterHourSlots(), malformed, "2024-06-12")
	b := ClassifySlots(quarterHourSlots(), explicit, "2024-06-12")

	require.Len(t, a, len(b))
	for i := range a {
		assert.Equal(t, b[i].Status, a[i].Status, a[i].Time)
	}
	assert.Equal(t, StatusOccupied, statusAt(t, a, "9:15 AM").Status)
	assert.Equal(t, StatusAvailable, statusAt(t, a, "9:30 AM").Status)
}

func TestClassifySlotsIgnoresUnusableAppointments(t *testing.T) {
	appts := []booking{
		{ID: "no-time", Date: "2024-06-12", Time: "sometime", Duration: "30 min"},
		{ID: "zero", Date: "2024-06-12", Time: "9:00 AM", Duration: "0 min"},
	}

	got := ClassifySlots(quarterHourSlots(), appts, "2024-06-12")

	for _, s := range got {
		assert.Equal(t, StatusAvailable, s.Status, s.Time)
	}
}

func TestClassifySlotsDuplicateStartKeepsLast(t *testing.T) {
	appts := []booking{
		{ID: "first", Date: "2024-06-12", Time: "8:30 AM", Duration: "15 min"},
		{ID: "second", Date: "2024-06-12", Time: "08:30 am", Duration: "45 min"},
	}

	got := ClassifySlots(quarterHourSlots(), appts, "2024-06-12")

	start := statusAt(t, got, "8:30 AM")
	require.NotNil(t, start.Appointment)
	assert.Equal(t, "second", start.Appointment.ID)
	assert.Equal(t, StatusOccupied, statusAt(t, got, "9:00 AM").Status)
}

func TestClassifySlotsLaterStartWinsOverEarlierSpan(t *testing.T) {
	appts := []booking{
		{ID: "long", Date: "2024-06-12", Time: "8:00 AM", Duration: "60 min"},
		{ID: "inside", Date: "2024-06-12", Time: "8:30 AM", Duration: "15 min"},
	}

	got := ClassifySlots(quarterHourSlots(), appts, "2024-06-12")

	assert.Equal(t, StatusStart, statusAt(t, got, "8:00 AM").Status)
	assert.Equal(t, StatusOccupied, statusAt(t, got, "8:15 AM").Status)
	assert.Equal(t, StatusStart, statusAt(t, got, "8:30 AM").Status)
	assert.Equal(t, StatusOccupied, statusAt(t, got, "8:45 AM").Status)
	assert.Equal(t, StatusAvailable, statusAt(t, got, "9:00 AM").Status)
}

func TestClassifySlotsDeterministicAndExclusive(t *testing.T) {
	appts := []booking{
		{ID: "a", Date: "2024-06-12", Time: "8:15 AM", Duration: "40 min"},
		{ID: "b", Date: "2024-06-12", Time: "9:30 AM", Duration: "1 hour"},
	}
	slotTimes := quarterHourSlots()

	first := ClassifySlots(slotTimes, appts, "2024-06-12")
	second := ClassifySlots(slotTimes, appts, "2024-06-12")
	assert.Equal(t, first, second)

	require.Len(t, first, len(slotTimes))
	sum := Summarize(first)
	assert.Equal(t, len(slotTimes), sum.Start+sum.Occupied+sum.Available)
	assert.Equal(t, 2, sum.Start)
	assert.Equal(t, 3, sum.Occupied)
}

func TestFindConflict(t *testing.T) {
	appts := []booking{{ID: "a1", Date: "2024-06-12", Time: "9:00 AM", Duration: "45 min"}}

	c, ok := FindConflict(appts, "2024-06-12", "9:30 AM", "30 min")
	require.True(t, ok)
	assert.Equal(t, "a1", c.ID)

	_, ok = FindConflict(appts, "2024-06-12", "8:30 AM", "30 min")
	assert.False(t, ok, "touching intervals do not overlap")

	_, ok = FindConflict(appts, "2024-06-12", "9:45 AM", "30 min")
	assert.False(t, ok)

	_, ok = FindConflict(appts, "2024-06-13", "9:00 AM", "30 min")
	assert.False(t, ok)

	_, ok = FindConflict(appts, "2024-06-12", "not a time", "30 min")
	assert.False(t, ok)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(540, 45, 555, 15))
	assert.False(t, Overlaps(540, 30, 570, 30))
	assert.True(t, Overlaps(570, 30, 540, 45))
}
