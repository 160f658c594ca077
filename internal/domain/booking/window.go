package booking

import (
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
)

// SlotStrideMinutes is the step between candidate slot start times.
const SlotStrideMinutes = 15

// DayWindow is the resolved open/close window for one date, in minutes
// since midnight. Closed days have Closed=true and zeroed bounds.
type DayWindow struct {
	Open   int
	Close  int
	Closed bool
}

// Interval is a half-open busy interval [Start, End) in minutes.
type Interval struct {
	Start int
	End   int
}

// ResolveDayWindow derives the bookable window for one date from the
// weekly rule and the date exception. The exception, when present, fully
// overrides the rule: closed means closed regardless of the weekly hours,
// open means the exception's own hours apply. With no exception the
// weekly rule decides; a missing or unavailable rule means closed.
//
// This is the single window derivation shared by the availability engine
// and the next-slot search.
func ResolveDayWindow(
	rule *models.WeeklyAvailabilityRule,
	exc *models.AvailabilityException,
) DayWindow {

	closed := DayWindow{Closed: true}

	if exc != nil {
		if !exc.Available {
			return closed
		}
		return windowFromTimes(exc.StartTime, exc.EndTime)
	}

	if rule == nil || !rule.Available {
		return closed
	}

	return windowFromTimes(rule.StartTime, rule.EndTime)
}

func windowFromTimes(start, end string) DayWindow {
	open, err := timeutil.TimeToMinutes(start)
	if err != nil {
		return DayWindow{Closed: true}
	}
	close, err := timeutil.TimeToMinutes(end)
	if err != nil || close <= open {
		return DayWindow{Closed: true}
	}
	return DayWindow{Open: open, Close: close}
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// AnyOverlap reports whether [start,end) intersects any busy interval.
func AnyOverlap(start, end int, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// BusyIntervals converts blocking appointments to minute intervals,
// skipping excludeID (0 excludes nothing) and any row whose stored times
// fail to parse.
func BusyIntervals(apps []models.Appointment, excludeID uint) []Interval {
	var busy []Interval
	for _, ap := range apps {
		if excludeID != 0 && ap.ID == excludeID {
			continue
		}
		start, err := timeutil.TimeToMinutes(ap.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.TimeToMinutes(ap.EndTime)
		if err != nil {
			continue
		}
		busy = append(busy, Interval{Start: start, End: end})
	}
	return busy
}

// GenerateSlots produces the day's candidate slots: start times stepped
// through the window at the fixed stride, each slot lasting durationMin,
// candidates whose end would pass the close time discarded, and each
// slot tagged available unless it overlaps a busy interval.
func GenerateSlots(
	date string,
	window DayWindow,
	durationMin int,
	busy []Interval,
) []TimeSlot {

	if window.Closed || durationMin <= 0 {
		return []TimeSlot{}
	}

	slots := []TimeSlot{}
	for start := window.Open; start+durationMin <= window.Close; start += SlotStrideMinutes {
		end := start + durationMin
		slots = append(slots, TimeSlot{
			Date:      date,
			StartTime: timeutil.MinutesToTime(start),
			EndTime:   timeutil.MinutesToTime(end),
			Available: !AnyOverlap(start, end, busy),
		})
	}
	return slots
}

// FirstFreeStart returns the earliest start >= notBefore whose full
// duration fits in the window without touching a busy interval. The
// second return is false when the day has no free slot.
func FirstFreeStart(
	window DayWindow,
	durationMin int,
	busy []Interval,
	notBefore int,
) (int, bool) {

	if window.Closed || durationMin <= 0 {
		return 0, false
	}

	start := window.Open
	if notBefore > start {
		// Align to the stride grid so suggestions land on the same
		// start times the availability engine advertises.
		over := (notBefore - window.Open) % SlotStrideMinutes
		start = notBefore
		if over != 0 {
			start += SlotStrideMinutes - over
		}
	}

	for ; start+durationMin <= window.Close; start += SlotStrideMinutes {
		if !AnyOverlap(start, start+durationMin, busy) {
			return start, true
		}
	}
	return 0, false
}
