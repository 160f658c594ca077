package booking

import (
	"testing"

	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
)

func rule(start, end string, available bool) *models.WeeklyAvailabilityRule {
	return &models.WeeklyAvailabilityRule{
		StartTime: start,
		EndTime:   end,
		Available: available,
	}
}

func TestResolveDayWindow_WeeklyRule(t *testing.T) {
	w := ResolveDayWindow(rule("09:00", "17:00", true), nil)
	if w.Closed {
		t.Fatal("expected open window")
	}
	if w.Open != 540 || w.Close != 1020 {
		t.Fatalf("window = [%d,%d], want [540,1020]", w.Open, w.Close)
	}
}

func TestResolveDayWindow_NoRuleMeansClosed(t *testing.T) {
	if w := ResolveDayWindow(nil, nil); !w.Closed {
		t.Fatal("no rule should resolve closed")
	}
	if w := ResolveDayWindow(rule("09:00", "17:00", false), nil); !w.Closed {
		t.Fatal("unavailable rule should resolve closed")
	}
	if w := ResolveDayWindow(rule("17:00", "09:00", true), nil); !w.Closed {
		t.Fatal("inverted hours should resolve closed")
	}
}

func TestResolveDayWindow_ExceptionOverridesRule(t *testing.T) {
	weekly := rule("09:00", "17:00", true)

	closedDay := &models.AvailabilityException{Available: false}
	if w := ResolveDayWindow(weekly, closedDay); !w.Closed {
		t.Fatal("closed exception must override an open weekly rule")
	}

	specialHours := &models.AvailabilityException{
		Available: true,
		StartTime: "10:00",
		EndTime:   "14:00",
	}
	w := ResolveDayWindow(weekly, specialHours)
	if w.Closed || w.Open != 600 || w.Close != 840 {
		t.Fatalf("exception hours not applied: %+v", w)
	}

	// An open exception also overrides a closed weekly day.
	w = ResolveDayWindow(nil, specialHours)
	if w.Closed {
		t.Fatal("open exception must override a closed weekly day")
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	// A = [10:00, 10:45), B = [10:30, 11:15)
	a := Interval{Start: 600, End: 645}
	b := Interval{Start: 630, End: 675}

	if !Overlaps(a.Start, a.End, b.Start, b.End) {
		t.Error("A vs B: overlap not detected")
	}
	if !Overlaps(b.Start, b.End, a.Start, a.End) {
		t.Error("B vs A: overlap not detected")
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Back-to-back intervals share an endpoint but do not overlap.
	if Overlaps(540, 585, 585, 630) {
		t.Error("[09:00,09:45) and [09:45,10:30) must not overlap")
	}
}

func TestGenerateSlots(t *testing.T) {
	w := DayWindow{Open: 540, Close: 630} // 09:00-10:30
	slots := GenerateSlots("2026-01-05", w, 45, nil)

	// Starts at 09:00, 09:15, 09:30, 09:45; 10:00+45 passes the close.
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	if slots[0].StartTime != "09:00" || slots[0].EndTime != "09:45" {
		t.Errorf("first slot = %s-%s", slots[0].StartTime, slots[0].EndTime)
	}
	if slots[3].StartTime != "09:45" || slots[3].EndTime != "10:30" {
		t.Errorf("last slot = %s-%s", slots[3].StartTime, slots[3].EndTime)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %s unexpectedly unavailable", s.StartTime)
		}
		if s.Date != "2026-01-05" {
			t.Errorf("slot date = %q", s.Date)
		}
	}
}

func TestGenerateSlots_MarksBusyUnavailable(t *testing.T) {
	w := DayWindow{Open: 540, Close: 660} // 09:00-11:00
	busy := []Interval{{Start: 540, End: 585}} // 09:00-09:45

	slots := GenerateSlots("2026-01-05", w, 45, busy)

	for _, s := range slots {
		switch s.StartTime {
		case "09:00", "09:15", "09:30":
			if s.Available {
				t.Errorf("slot %s overlaps busy interval but is available", s.StartTime)
			}
		case "09:45", "10:00", "10:15":
			if !s.Available {
				t.Errorf("slot %s is free but marked unavailable", s.StartTime)
			}
		}
	}
}

func TestGenerateSlots_ClosedDay(t *testing.T) {
	slots := GenerateSlots("2026-01-05", DayWindow{Closed: true}, 45, nil)
	if len(slots) != 0 {
		t.Fatalf("closed day produced %d slots", len(slots))
	}
}

func TestFirstFreeStart(t *testing.T) {
	w := DayWindow{Open: 540, Close: 720} // 09:00-12:00
	busy := []Interval{{Start: 540, End: 600}} // 09:00-10:00

	start, ok := FirstFreeStart(w, 45, busy, 0)
	if !ok {
		t.Fatal("expected a free start")
	}
	if start != 600 {
		t.Fatalf("first free start = %d, want 600 (10:00)", start)
	}
}

func TestFirstFreeStart_NotBeforeAlignsToStride(t *testing.T) {
	w := DayWindow{Open: 540, Close: 720}

	// 09:20 is off-grid; the next advertised start is 09:30.
	start, ok := FirstFreeStart(w, 45, nil, 560)
	if !ok || start != 570 {
		t.Fatalf("start = %d ok=%v, want 570", start, ok)
	}
}

func TestFirstFreeStart_FullDay(t *testing.T) {
	w := DayWindow{Open: 540, Close: 630}
	busy := []Interval{{Start: 540, End: 630}}

	if _, ok := FirstFreeStart(w, 45, busy, 0); ok {
		t.Fatal("fully booked day must report no free start")
	}
}

func TestBusyIntervals_Exclude(t *testing.T) {
	apps := []models.Appointment{
		{ID: 1, StartTime: "09:00", EndTime: "09:45"},
		{ID: 2, StartTime: "10:00", EndTime: "10:45"},
	}

	busy := BusyIntervals(apps, 1)
	if len(busy) != 1 {
		t.Fatalf("got %d intervals, want 1", len(busy))
	}
	if busy[0].Start != 600 {
		t.Fatalf("kept interval starts at %d, want 600", busy[0].Start)
	}
}
