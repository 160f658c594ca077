package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
)

// nextSlotHorizonDays bounds the forward scan for a suggestion.
const nextSlotHorizonDays = 30

// nextAvailableSlot scans forward from the requested date, one day at a
// time, using the same window derivation and stride as the availability
// engine, and returns the first slot whose full duration is free.
// Returns (nil, nil) when the horizon holds nothing; no suggestion is a
// valid outcome, not an error.
func (uc *ValidateBooking) nextAvailableSlot(
	ctx context.Context,
	business *models.Business,
	durationMin int,
	in domain.ValidateBookingInput,
) (*domain.NextAvailableSlot, error) {

	now := uc.now(business.Timezone)
	today := now.Format(timeutil.DateLayout)
	nowMin := now.Hour()*60 + now.Minute() + business.MinAdvanceMinutes

	from, err := time.Parse(timeutil.DateLayout, in.AppointmentDate)
	if err != nil {
		return nil, nil
	}

	// A past requested date starts the scan at today instead.
	if in.AppointmentDate < today {
		from, _ = time.Parse(timeutil.DateLayout, today)
	}

	for i := 0; i < nextSlotHorizonDays; i++ {
		date := from.AddDate(0, 0, i).Format(timeutil.DateLayout)

		window, err := resolveWindow(ctx, uc.repo, in.BusinessID, date)
		if err != nil {
			return nil, err
		}
		if window.Closed {
			continue
		}

		apps, err := uc.repo.ListBlockingAppointments(ctx, in.BusinessID, date)
		if err != nil {
			return nil, err
		}
		busy := domain.BusyIntervals(apps, in.ExcludeAppointmentID)

		notBefore := 0
		if date == today {
			notBefore = nowMin
		}

		start, ok := domain.FirstFreeStart(window, durationMin, busy, notBefore)
		if !ok {
			continue
		}

		return &domain.NextAvailableSlot{
			Date:      date,
			StartTime: timeutil.MinutesToTime(start),
			EndTime:   timeutil.MinutesToTime(start + durationMin),
		}, nil
	}

	return nil, nil
}
