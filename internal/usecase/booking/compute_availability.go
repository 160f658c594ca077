package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
)

// SlotCache caches one day of computed slots per (business, service, date).
// Cache misses and cache failures both mean "recompute"; the cache is never
// allowed to fail a request.
type SlotCache interface {
	GetDay(ctx context.Context, businessID, serviceID uint, date string) ([]domain.TimeSlot, bool)
	SetDay(ctx context.Context, businessID, serviceID uint, date string, slots []domain.TimeSlot)
	InvalidateDate(ctx context.Context, businessID uint, date string)
	InvalidateBusiness(ctx context.Context, businessID uint)
}

const maxAvailabilityDays = 90

// ======================================================
// USE CASE
// ======================================================

type ComputeAvailability struct {
	repo  domain.Repository
	cache SlotCache
}

// NewComputeAvailability builds the engine. cache may be nil; the engine
// then always computes from the stores.
func NewComputeAvailability(repo domain.Repository, cache SlotCache) *ComputeAvailability {
	return &ComputeAvailability{repo: repo, cache: cache}
}

// Execute returns a day-by-day slot list for the service over the range.
// Deterministic for a fixed rule/exception/appointment snapshot and free
// of side effects beyond cache fills.
func (uc *ComputeAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.AvailabilitySlot, error) {

	if in.BusinessID == 0 || in.ServiceID == 0 {
		return nil, httperr.ErrBusiness("invalid_input")
	}
	if !timeutil.IsValidDateFormat(in.StartDate) {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	days := in.Days
	if days <= 0 {
		days = 7
	}
	if days > maxAvailabilityDays {
		days = maxAvailabilityDays
	}

	service, err := uc.repo.GetActiveService(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	start, _ := time.Parse(timeutil.DateLayout, in.StartDate)

	result := make([]domain.AvailabilitySlot, 0, days)

	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(timeutil.DateLayout)

		slots, err := uc.daySlots(ctx, in.BusinessID, in.ServiceID, date, service.DurationMin)
		if err != nil {
			return nil, err
		}

		result = append(result, domain.AvailabilitySlot{
			Date:      date,
			DayOfWeek: timeutil.DayOfWeekFromDate(date),
			Slots:     slots,
		})
	}

	return result, nil
}

func (uc *ComputeAvailability) daySlots(
	ctx context.Context,
	businessID uint,
	serviceID uint,
	date string,
	durationMin int,
) ([]domain.TimeSlot, error) {

	if uc.cache != nil {
		if slots, ok := uc.cache.GetDay(ctx, businessID, serviceID, date); ok {
			return slots, nil
		}
	}

	window, err := uc.resolveWindow(ctx, businessID, date)
	if err != nil {
		return nil, err
	}

	var busy []domain.Interval
	if !window.Closed {
		apps, err := uc.repo.ListBlockingAppointments(ctx, businessID, date)
		if err != nil {
			return nil, err
		}
		busy = domain.BusyIntervals(apps, 0)
	}

	slots := domain.GenerateSlots(date, window, durationMin, busy)

	if uc.cache != nil {
		uc.cache.SetDay(ctx, businessID, serviceID, date, slots)
	}

	return slots, nil
}

// resolveWindow loads the exception and, only when no exception exists,
// the weekly rule, then derives the day's open window. Shared with the
// conflict service via the usecase helpers below.
func (uc *ComputeAvailability) resolveWindow(
	ctx context.Context,
	businessID uint,
	date string,
) (domain.DayWindow, error) {
	return resolveWindow(ctx, uc.repo, businessID, date)
}

func resolveWindow(
	ctx context.Context,
	repo domain.RuleStore,
	businessID uint,
	date string,
) (domain.DayWindow, error) {

	exc, err := repo.GetException(ctx, businessID, date)
	if err != nil {
		return domain.DayWindow{}, err
	}
	if exc != nil {
		return domain.ResolveDayWindow(nil, exc), nil
	}

	weekday := timeutil.DayOfWeekFromDate(date)
	if weekday < 0 {
		return domain.DayWindow{Closed: true}, nil
	}

	rule, err := repo.GetWeeklyRule(ctx, businessID, weekday)
	if err != nil {
		return domain.DayWindow{}, err
	}

	return domain.ResolveDayWindow(rule, nil), nil
}
