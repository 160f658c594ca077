package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timezone"
)

// ======================================================
// USE CASE
// ======================================================

// ValidateBooking decides whether one proposed appointment could be
// created and why not when it cannot. It only reads. The check is
// advisory, not a reservation: the binding guarantee happens inside
// AppointmentStore.CreateAppointmentIfFree.
type ValidateBooking struct {
	repo domain.Repository

	// now is swappable for tests; defaults to timezone.NowIn.
	now func(tz string) time.Time
}

func NewValidateBooking(repo domain.Repository) *ValidateBooking {
	return &ValidateBooking{
		repo: repo,
		now:  timezone.NowIn,
	}
}

// Execute runs the checks in a fixed order so conflict messages are
// stable: syntactic validation, service lookup, past date, business
// hours, appointment overlap. Validation and service lookup
// short-circuit; the remaining checks accumulate.
func (uc *ValidateBooking) Execute(
	ctx context.Context,
	in domain.ValidateBookingInput,
) (*domain.ConflictCheckResult, error) {

	started := time.Now()
	result, err := uc.execute(ctx, in)
	if err == nil {
		log.Printf(
			"booking validation business=%d service=%d date=%s time=%s available=%v took=%s",
			in.BusinessID, in.ServiceID, in.AppointmentDate, in.StartTime,
			result.IsAvailable, time.Since(started),
		)
	}
	return result, err
}

func (uc *ValidateBooking) execute(
	ctx context.Context,
	in domain.ValidateBookingInput,
) (*domain.ConflictCheckResult, error) {

	// ------------------------------------------------
	// 1. Syntactic validation. Malformed input never
	//    reaches the store.
	// ------------------------------------------------
	var syntactic []string
	if in.BusinessID == 0 {
		syntactic = append(syntactic, domain.MsgInvalidBusinessID)
	}
	if in.ServiceID == 0 {
		syntactic = append(syntactic, domain.MsgInvalidServiceID)
	}
	if !timeutil.IsValidDateFormat(in.AppointmentDate) {
		syntactic = append(syntactic, domain.MsgInvalidDate)
	}
	if !timeutil.IsValidTimeFormat(in.StartTime) {
		syntactic = append(syntactic, domain.MsgInvalidTime)
	}
	if len(syntactic) > 0 {
		return &domain.ConflictCheckResult{
			IsAvailable: false,
			Conflicts:   syntactic,
		}, nil
	}

	// ------------------------------------------------
	// 2. Service must exist, belong to the business
	//    and be active. No further checks otherwise.
	//    Only a missing row is a conflict; a failing
	//    store propagates as an error.
	// ------------------------------------------------
	service, err := uc.repo.GetActiveService(ctx, in.BusinessID, in.ServiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.ConflictCheckResult{
			IsAvailable: false,
			Conflicts:   []string{domain.MsgServiceNotFound},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	startMin, _ := timeutil.TimeToMinutes(in.StartTime)
	endMin := startMin + service.DurationMin

	var conflicts []string

	// ------------------------------------------------
	// 3. Past date (business-local clock). Non-fatal,
	//    the remaining checks still run.
	// ------------------------------------------------
	now := uc.now(business.Timezone)
	today := now.Format(timeutil.DateLayout)
	nowMin := now.Hour()*60 + now.Minute() + business.MinAdvanceMinutes

	if in.AppointmentDate < today ||
		(in.AppointmentDate == today && startMin < nowMin) {
		conflicts = append(conflicts, domain.MsgPastDate)
	}

	// ------------------------------------------------
	// 4. Business hours: exception first, weekly rule
	//    as the fallback.
	// ------------------------------------------------
	window, err := resolveWindow(ctx, uc.repo, in.BusinessID, in.AppointmentDate)
	if err != nil {
		return nil, err
	}

	if window.Closed {
		conflicts = append(conflicts, domain.MsgBusinessClosed)
	} else if startMin < window.Open || endMin > window.Close {
		conflicts = append(conflicts, domain.MsgOutsideHours)
	}

	// ------------------------------------------------
	// 5. Overlap with existing blocking appointments.
	// ------------------------------------------------
	apps, err := uc.repo.ListBlockingAppointments(ctx, in.BusinessID, in.AppointmentDate)
	if err != nil {
		return nil, err
	}

	busy := domain.BusyIntervals(apps, in.ExcludeAppointmentID)
	if domain.AnyOverlap(startMin, endMin, busy) {
		conflicts = append(conflicts, domain.MsgSlotConflict)
	}

	if len(conflicts) == 0 {
		return &domain.ConflictCheckResult{
			IsAvailable: true,
			Conflicts:   []string{},
		}, nil
	}

	result := &domain.ConflictCheckResult{
		IsAvailable: false,
		Conflicts:   conflicts,
	}

	// Best effort. Exhausting the horizon or hitting a store error just
	// means no suggestion; the conflicts above still stand.
	next, err := uc.nextAvailableSlot(ctx, business, service.DurationMin, in)
	if err == nil && next != nil {
		result.Suggestions = &domain.Suggestions{NextAvailableSlot: next}
	}

	return result, nil
}

// IsTimeSlotAvailable is the boolean convenience wrapper over Execute.
func (uc *ValidateBooking) IsTimeSlotAvailable(
	ctx context.Context,
	businessID uint,
	serviceID uint,
	date string,
	startTime string,
) (bool, error) {

	result, err := uc.execute(ctx, domain.ValidateBookingInput{
		BusinessID:      businessID,
		ServiceID:       serviceID,
		AppointmentDate: date,
		StartTime:       startTime,
	})
	if err != nil {
		return false, err
	}
	return result.IsAvailable, nil
}
