package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/appointment-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	BusinessID uint
	ServiceID  uint

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	validate *ValidateBooking
	cache    SlotCache
	audit    *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	validate *ValidateBooking,
	cache SlotCache,
	auditor *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		validate: validate,
		cache:    cache,
		audit:    auditor,
	}
}

// Execute validates the request and, when clean, delegates the atomic
// insert to the store. A nil appointment with a non-nil result means the
// booking was rejected; the result carries the conflicts.
//
// The validation pass and the insert are separate calls, so a competing
// booker can slip between them. CreateAppointmentIfFree closes that gap:
// it re-checks inside the insert transaction, and the database exclusion
// constraint backs it up.
func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Appointment, *domain.ConflictCheckResult, error) {

	result, err := uc.validate.Execute(ctx, domain.ValidateBookingInput{
		BusinessID:      in.BusinessID,
		ServiceID:       in.ServiceID,
		AppointmentDate: in.Date,
		StartTime:       in.Time,
	})
	if err != nil {
		return nil, nil, err
	}
	if !result.IsAvailable {
		return nil, result, nil
	}

	service, err := uc.repo.GetActiveService(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return nil, nil, err
	}

	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	startMin, _ := timeutil.TimeToMinutes(in.Time)
	endMin := startMin + service.DurationMin

	loc := timezone.Location(business.Timezone)
	day, err := time.ParseInLocation(timeutil.DateLayout, in.Date, loc)
	if err != nil {
		return nil, nil, err
	}

	ap := &models.Appointment{
		BusinessID:         in.BusinessID,
		ServiceID:          service.ID,
		Date:               in.Date,
		StartTime:          in.Time,
		EndTime:            timeutil.MinutesToTime(endMin),
		StartAt:            day.Add(time.Duration(startMin) * time.Minute).UTC(),
		EndAt:              day.Add(time.Duration(endMin) * time.Minute).UTC(),
		Status:             string(domain.InitialStatus()),
		CustomerName:       in.CustomerName,
		CustomerPhone:      in.CustomerPhone,
		CustomerEmail:      in.CustomerEmail,
		ConfirmationNumber: newConfirmationNumber(),
		Notes:              in.Notes,
	}

	// A confirmation number collision is vanishingly rare but maps to a
	// unique-index violation, not a slot conflict; mint a fresh one and
	// retry instead of failing the booking.
	insertErr := uc.repo.CreateAppointmentIfFree(ctx, ap)
	for attempt := 0; attempt < confirmationRetries && httperr.IsUniqueViolation(insertErr); attempt++ {
		ap.ConfirmationNumber = newConfirmationNumber()
		insertErr = uc.repo.CreateAppointmentIfFree(ctx, ap)
	}
	if insertErr != nil {
		return nil, nil, insertErr
	}

	if uc.cache != nil {
		uc.cache.InvalidateDate(ctx, in.BusinessID, in.Date)
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			BusinessID: in.BusinessID,
			Action:     "appointment_created",
			Entity:     "appointment",
			EntityID:   &ap.ID,
		})
	}

	return ap, result, nil
}

// confirmationRetries bounds the re-mint attempts on a confirmation
// number collision.
const confirmationRetries = 3

func newConfirmationNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "APT-" + raw[:8]
}
