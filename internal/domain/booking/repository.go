package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
)

// Small store interfaces so the engine and the conflict service can be
// unit-tested against in-memory fakes. The gorm repository implements
// all of them.

type BusinessStore interface {
	GetBusinessByID(
		ctx context.Context,
		id uint,
	) (*models.Business, error)

	GetBusinessBySlug(
		ctx context.Context,
		slug string,
	) (*models.Business, error)

	// ListRecentlyActiveBusinesses returns businesses with at least one
	// appointment created since the given instant. Used by the cache warmer.
	ListRecentlyActiveBusinesses(
		ctx context.Context,
		since time.Time,
	) ([]models.Business, error)
}

type ServiceStore interface {
	// GetActiveService returns the service only when it exists, belongs to
	// the business and is active.
	GetActiveService(
		ctx context.Context,
		businessID uint,
		serviceID uint,
	) (*models.Service, error)

	ListActiveServices(
		ctx context.Context,
		businessID uint,
	) ([]models.Service, error)
}

type RuleStore interface {
	// GetWeeklyRule returns (nil, nil) when no rule exists for the weekday;
	// absence means the business is closed that day.
	GetWeeklyRule(
		ctx context.Context,
		businessID uint,
		weekday int,
	) (*models.WeeklyAvailabilityRule, error)

	// GetException returns (nil, nil) when no exception exists for the date.
	GetException(
		ctx context.Context,
		businessID uint,
		date string,
	) (*models.AvailabilityException, error)
}

type AppointmentStore interface {
	// ListBlockingAppointments returns pending/confirmed appointments for
	// the business on the given date, ordered by start time.
	ListBlockingAppointments(
		ctx context.Context,
		businessID uint,
		date string,
	) ([]models.Appointment, error)

	// CreateAppointmentIfFree is the atomic check-then-insert. It re-runs the
	// overlap check and the insert inside one transaction, so two concurrent
	// bookers for overlapping slots can never both succeed. Returns the
	// time_conflict business error when the slot is taken.
	CreateAppointmentIfFree(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointmentForBusiness(
		ctx context.Context,
		appointmentID uint,
		businessID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error
}

type Repository interface {
	BusinessStore
	ServiceStore
	RuleStore
	AppointmentStore
}
