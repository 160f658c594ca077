package warmer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

// stubRepo implements domain.Repository with overridable hooks for the
// methods a warming pass touches.
type stubRepo struct {
	listBusinesses func(ctx context.Context) ([]models.Business, error)
	listServices   func(businessID uint) ([]models.Service, error)

	warmed sync.Map // businessID -> true once slots were computed
}

func (s *stubRepo) ListRecentlyActiveBusinesses(ctx context.Context, _ time.Time) ([]models.Business, error) {
	return s.listBusinesses(ctx)
}

func (s *stubRepo) ListActiveServices(_ context.Context, businessID uint) ([]models.Service, error) {
	return s.listServices(businessID)
}

func (s *stubRepo) GetActiveService(_ context.Context, businessID, serviceID uint) (*models.Service, error) {
	return &models.Service{ID: serviceID, BusinessID: businessID, DurationMin: 30, Active: true}, nil
}

func (s *stubRepo) GetWeeklyRule(_ context.Context, businessID uint, _ int) (*models.WeeklyAvailabilityRule, error) {
	s.warmed.Store(businessID, true)
	return &models.WeeklyAvailabilityRule{
		BusinessID: businessID,
		StartTime:  "09:00",
		EndTime:    "17:00",
		Available:  true,
	}, nil
}

func (s *stubRepo) GetException(_ context.Context, _ uint, _ string) (*models.AvailabilityException, error) {
	return nil, nil
}

func (s *stubRepo) ListBlockingAppointments(_ context.Context, _ uint, _ string) ([]models.Appointment, error) {
	return nil, nil
}

func (s *stubRepo) GetBusinessByID(_ context.Context, _ uint) (*models.Business, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) GetBusinessBySlug(_ context.Context, _ string) (*models.Business, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) CreateAppointmentIfFree(_ context.Context, _ *models.Appointment) error {
	return errors.New("warmer must not create appointments")
}

func (s *stubRepo) GetAppointmentForBusiness(_ context.Context, _, _ uint) (*models.Appointment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateAppointment(_ context.Context, _ *models.Appointment) error {
	return errors.New("warmer must not update appointments")
}

var _ domain.Repository = (*stubRepo)(nil)

func businessList(ids ...uint) []models.Business {
	out := make([]models.Business, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Business{ID: id, Active: true})
	}
	return out
}

func TestRunOnce_WarmsEveryBusiness(t *testing.T) {
	repo := &stubRepo{}
	repo.listBusinesses = func(context.Context) ([]models.Business, error) {
		return businessList(1, 2), nil
	}
	repo.listServices = func(businessID uint) ([]models.Service, error) {
		return []models.Service{{ID: businessID * 10, BusinessID: businessID, DurationMin: 30, Active: true}}, nil
	}

	w := New(repo, usecase.NewComputeAvailability(repo, nil), time.Hour)
	w.RunOnce(context.Background())

	for _, id := range []uint{1, 2} {
		if _, ok := repo.warmed.Load(id); !ok {
			t.Errorf("business %d was not warmed", id)
		}
	}
}

func TestRunOnce_FailureDoesNotAbortBatch(t *testing.T) {
	repo := &stubRepo{}
	repo.listBusinesses = func(context.Context) ([]models.Business, error) {
		return businessList(1, 2, 3), nil
	}
	repo.listServices = func(businessID uint) ([]models.Service, error) {
		if businessID == 2 {
			return nil, errors.New("store unreachable")
		}
		return []models.Service{{ID: businessID * 10, BusinessID: businessID, DurationMin: 30, Active: true}}, nil
	}

	w := New(repo, usecase.NewComputeAvailability(repo, nil), time.Hour)
	w.RunOnce(context.Background())

	for _, id := range []uint{1, 3} {
		if _, ok := repo.warmed.Load(id); !ok {
			t.Errorf("business %d skipped because business 2 failed", id)
		}
	}
	if _, ok := repo.warmed.Load(uint(2)); ok {
		t.Error("failed business reported as warmed")
	}
}

func TestRunOnce_GuardSkipsOverlappingPass(t *testing.T) {
	release := make(chan struct{})
	var listCalls atomic.Int64

	repo := &stubRepo{}
	repo.listBusinesses = func(ctx context.Context) ([]models.Business, error) {
		listCalls.Add(1)
		<-release
		return nil, nil
	}
	repo.listServices = func(uint) ([]models.Service, error) { return nil, nil }

	w := New(repo, usecase.NewComputeAvailability(repo, nil), time.Hour)

	done := make(chan struct{})
	go func() {
		w.RunOnce(context.Background())
		close(done)
	}()

	// Wait for the first pass to park inside the store call, then try to
	// start a second pass. The guard must reject it without touching the
	// store.
	for listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	w.RunOnce(context.Background())

	if got := listCalls.Load(); got != 1 {
		t.Fatalf("overlapping pass hit the store: %d list calls", got)
	}

	close(release)
	<-done
}
