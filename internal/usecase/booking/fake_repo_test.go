package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
)

// ── In-memory Repository ──

type fakeRepo struct {
	mu sync.Mutex

	businesses   map[uint]*models.Business
	services     map[uint]*models.Service
	rules        map[string]*models.WeeklyAvailabilityRule
	exceptions   map[string]*models.AvailabilityException
	appointments []models.Appointment

	nextID uint
	calls  int

	// serviceErr, when set, is returned by GetActiveService in place of
	// the lookup. Simulates a failing store.
	serviceErr error

	// createErrs is a queue of errors returned by successive
	// CreateAppointmentIfFree calls before normal behavior resumes.
	createErrs []error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		businesses: make(map[uint]*models.Business),
		services:   make(map[uint]*models.Service),
		rules:      make(map[string]*models.WeeklyAvailabilityRule),
		exceptions: make(map[string]*models.AvailabilityException),
		nextID:     1,
	}
}

func ruleKey(businessID uint, weekday int) string {
	return fmt.Sprintf("%d:%d", businessID, weekday)
}

func excKey(businessID uint, date string) string {
	return fmt.Sprintf("%d:%s", businessID, date)
}

func (f *fakeRepo) addBusiness(b models.Business) *models.Business {
	f.businesses[b.ID] = &b
	return &b
}

func (f *fakeRepo) addService(s models.Service) *models.Service {
	f.services[s.ID] = &s
	return &s
}

func (f *fakeRepo) addRule(r models.WeeklyAvailabilityRule) {
	f.rules[ruleKey(r.BusinessID, r.Weekday)] = &r
}

func (f *fakeRepo) addException(e models.AvailabilityException) {
	f.exceptions[excKey(e.BusinessID, e.Date)] = &e
}

func (f *fakeRepo) addAppointment(ap models.Appointment) {
	if ap.ID == 0 {
		ap.ID = f.nextID
		f.nextID++
	}
	f.appointments = append(f.appointments, ap)
}

func (f *fakeRepo) countCall() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeRepo) GetBusinessByID(_ context.Context, id uint) (*models.Business, error) {
	f.countCall()
	if b, ok := f.businesses[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetBusinessBySlug(_ context.Context, slug string) (*models.Business, error) {
	f.countCall()
	for _, b := range f.businesses {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListRecentlyActiveBusinesses(_ context.Context, _ time.Time) ([]models.Business, error) {
	f.countCall()
	var out []models.Business
	for _, b := range f.businesses {
		if b.Active {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetActiveService(_ context.Context, businessID, serviceID uint) (*models.Service, error) {
	f.countCall()
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	s, ok := f.services[serviceID]
	if !ok || s.BusinessID != businessID || !s.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeRepo) ListActiveServices(_ context.Context, businessID uint) ([]models.Service, error) {
	f.countCall()
	var out []models.Service
	for _, s := range f.services {
		if s.BusinessID == businessID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetWeeklyRule(_ context.Context, businessID uint, weekday int) (*models.WeeklyAvailabilityRule, error) {
	f.countCall()
	return f.rules[ruleKey(businessID, weekday)], nil
}

func (f *fakeRepo) GetException(_ context.Context, businessID uint, date string) (*models.AvailabilityException, error) {
	f.countCall()
	return f.exceptions[excKey(businessID, date)], nil
}

func (f *fakeRepo) ListBlockingAppointments(_ context.Context, businessID uint, date string) ([]models.Appointment, error) {
	f.countCall()
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.BusinessID != businessID || ap.Date != date {
			continue
		}
		if ap.Status != string(domain.StatusPending) && ap.Status != string(domain.StatusConfirmed) {
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

// CreateAppointmentIfFree mirrors the gorm repository's transactional
// semantics: the overlap re-check and the insert happen under one lock.
func (f *fakeRepo) CreateAppointmentIfFree(_ context.Context, ap *models.Appointment) error {
	f.countCall()
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}

	start, err := timeutil.TimeToMinutes(ap.StartTime)
	if err != nil {
		return err
	}
	end, err := timeutil.TimeToMinutes(ap.EndTime)
	if err != nil {
		return err
	}

	for _, existing := range f.appointments {
		if existing.BusinessID != ap.BusinessID || existing.Date != ap.Date {
			continue
		}
		if existing.Status != string(domain.StatusPending) && existing.Status != string(domain.StatusConfirmed) {
			continue
		}
		es, _ := timeutil.TimeToMinutes(existing.StartTime)
		ee, _ := timeutil.TimeToMinutes(existing.EndTime)
		if domain.Overlaps(start, end, es, ee) {
			return httperr.ErrBusiness("time_conflict")
		}
	}

	ap.ID = f.nextID
	f.nextID++
	f.appointments = append(f.appointments, *ap)
	return nil
}

func (f *fakeRepo) GetAppointmentForBusiness(_ context.Context, appointmentID, businessID uint) (*models.Appointment, error) {
	f.countCall()
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.appointments {
		if f.appointments[i].ID == appointmentID && f.appointments[i].BusinessID == businessID {
			ap := f.appointments[i]
			return &ap, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	f.countCall()
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.appointments {
		if f.appointments[i].ID == ap.ID {
			f.appointments[i] = *ap
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ domain.Repository = (*fakeRepo)(nil)

// ── Recording cache ──

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]domain.TimeSlot

	invalidatedDates      []string
	invalidatedBusinesses []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]domain.TimeSlot)}
}

func (c *fakeCache) GetDay(_ context.Context, businessID, serviceID uint, date string) ([]domain.TimeSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.entries[fmt.Sprintf("%d:%d:%s", businessID, serviceID, date)]
	return slots, ok
}

func (c *fakeCache) SetDay(_ context.Context, businessID, serviceID uint, date string, slots []domain.TimeSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fmt.Sprintf("%d:%d:%s", businessID, serviceID, date)] = slots
}

func (c *fakeCache) InvalidateDate(_ context.Context, businessID uint, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidatedDates = append(c.invalidatedDates, fmt.Sprintf("%d:%s", businessID, date))
}

func (c *fakeCache) InvalidateBusiness(_ context.Context, businessID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidatedBusinesses = append(c.invalidatedBusinesses, businessID)
}

// ── Shared fixture ──
//
// Business 1 in UTC, service 10 lasting 45 minutes, open Mondays
// 09:00-17:00. Tests treat 2026-01-01 12:00 UTC as "now";
// 2026-01-05 is the next Monday.

const (
	fixtureToday  = "2026-01-01"
	fixtureMonday = "2026-01-05"
)

func fixtureNow(string) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newFixtureRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.addBusiness(models.Business{ID: 1, Slug: "acme", Timezone: "UTC", Active: true})
	repo.addService(models.Service{ID: 10, BusinessID: 1, Name: "Consultation", DurationMin: 45, Active: true})
	repo.addRule(models.WeeklyAvailabilityRule{
		BusinessID: 1,
		Weekday:    1, // Monday
		StartTime:  "09:00",
		EndTime:    "17:00",
		Available:  true,
	})
	return repo
}

func newFixtureValidator(repo *fakeRepo) *ValidateBooking {
	uc := NewValidateBooking(repo)
	uc.now = fixtureNow
	return uc
}
