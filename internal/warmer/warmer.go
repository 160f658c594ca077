package warmer

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

const (
	defaultInterval  = 4 * time.Hour
	activityLookback = 30 * 24 * time.Hour
	warmAheadDays    = 7
	batchSize        = 3
	interBatchDelay  = time.Second
)

// Warmer periodically pre-computes availability for businesses with
// recent bookings so the first customer request of the day hits a warm
// cache. Advisory only: any failure here is logged and ignored, booking
// correctness never depends on it.
type Warmer struct {
	repo     domain.Repository
	engine   *usecase.ComputeAvailability
	interval time.Duration

	// running guards against a pass overlapping a still-running one.
	running atomic.Bool
}

func New(repo domain.Repository, engine *usecase.ComputeAvailability, interval time.Duration) *Warmer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Warmer{
		repo:     repo,
		engine:   engine,
		interval: interval,
	}
}

// Start runs warming passes until ctx is cancelled. One pass runs
// immediately so a fresh deploy does not start cold.
func (w *Warmer) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single warming pass. A pass that starts while a
// previous one is still running is skipped, not queued.
func (w *Warmer) RunOnce(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		log.Println("cache warming pass still running, skipping")
		return
	}
	defer w.running.Store(false)

	started := time.Now()

	businesses, err := w.repo.ListRecentlyActiveBusinesses(ctx, started.Add(-activityLookback))
	if err != nil {
		log.Printf("cache warming: listing active businesses failed: %v", err)
		return
	}

	var failures int
	for i := 0; i < len(businesses); i += batchSize {
		end := i + batchSize
		if end > len(businesses) {
			end = len(businesses)
		}

		failures += w.warmBatch(ctx, businesses[i:end])

		if end < len(businesses) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interBatchDelay):
			}
		}
	}

	log.Printf(
		"cache warming pass done businesses=%d failures=%d took=%s",
		len(businesses), failures, time.Since(started),
	)
}

func (w *Warmer) warmBatch(ctx context.Context, batch []models.Business) int {
	var wg sync.WaitGroup
	var failures atomic.Int64

	for _, business := range batch {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			if err := w.warmBusiness(ctx, id); err != nil {
				failures.Add(1)
				log.Printf("cache warming business=%d failed: %v", id, err)
			}
		}(business.ID)
	}

	wg.Wait()
	return int(failures.Load())
}

func (w *Warmer) warmBusiness(ctx context.Context, businessID uint) error {
	services, err := w.repo.ListActiveServices(ctx, businessID)
	if err != nil {
		return err
	}

	today := time.Now().Format(timeutil.DateLayout)

	for _, svc := range services {
		_, err := w.engine.Execute(ctx, domain.AvailabilityInput{
			BusinessID: businessID,
			ServiceID:  svc.ID,
			StartDate:  today,
			Days:       warmAheadDays,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
