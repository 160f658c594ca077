package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
)

// DefaultTTL bounds staleness when an invalidation is missed. Short on
// purpose: a customer should rarely see an already-booked slot as open.
const DefaultTTL = 5 * time.Minute

// AvailabilityCache stores computed day slot lists in redis, keyed per
// (business, service, date). Every redis failure degrades to a miss; the
// cache never fails a request.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func dayKey(businessID, serviceID uint, date string) string {
	return fmt.Sprintf("avail:%d:%d:%s", businessID, serviceID, date)
}

func (c *AvailabilityCache) GetDay(
	ctx context.Context,
	businessID, serviceID uint,
	date string,
) ([]domain.TimeSlot, bool) {

	raw, err := c.rdb.Get(ctx, dayKey(businessID, serviceID, date)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *AvailabilityCache) SetDay(
	ctx context.Context,
	businessID, serviceID uint,
	date string,
	slots []domain.TimeSlot,
) {

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, dayKey(businessID, serviceID, date), raw, c.ttl).Err(); err != nil {
		log.Printf("availability cache set failed business=%d date=%s: %v", businessID, date, err)
	}
}

// InvalidateDate drops every service's cached slots for one business day.
// Called after an appointment is created or cancelled on that date.
func (c *AvailabilityCache) InvalidateDate(
	ctx context.Context,
	businessID uint,
	date string,
) {
	c.deleteByPattern(ctx, fmt.Sprintf("avail:%d:*:%s", businessID, date))
}

// InvalidateBusiness drops everything cached for a business. Called when
// weekly rules or exceptions change, since those affect many dates.
func (c *AvailabilityCache) InvalidateBusiness(
	ctx context.Context,
	businessID uint,
) {
	c.deleteByPattern(ctx, fmt.Sprintf("avail:%d:*", businessID))
}

func (c *AvailabilityCache) deleteByPattern(ctx context.Context, pattern string) {
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("availability cache delete %s failed: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("availability cache scan %s failed: %v", pattern, err)
	}
}
