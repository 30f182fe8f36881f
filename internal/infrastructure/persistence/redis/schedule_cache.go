package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE CACHE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleCache implements schedule.Cache on Redis. Resolved occurrence
// lists are keyed by city and date range; any schedule mutation drops
// every range the city has cached.
type ScheduleCache struct {
	cache *Cache
}

// NewScheduleCache creates a new ScheduleCache.
func NewScheduleCache(cache *Cache) *ScheduleCache {
	return &ScheduleCache{cache: cache}
}

// GetOccurrences returns a cached resolved range, if present.
// Cache errors are treated as misses; the resolver is the source of
// truth and the caller recomputes.
func (c *ScheduleCache) GetOccurrences(ctx context.Context, cityID shared.CityID, from, to shared.ISODate) ([]schedule.Occurrence, bool) {
	var occurrences []schedule.Occurrence
	err := c.cache.Get(ctx, rangeKey(cityID, from, to), &occurrences)
	if err != nil {
		return nil, false
	}
	return occurrences, true
}

// SetOccurrences stores a resolved range.
func (c *ScheduleCache) SetOccurrences(ctx context.Context, cityID shared.CityID, from, to shared.ISODate, occurrences []schedule.Occurrence) error {
	// An empty range is still a valid answer; cache it so empty
	// calendars don't resolve on every read.
	if occurrences == nil {
		occurrences = []schedule.Occurrence{}
	}
	return c.cache.Set(ctx, rangeKey(cityID, from, to), occurrences, TTLScheduleCache)
}

// Invalidate drops every cached range for a city.
func (c *ScheduleCache) Invalidate(ctx context.Context, cityID shared.CityID) error {
	err := c.cache.DeleteByPattern(ctx, cityPattern(cityID))
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}

func rangeKey(cityID shared.CityID, from, to shared.ISODate) string {
	return fmt.Sprintf("%s%s:%s:%s", PrefixSchedule, cityID.String(), from.String(), to.String())
}

func cityPattern(cityID shared.CityID) string {
	return fmt.Sprintf("%s%s:*", PrefixSchedule, cityID.String())
}
