// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR QUERY
// Resolves the concrete class occurrences for a city over a date range,
// reading through the occurrence cache when one is wired in.
// ══════════════════════════════════════════════════════════════════════════════

// GetCalendarQuery asks for a city's resolved occurrences in [From, To].
type GetCalendarQuery struct {
	CityID string
	From   string // "YYYY-MM-DD", inclusive
	To     string // "YYYY-MM-DD", inclusive
}

// CalendarQuery resolves occurrence lists from the schedule collections.
type CalendarQuery struct {
	repo     schedule.Repository
	cache    schedule.Cache
	resolver *schedule.Resolver
}

// NewCalendarQuery creates a new CalendarQuery.
func NewCalendarQuery(repo schedule.Repository, cache schedule.Cache, resolver *schedule.Resolver) *CalendarQuery {
	return &CalendarQuery{repo: repo, cache: cache, resolver: resolver}
}

// Handle resolves the occurrences for the requested range.
func (q *CalendarQuery) Handle(ctx context.Context, query GetCalendarQuery) ([]schedule.Occurrence, error) {
	cityID, err := shared.NewCityID(query.CityID)
	if err != nil {
		return nil, err
	}
	from, err := shared.NewISODate(query.From)
	if err != nil {
		return nil, err
	}
	to, err := shared.NewISODate(query.To)
	if err != nil {
		return nil, err
	}

	if q.cache != nil {
		if occurrences, ok := q.cache.GetOccurrences(ctx, cityID, from, to); ok {
			return occurrences, nil
		}
	}

	occurrences, err := q.resolve(ctx, cityID, from, to)
	if err != nil {
		return nil, err
	}

	if q.cache != nil {
		// A failed cache write only costs the next reader a recompute.
		_ = q.cache.SetOccurrences(ctx, cityID, from, to, occurrences)
	}
	return occurrences, nil
}

// Day resolves a single date, bypassing the range cache.
func (q *CalendarQuery) Day(ctx context.Context, cityID shared.CityID, date shared.ISODate) ([]schedule.Occurrence, error) {
	fixed, flexibles, cancellations, err := q.load(ctx, cityID)
	if err != nil {
		return nil, err
	}
	return q.resolver.ResolveDay(fixed, flexibles, cancellations, date)
}

func (q *CalendarQuery) resolve(ctx context.Context, cityID shared.CityID, from, to shared.ISODate) ([]schedule.Occurrence, error) {
	fixed, flexibles, cancellations, err := q.load(ctx, cityID)
	if err != nil {
		return nil, err
	}
	return q.resolver.ResolveRange(fixed, flexibles, cancellations, from, to)
}

func (q *CalendarQuery) load(ctx context.Context, cityID shared.CityID) ([]schedule.FixedClass, []schedule.FlexibleClass, []schedule.Cancellation, error) {
	fixed, err := q.repo.ListFixed(ctx, cityID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get_calendar: load fixed: %w", err)
	}
	flexibles, err := q.repo.ListFlexible(ctx, cityID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get_calendar: load flexible: %w", err)
	}
	cancellations, err := q.repo.ListCancellations(ctx, cityID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get_calendar: load cancellations: %w", err)
	}
	return fixed, flexibles, cancellations, nil
}
