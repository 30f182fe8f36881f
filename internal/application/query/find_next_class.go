package query

import (
	"context"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// NEXT CLASS QUERY
// Finds the earliest upcoming occurrence for a city within a fixed
// horizon. "Upcoming" is judged in the school's timezone: occurrences
// today whose start time has already passed do not count.
// ══════════════════════════════════════════════════════════════════════════════

// NextClassHorizonDays bounds the forward search. A city whose whole
// calendar is cancelled past this horizon reports no upcoming class.
const NextClassHorizonDays = 60

// FindNextClassQuery asks for a city's next upcoming class.
type FindNextClassQuery struct {
	CityID string
}

// NextClassResult is the earliest upcoming occurrence, or Found=false
// when nothing happens inside the horizon.
type NextClassResult struct {
	Found      bool
	Occurrence schedule.Occurrence
}

// clock is the "now" snapshot the query judges occurrences against.
type clock struct {
	Date    shared.ISODate
	Minutes int // minutes since midnight, school timezone
}

// NextClassQuery resolves the next upcoming class for a city.
type NextClassQuery struct {
	calendar *CalendarQuery

	// now is swappable in tests; defaults to the school-timezone clock.
	now func() clock
}

// NewNextClassQuery creates a new NextClassQuery.
func NewNextClassQuery(calendar *CalendarQuery) *NextClassQuery {
	return &NextClassQuery{
		calendar: calendar,
		now: func() clock {
			t := timeutil.Now()
			return clock{
				Date:    shared.ISODate(timeutil.FormatDateStr(t)),
				Minutes: t.Hour()*60 + t.Minute(),
			}
		},
	}
}

// Handle scans forward from today and returns the first occurrence that
// has not started yet. Because each day's occurrences come back sorted
// by start time, the first match is the global earliest.
func (q *NextClassQuery) Handle(ctx context.Context, query FindNextClassQuery) (*NextClassResult, error) {
	cityID, err := shared.NewCityID(query.CityID)
	if err != nil {
		return nil, err
	}

	current := q.now()
	date := current.Date

	for day := 0; day <= NextClassHorizonDays; day++ {
		occurrences, err := q.calendar.Day(ctx, cityID, date)
		if err != nil {
			return nil, err
		}
		for _, occ := range occurrences {
			// Only occurrences strictly before now's time-of-day are
			// discarded; a class starting this minute still counts.
			if day == 0 && occ.StartTime.Int() < current.Minutes {
				continue
			}
			return &NextClassResult{Found: true, Occurrence: occ}, nil
		}
		next, err := timeutil.AddDays(date.String(), 1)
		if err != nil {
			return nil, shared.WrapError("query", "FindNextClass", shared.ErrInvalidFormat, "bad date", err)
		}
		date = shared.ISODate(next)
	}
	return &NextClassResult{Found: false}, nil
}
