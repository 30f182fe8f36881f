package schedule

import (
	"sort"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// OCCURRENCE RESOLVER
// Turns the three per-city collections into the list of classes that
// actually happen over a date range. Precedence per date:
//
//	1. A cancellation suppresses everything on that date.
//	2. Flexible classes are emitted as-is.
//	3. Fixed classes on that weekday are emitted unless a flexible class
//	   already claimed the exact same start time (the flexible entry
//	   supersedes the slot).
//
// The resolver is pure and side-effect-free; results are recomputed on
// demand and optionally cached by the infrastructure layer.
// ══════════════════════════════════════════════════════════════════════════════

// Resolver derives concrete occurrences from schedule collections.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveDay produces the sorted occurrences for a single date.
func (r *Resolver) ResolveDay(
	fixed []FixedClass,
	flexibles []FlexibleClass,
	cancellations []Cancellation,
	date shared.ISODate,
) ([]Occurrence, error) {
	for i := range cancellations {
		if cancellations[i].Date == date {
			// Cancellation is absolute: nothing happens on this date.
			return nil, nil
		}
	}

	wd, err := timeutil.WeekdayOf(date.String())
	if err != nil {
		return nil, shared.WrapError("schedule", "ResolveDay", shared.ErrInvalidFormat, "bad date", err)
	}
	weekday := shared.Weekday(wd)

	var out []Occurrence
	claimed := make(map[shared.ClockTime]bool)

	for i := range flexibles {
		fc := &flexibles[i]
		if fc.Date != date {
			continue
		}
		out = append(out, Occurrence{
			Date:      date,
			StartTime: fc.StartTime,
			Duration:  fc.Duration,
			ClassType: fc.ClassType,
			Source:    SourceFlexible,
		})
		claimed[fc.StartTime] = true
	}

	for i := range fixed {
		fx := &fixed[i]
		if fx.Weekday != weekday {
			continue
		}
		if claimed[fx.StartTime] {
			// A flexible class supersedes the fixed slot at this exact time.
			continue
		}
		out = append(out, Occurrence{
			Date:      date,
			StartTime: fx.StartTime,
			Duration:  fx.Duration,
			ClassType: fx.ClassType,
			Source:    SourceFixed,
		})
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].StartTime < out[b].StartTime
	})
	return out, nil
}

// ResolveRange produces occurrences for every date in [from, to],
// inclusive, concatenated in date order.
func (r *Resolver) ResolveRange(
	fixed []FixedClass,
	flexibles []FlexibleClass,
	cancellations []Cancellation,
	from, to shared.ISODate,
) ([]Occurrence, error) {
	days, err := timeutil.DaysBetween(from.String(), to.String())
	if err != nil {
		return nil, shared.WrapError("schedule", "ResolveRange", shared.ErrInvalidFormat, "bad range", err)
	}
	if days < 0 {
		return nil, shared.NewDomainError("schedule", "ResolveRange", shared.ErrInvalidInput, "'from' must not be after 'to'")
	}

	var out []Occurrence
	date := from.String()
	for i := 0; i <= days; i++ {
		dayOccs, err := r.ResolveDay(fixed, flexibles, cancellations, shared.ISODate(date))
		if err != nil {
			return nil, err
		}
		out = append(out, dayOccs...)
		if date, err = timeutil.AddDays(date, 1); err != nil {
			return nil, shared.WrapError("schedule", "ResolveRange", shared.ErrInvalidFormat, "bad date", err)
		}
	}
	return out, nil
}
