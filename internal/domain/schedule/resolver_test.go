package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// 2025-03-10 is a Monday; 2025-03-17 the following Monday.

func TestResolveDayEmitsFixedPattern(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
		fixedAt("a0000000-0000-0000-0000-000000000002", shared.Monday, 20*60, 45),
		fixedAt("a0000000-0000-0000-0000-000000000003", shared.Wednesday, 18*60, 60),
	}

	occs, err := r.ResolveDay(fixed, nil, nil, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, shared.ClockTime(18*60), occs[0].StartTime)
	assert.Equal(t, shared.ClockTime(20*60), occs[1].StartTime)
	assert.Equal(t, SourceFixed, occs[0].Source)
}

func TestResolveDayCancellationSuppressesAll(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
	}
	flexibles := []FlexibleClass{
		flexAt("b0000000-0000-0000-0000-000000000001", "2025-03-10", 20*60, 45),
	}
	cancellations := []Cancellation{
		{ID: "c0000000-0000-0000-0000-000000000001", CityID: "springfield", Date: "2025-03-10", Reason: "Feriado"},
	}

	occs, err := r.ResolveDay(fixed, flexibles, cancellations, "2025-03-10")
	require.NoError(t, err)
	assert.Empty(t, occs)

	// Other dates are untouched.
	occs, err = r.ResolveDay(fixed, flexibles, cancellations, "2025-03-17")
	require.NoError(t, err)
	assert.Len(t, occs, 1)
}

func TestResolveDayFlexiblePrecedenceAtExactSlot(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
	}
	flexibles := []FlexibleClass{
		flexAt("b0000000-0000-0000-0000-000000000001", "2025-03-10", 18*60, 45),
	}

	occs, err := r.ResolveDay(fixed, flexibles, nil, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, occs, 1, "exactly one occurrence for the shared slot")
	assert.Equal(t, SourceFlexible, occs[0].Source)
	assert.Equal(t, 45, occs[0].Duration)
	assert.Equal(t, "Exame", occs[0].ClassType)
}

func TestResolveDayFlexibleAtDifferentTimeSupplements(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
	}
	flexibles := []FlexibleClass{
		flexAt("b0000000-0000-0000-0000-000000000001", "2025-03-10", 20*60, 45),
	}

	occs, err := r.ResolveDay(fixed, flexibles, nil, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, SourceFixed, occs[0].Source)
	assert.Equal(t, SourceFlexible, occs[1].Source)
}

func TestResolveDaySortsByStartTime(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 20*60, 60),
		fixedAt("a0000000-0000-0000-0000-000000000002", shared.Monday, 7*60, 60),
	}
	flexibles := []FlexibleClass{
		flexAt("b0000000-0000-0000-0000-000000000001", "2025-03-10", 12*60, 30),
	}

	occs, err := r.ResolveDay(fixed, flexibles, nil, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, occs, 3)
	for i := 1; i < len(occs); i++ {
		assert.LessOrEqual(t, occs[i-1].StartTime, occs[i].StartTime)
	}
}

func TestResolveRangeConcatenatesInDateOrder(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
		fixedAt("a0000000-0000-0000-0000-000000000002", shared.Wednesday, 19*60, 60),
	}

	// Mon 10th through Sun 16th: one Monday, one Wednesday class.
	occs, err := r.ResolveRange(fixed, nil, nil, "2025-03-10", "2025-03-16")
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, shared.ISODate("2025-03-10"), occs[0].Date)
	assert.Equal(t, shared.ISODate("2025-03-12"), occs[1].Date)
}

func TestResolveRangeRejectsInvertedRange(t *testing.T) {
	r := NewResolver()
	_, err := r.ResolveRange(nil, nil, nil, "2025-03-16", "2025-03-10")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestResolveRangeCancelledMondaySkipsToNextWeek(t *testing.T) {
	r := NewResolver()
	fixed := []FixedClass{
		fixedAt("a0000000-0000-0000-0000-000000000001", shared.Monday, 18*60, 60),
	}
	cancellations := []Cancellation{
		{ID: "c0000000-0000-0000-0000-000000000001", CityID: "springfield", Date: "2025-03-10", Reason: "Feriado"},
	}

	occs, err := r.ResolveRange(fixed, nil, cancellations, "2025-03-10", "2025-03-23")
	require.NoError(t, err)
	require.Len(t, occs, 1, "the cancelled Monday is skipped, only the 17th remains")
	assert.Equal(t, shared.ISODate("2025-03-17"), occs[0].Date)
}
