package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

func newPromoterFixture(t *testing.T, belt string, attended int) (*BeltPromoter, *memStudentRepo, *capturedEvents) {
	t.Helper()

	students := newMemStudentRepo()
	require.NoError(t, students.Create(context.Background(), &progression.Student{
		ID: anaID, CityID: "springfield", FullName: "Ana",
		CurrentBelt: belt, ClassesAttended: attended,
	}))

	events := &capturedEvents{}
	promoter := NewBeltPromoter(students, newMemMarkRepo(), progression.NewDefaultEngine(), events)
	return promoter, students, events
}

func TestPromotionCelebratesOnce(t *testing.T) {
	promoter, students, events := newPromoterFixture(t, "Branca", 12)
	ctx := context.Background()

	result, err := promoter.Handle(ctx, SetBeltCommand{StudentID: anaID, NewBelt: "Cinza"})
	require.NoError(t, err)

	assert.True(t, result.Promoted)
	assert.Equal(t, "Branca", result.OldBelt)
	assert.Equal(t, "Cinza", result.NewBelt)
	assert.Contains(t, result.Achievements, "first-exam")
	assert.Contains(t, result.Achievements, "belt-cinza")
	assert.Len(t, events.byType(shared.EventBeltPromoted), 1)

	student, err := students.GetByID(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, "Cinza", student.CurrentBelt)
}

func TestDownwardCorrectionIsSilent(t *testing.T) {
	promoter, students, events := newPromoterFixture(t, "Azul", 40)
	ctx := context.Background()

	result, err := promoter.Handle(ctx, SetBeltCommand{StudentID: anaID, NewBelt: "Verde"})
	require.NoError(t, err)

	assert.False(t, result.Promoted)
	assert.Empty(t, result.Achievements)
	assert.Empty(t, events.byType(shared.EventBeltPromoted))

	// The correction is still persisted.
	student, err := students.GetByID(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, "Verde", student.CurrentBelt)
}

func TestSameBeltIsNoOp(t *testing.T) {
	promoter, _, events := newPromoterFixture(t, "Roxa", 80)

	result, err := promoter.Handle(context.Background(), SetBeltCommand{StudentID: anaID, NewBelt: "roxa"})
	require.NoError(t, err)

	assert.False(t, result.Promoted)
	assert.Empty(t, events.events)
}

func TestUnknownBeltRejected(t *testing.T) {
	promoter, _, _ := newPromoterFixture(t, "Branca", 0)

	_, err := promoter.Handle(context.Background(), SetBeltCommand{StudentID: anaID, NewBelt: "Vermelha"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPromotionRecordsCountMilestonesAlreadyEarned(t *testing.T) {
	// A student promoted after many classes gets any class-count marks
	// the ledger is missing, each exactly once.
	promoter, _, events := newPromoterFixture(t, "Branca", 55)

	result, err := promoter.Handle(context.Background(), SetBeltCommand{StudentID: anaID, NewBelt: "Cinza"})
	require.NoError(t, err)

	assert.Contains(t, result.Achievements, "fifty-classes")
	assert.NotEmpty(t, events.byType(shared.EventAchievementUnlocked))
}
