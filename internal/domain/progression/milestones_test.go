package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeltCatalogOrdering(t *testing.T) {
	c := DefaultBeltCatalog()

	branca, err := c.IndexOf("Branca")
	require.NoError(t, err)
	preta, err := c.IndexOf("preta")
	require.NoError(t, err)

	assert.Equal(t, 0, branca)
	assert.Equal(t, c.Len()-1, preta)
	assert.True(t, IsPromotion(branca, preta))
	assert.False(t, IsPromotion(preta, branca))
	assert.False(t, IsPromotion(preta, preta))
}

func TestBeltCatalogUnknownBelt(t *testing.T) {
	c := DefaultBeltCatalog()

	_, err := c.IndexOf("Vermelha")
	assert.Error(t, err)
}

func TestEvaluateClassCountThresholds(t *testing.T) {
	e := NewDefaultEngine()

	assert.Empty(t, e.Evaluate(0, 0))

	got := e.Evaluate(0, 1)
	assert.Equal(t, []MilestoneID{"first-class"}, got)

	got = e.Evaluate(0, 10)
	assert.Contains(t, got, MilestoneID("first-class"))
	assert.Contains(t, got, MilestoneID("ten-classes"))
	assert.NotContains(t, got, MilestoneID("fifty-classes"))

	got = e.Evaluate(0, 100)
	assert.Contains(t, got, MilestoneID("hundred-classes"))
}

func TestEvaluateBeltRules(t *testing.T) {
	e := NewDefaultEngine()

	// Entry rank: no exam taken yet, no belt trophies.
	got := e.Evaluate(0, 0)
	assert.NotContains(t, got, MilestoneID("first-exam"))

	// First promotion unlocks the exam trophy and the belt trophy.
	got = e.Evaluate(1, 0)
	assert.Contains(t, got, MilestoneID("first-exam"))
	assert.Contains(t, got, MilestoneID("belt-cinza"))
	assert.NotContains(t, got, MilestoneID("belt-amarela"))

	// Higher belts keep every lower belt trophy unlocked.
	got = e.Evaluate(4, 0)
	assert.Contains(t, got, MilestoneID("belt-cinza"))
	assert.Contains(t, got, MilestoneID("belt-verde"))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := NewDefaultEngine()

	a := e.Evaluate(3, 57)
	b := e.Evaluate(3, 57)
	assert.Equal(t, a, b)
}

func TestEvaluateBeltResolvesName(t *testing.T) {
	e := NewDefaultEngine()

	got, err := e.EvaluateBelt("Azul", 12)
	require.NoError(t, err)
	assert.Contains(t, got, MilestoneID("ten-classes"))
	assert.Contains(t, got, MilestoneID("belt-azul"))

	_, err = e.EvaluateBelt("Dourada", 12)
	assert.Error(t, err)
}

func TestNewlyUnlockedNeverReReports(t *testing.T) {
	previous := []MilestoneID{"first-class", "ten-classes"}
	current := []MilestoneID{"first-class", "ten-classes", "fifty-classes"}

	assert.Equal(t, []MilestoneID{"fifty-classes"}, NewlyUnlocked(previous, current))
	assert.Empty(t, NewlyUnlocked(current, current))

	// A counter correction that drops below a threshold never re-locks.
	shrunk := []MilestoneID{"first-class"}
	assert.Empty(t, NewlyUnlocked(current, shrunk))
}

func TestMilestoneLookup(t *testing.T) {
	e := NewDefaultEngine()

	m, ok := e.Milestone("hundred-classes")
	require.True(t, ok)
	assert.Equal(t, RuleClassCount, m.Kind)
	assert.Equal(t, 100, m.Threshold)

	_, ok = e.Milestone("nope")
	assert.False(t, ok)
}
