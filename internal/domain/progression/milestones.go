package progression

import (
	"sort"
)

// MilestoneID identifies an achievement in the static catalog.
type MilestoneID string

// RuleKind distinguishes the three unlock rule families.
type RuleKind string

const (
	// RuleClassCount unlocks at a cumulative attendance threshold.
	RuleClassCount RuleKind = "class_count"
	// RuleBeltReached unlocks when the belt ordinal reaches a target.
	RuleBeltReached RuleKind = "belt_reached"
	// RuleFirstExam unlocks on any belt above the entry rank.
	RuleFirstExam RuleKind = "first_exam"
)

// Milestone is one achievement rule. The catalog is immutable
// configuration injected at construction, never a mutable global.
type Milestone struct {
	ID        MilestoneID
	Kind      RuleKind
	Threshold int    // class count for RuleClassCount
	BeltIndex int    // target ordinal for RuleBeltReached
	Title     string // notification title, in the school's language
}

// Engine evaluates milestone rules against a student's current state.
// Evaluation is a pure function: no stored unlocked-ledger is consulted
// here. Callers diff against a previously observed set (persisted by
// the application layer) to detect "newly unlocked" exactly once.
type Engine struct {
	belts      *BeltCatalog
	milestones []Milestone
}

// NewEngine builds an engine from a belt catalog and milestone rules.
func NewEngine(belts *BeltCatalog, milestones []Milestone) *Engine {
	return &Engine{belts: belts, milestones: milestones}
}

// DefaultMilestones returns the academy's achievement catalog for the
// given belt catalog: attendance thresholds at 1/10/50/100 classes, the
// first-exam trophy, and one trophy per belt above the entry rank.
func DefaultMilestones(belts *BeltCatalog) []Milestone {
	ms := []Milestone{
		{ID: "first-class", Kind: RuleClassCount, Threshold: 1, Title: "Primeiro Treino"},
		{ID: "ten-classes", Kind: RuleClassCount, Threshold: 10, Title: "10 Treinos"},
		{ID: "fifty-classes", Kind: RuleClassCount, Threshold: 50, Title: "50 Treinos"},
		{ID: "hundred-classes", Kind: RuleClassCount, Threshold: 100, Title: "100 Treinos"},
		{ID: "first-exam", Kind: RuleFirstExam, Title: "Primeiro Exame"},
	}
	for i, name := range belts.Names() {
		if i == 0 {
			continue
		}
		ms = append(ms, Milestone{
			ID:        MilestoneID("belt-" + normalizeBeltID(name)),
			Kind:      RuleBeltReached,
			BeltIndex: i,
			Title:     "Faixa " + name,
		})
	}
	return ms
}

func normalizeBeltID(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == 'ç' || r == 'Ç':
			out = append(out, 'c')
		case r == 'ã' || r == 'á' || r == 'â':
			out = append(out, 'a')
		case r == 'é' || r == 'ê':
			out = append(out, 'e')
		default:
			// drop separators and other accents
		}
	}
	return string(out)
}

// NewDefaultEngine builds an engine with the default belts and catalog.
func NewDefaultEngine() *Engine {
	belts := DefaultBeltCatalog()
	return NewEngine(belts, DefaultMilestones(belts))
}

// Belts returns the engine's belt catalog.
func (e *Engine) Belts() *BeltCatalog {
	return e.belts
}

// Milestone returns the catalog entry for an id.
func (e *Engine) Milestone(id MilestoneID) (Milestone, bool) {
	for _, m := range e.milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// Evaluate derives the full unlocked set from current state. Calling it
// twice with the same inputs yields the same set; it never consults or
// mutates stored unlock state.
func (e *Engine) Evaluate(beltIndex, classesAttended int) []MilestoneID {
	var out []MilestoneID
	for _, m := range e.milestones {
		switch m.Kind {
		case RuleClassCount:
			if classesAttended >= m.Threshold {
				out = append(out, m.ID)
			}
		case RuleBeltReached:
			if beltIndex >= m.BeltIndex {
				out = append(out, m.ID)
			}
		case RuleFirstExam:
			if beltIndex > 0 {
				out = append(out, m.ID)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EvaluateBelt resolves a belt name and evaluates. Unknown belts fail
// rather than silently evaluating as the entry rank.
func (e *Engine) EvaluateBelt(belt string, classesAttended int) ([]MilestoneID, error) {
	idx, err := e.belts.IndexOf(belt)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(idx, classesAttended), nil
}

// NewlyUnlocked returns the ids present in current but not in previous.
// Milestones already in the previous set are never re-reported, so the
// celebratory notification fires at most once per crossing. Nothing is
// ever "re-locked": ids that dropped out of current are ignored.
func NewlyUnlocked(previous, current []MilestoneID) []MilestoneID {
	seen := make(map[MilestoneID]bool, len(previous))
	for _, id := range previous {
		seen[id] = true
	}
	var out []MilestoneID
	for _, id := range current {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
