package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

const (
	sAna   = shared.StudentID("11111111-1111-1111-1111-111111111111")
	sBruno = shared.StudentID("22222222-2222-2222-2222-222222222222")
	sCarla = shared.StudentID("33333333-3333-3333-3333-333333333333")
)

func TestDiffPresenceFirstRollCall(t *testing.T) {
	next := map[shared.StudentID]bool{sAna: true, sBruno: false, sCarla: true}

	d := DiffPresence(nil, next)
	assert.Equal(t, []shared.StudentID{sAna, sCarla}, d.Marked)
	assert.Empty(t, d.Unmarked)
}

func TestDiffPresenceIdenticalMapIsNoOp(t *testing.T) {
	m := map[shared.StudentID]bool{sAna: true, sBruno: false}

	d := DiffPresence(m, m)
	assert.True(t, d.IsEmpty())
}

func TestDiffPresenceToggles(t *testing.T) {
	previous := map[shared.StudentID]bool{sAna: true, sBruno: true}
	next := map[shared.StudentID]bool{sAna: false, sCarla: true}

	d := DiffPresence(previous, next)
	assert.Equal(t, []shared.StudentID{sCarla}, d.Marked)
	assert.Equal(t, []shared.StudentID{sAna, sBruno}, d.Unmarked)
}

func TestDiffPresenceMissingMeansAbsent(t *testing.T) {
	// Explicit false and absence from the map are equivalent.
	previous := map[shared.StudentID]bool{sAna: false}
	next := map[shared.StudentID]bool{}

	d := DiffPresence(previous, next)
	assert.True(t, d.IsEmpty())
}

func TestRecordSessionKey(t *testing.T) {
	r := Record{
		CityID:    "springfield",
		Date:      "2025-03-10",
		StartTime: 18 * 60,
		Present:   map[shared.StudentID]bool{sAna: true},
	}
	assert.Equal(t, shared.SessionKey("2025-03-10-1800"), r.SessionKey())
	assert.Equal(t, 1, r.PresentCount())
	assert.NoError(t, r.Validate())
}
