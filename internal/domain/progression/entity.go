package progression

import (
	"strings"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// Student is the progression view of an academy member: which city they
// train in, their current belt, and the cumulative attendance counter
// that milestone rules read.
type Student struct {
	ID              shared.StudentID
	CityID          shared.CityID
	FullName        string
	CurrentBelt     string
	ClassesAttended int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks entity invariants. The belt name is validated against
// the catalog by the caller, not here, so the entity stays independent
// of deployment-configured belt orders.
func (s *Student) Validate() error {
	if !s.ID.IsValid() {
		return shared.NewDomainError("progression", "Validate", shared.ErrInvalidID, "invalid student id")
	}
	if !s.CityID.IsValid() {
		return shared.NewDomainError("progression", "Validate", shared.ErrInvalidID, "student requires a city")
	}
	if strings.TrimSpace(s.FullName) == "" {
		return shared.NewDomainError("progression", "Validate", shared.ErrEmptyValue, "student requires a name")
	}
	if s.ClassesAttended < 0 {
		return shared.NewDomainError("progression", "Validate", shared.ErrValueOutOfRange, "attendance counter cannot be negative")
	}
	return nil
}
