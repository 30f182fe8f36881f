// Package progression contains the belt and milestone model: the ordered
// belt catalog, the static achievement rules, and the pure evaluation
// that derives a student's unlocked set from current belt and attendance.
package progression

import (
	"strings"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// DefaultBeltOrder is the academy's graduation ladder, lowest first.
// Deployments can override it via BELT_ORDER.
var DefaultBeltOrder = []string{
	"Branca",
	"Cinza",
	"Amarela",
	"Laranja",
	"Verde",
	"Azul",
	"Roxa",
	"Marrom",
	"Preta",
}

// BeltCatalog is the immutable, ordered list of belt ranks. Only the
// ordinal position of a belt matters to the progression rules.
type BeltCatalog struct {
	names   []string
	indexOf map[string]int
}

// NewBeltCatalog builds a catalog from an ordered list of belt names.
func NewBeltCatalog(names []string) (*BeltCatalog, error) {
	if len(names) == 0 {
		return nil, shared.ErrEmptyBeltOrder
	}
	c := &BeltCatalog{
		names:   make([]string, len(names)),
		indexOf: make(map[string]int, len(names)),
	}
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, shared.NewDomainError("progression", "NewBeltCatalog", shared.ErrEmptyValue, "belt name cannot be empty")
		}
		c.names[i] = n
		c.indexOf[strings.ToLower(n)] = i
	}
	return c, nil
}

// DefaultBeltCatalog returns the catalog with the academy's default order.
func DefaultBeltCatalog() *BeltCatalog {
	c, _ := NewBeltCatalog(DefaultBeltOrder)
	return c
}

// IndexOf returns the ordinal of a belt name (case-insensitive), or an
// error when the belt is not in the catalog.
func (c *BeltCatalog) IndexOf(name string) (int, error) {
	idx, ok := c.indexOf[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, shared.ErrUnknownBelt
	}
	return idx, nil
}

// Name returns the belt name at the given ordinal.
func (c *BeltCatalog) Name(index int) (string, error) {
	if index < 0 || index >= len(c.names) {
		return "", shared.NewDomainError("progression", "Name", shared.ErrValueOutOfRange, "belt index out of range")
	}
	return c.names[index], nil
}

// Len returns the number of belts in the catalog.
func (c *BeltCatalog) Len() int {
	return len(c.names)
}

// Names returns a copy of the ordered belt names.
func (c *BeltCatalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// IsPromotion reports whether a belt change is a genuine promotion:
// the new ordinal is strictly higher than the old one. Corrections to
// the same or a lower belt are not promotions and must not celebrate.
func IsPromotion(oldIndex, newIndex int) bool {
	return newIndex > oldIndex
}
