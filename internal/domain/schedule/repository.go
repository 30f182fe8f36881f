package schedule

import (
	"context"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// Repository provides access to a city's three schedule collections.
// Implementations live in the infrastructure layer.
type Repository interface {
	// Fixed classes (weekly recurring)
	ListFixed(ctx context.Context, cityID shared.CityID) ([]FixedClass, error)
	GetFixed(ctx context.Context, id shared.ClassID) (*FixedClass, error)
	CreateFixed(ctx context.Context, class *FixedClass) error
	UpdateFixed(ctx context.Context, class *FixedClass) error
	DeleteFixed(ctx context.Context, id shared.ClassID) error

	// Flexible classes (single date)
	ListFlexible(ctx context.Context, cityID shared.CityID) ([]FlexibleClass, error)
	GetFlexible(ctx context.Context, id shared.ClassID) (*FlexibleClass, error)
	CreateFlexible(ctx context.Context, class *FlexibleClass) error
	DeleteFlexible(ctx context.Context, id shared.ClassID) error

	// Cancellations (one per city+date)
	ListCancellations(ctx context.Context, cityID shared.CityID) ([]Cancellation, error)
	GetCancellation(ctx context.Context, id shared.ClassID) (*Cancellation, error)
	CreateCancellation(ctx context.Context, cancellation *Cancellation) error
	DeleteCancellation(ctx context.Context, id shared.ClassID) error
}

// Cache stores resolved occurrence lists per city and date range, and
// drops them when the city's schedule mutates. Implementations may be
// no-ops; the resolver is cheap at single-school volumes.
type Cache interface {
	GetOccurrences(ctx context.Context, cityID shared.CityID, from, to shared.ISODate) ([]Occurrence, bool)
	SetOccurrences(ctx context.Context, cityID shared.CityID, from, to shared.ISODate, occurrences []Occurrence) error
	Invalidate(ctx context.Context, cityID shared.CityID) error
}
