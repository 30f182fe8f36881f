package attendance

import (
	"context"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// Repository persists attendance records keyed by city + session key.
type Repository interface {
	// Get returns the record for a session, or shared.ErrNotFound
	// (wrapped) when no roll call was taken yet.
	Get(ctx context.Context, cityID shared.CityID, key shared.SessionKey) (*Record, error)

	// Upsert stores the record, replacing any previous presence map.
	Upsert(ctx context.Context, record *Record) error

	// ListByCity returns all records for a city, newest first.
	ListByCity(ctx context.Context, cityID shared.CityID, limit int) ([]Record, error)
}
