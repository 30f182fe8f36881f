package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CITY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// City is a registered training location.
type City struct {
	ID        shared.CityID
	Name      string
	CreatedAt time.Time
}

// CityRepository reads and writes the cities table. It also satisfies
// the digest job's CityLister.
type CityRepository struct {
	conn *Connection
}

// NewCityRepository creates a new CityRepository.
func NewCityRepository(conn *Connection) *CityRepository {
	return &CityRepository{conn: conn}
}

// Create registers a new city.
func (r *CityRepository) Create(ctx context.Context, city City) error {
	query := `
		INSERT INTO cities (id, name)
		VALUES ($1, $2)
	`

	_, err := r.conn.Exec(ctx, query, city.ID.String(), city.Name)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("schedule", "CreateCity", shared.ErrAlreadyExists, "city already exists", err)
		}
		return fmt.Errorf("failed to create city: %w", err)
	}
	return nil
}

// ListCityIDs returns the ids of every registered city.
func (r *CityRepository) ListCityIDs(ctx context.Context) ([]shared.CityID, error) {
	rows, err := r.conn.Query(ctx, `SELECT id FROM cities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	var out []shared.CityID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		out = append(out, shared.CityID(id))
	}
	return out, rows.Err()
}
