package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleRepository implements schedule.Repository for PostgreSQL.
type ScheduleRepository struct {
	conn *Connection
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(conn *Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixed classes
// ─────────────────────────────────────────────────────────────────────────────

// ListFixed returns every weekly class for a city, ordered by weekday
// and start time.
func (r *ScheduleRepository) ListFixed(ctx context.Context, cityID shared.CityID) ([]schedule.FixedClass, error) {
	query := `
		SELECT id, city_id, weekday, start_minutes, duration_minutes, class_type, created_at, updated_at
		FROM fixed_classes
		WHERE city_id = $1
		ORDER BY weekday, start_minutes
	`

	rows, err := r.conn.Query(ctx, query, cityID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed classes: %w", err)
	}
	defer rows.Close()

	var out []schedule.FixedClass
	for rows.Next() {
		c, err := scanFixedClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetFixed returns a weekly class by ID.
func (r *ScheduleRepository) GetFixed(ctx context.Context, id shared.ClassID) (*schedule.FixedClass, error) {
	query := `
		SELECT id, city_id, weekday, start_minutes, duration_minutes, class_type, created_at, updated_at
		FROM fixed_classes
		WHERE id = $1
	`

	c, err := scanFixedClass(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrClassNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateFixed inserts a weekly class.
func (r *ScheduleRepository) CreateFixed(ctx context.Context, class *schedule.FixedClass) error {
	query := `
		INSERT INTO fixed_classes (id, city_id, weekday, start_minutes, duration_minutes, class_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		class.ID.String(),
		class.CityID.String(),
		class.Weekday.Int(),
		class.StartTime.Int(),
		class.Duration,
		class.ClassType,
		class.CreatedAt,
		class.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fixed class: %w", err)
	}
	return nil
}

// UpdateFixed rewrites a weekly class.
func (r *ScheduleRepository) UpdateFixed(ctx context.Context, class *schedule.FixedClass) error {
	query := `
		UPDATE fixed_classes
		SET weekday = $2, start_minutes = $3, duration_minutes = $4, class_type = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		class.ID.String(),
		class.Weekday.Int(),
		class.StartTime.Int(),
		class.Duration,
		class.ClassType,
		class.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update fixed class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrClassNotFound
	}
	return nil
}

// DeleteFixed removes a weekly class.
func (r *ScheduleRepository) DeleteFixed(ctx context.Context, id shared.ClassID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM fixed_classes WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete fixed class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrClassNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Flexible classes
// ─────────────────────────────────────────────────────────────────────────────

// ListFlexible returns every one-off class for a city, ordered by date
// and start time.
func (r *ScheduleRepository) ListFlexible(ctx context.Context, cityID shared.CityID) ([]schedule.FlexibleClass, error) {
	query := `
		SELECT id, city_id, class_date, start_minutes, duration_minutes, class_type, created_at, updated_at
		FROM flexible_classes
		WHERE city_id = $1
		ORDER BY class_date, start_minutes
	`

	rows, err := r.conn.Query(ctx, query, cityID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list flexible classes: %w", err)
	}
	defer rows.Close()

	var out []schedule.FlexibleClass
	for rows.Next() {
		c, err := scanFlexibleClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetFlexible returns a one-off class by ID.
func (r *ScheduleRepository) GetFlexible(ctx context.Context, id shared.ClassID) (*schedule.FlexibleClass, error) {
	query := `
		SELECT id, city_id, class_date, start_minutes, duration_minutes, class_type, created_at, updated_at
		FROM flexible_classes
		WHERE id = $1
	`

	c, err := scanFlexibleClass(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrClassNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateFlexible inserts a one-off class.
func (r *ScheduleRepository) CreateFlexible(ctx context.Context, class *schedule.FlexibleClass) error {
	query := `
		INSERT INTO flexible_classes (id, city_id, class_date, start_minutes, duration_minutes, class_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		class.ID.String(),
		class.CityID.String(),
		class.Date.String(),
		class.StartTime.Int(),
		class.Duration,
		class.ClassType,
		class.CreatedAt,
		class.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create flexible class: %w", err)
	}
	return nil
}

// DeleteFlexible removes a one-off class.
func (r *ScheduleRepository) DeleteFlexible(ctx context.Context, id shared.ClassID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM flexible_classes WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete flexible class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrClassNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Cancellations
// ─────────────────────────────────────────────────────────────────────────────

// ListCancellations returns every cancellation for a city, newest first.
func (r *ScheduleRepository) ListCancellations(ctx context.Context, cityID shared.CityID) ([]schedule.Cancellation, error) {
	query := `
		SELECT id, city_id, cancel_date, reason, created_at
		FROM cancellations
		WHERE city_id = $1
		ORDER BY cancel_date DESC
	`

	rows, err := r.conn.Query(ctx, query, cityID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}
	defer rows.Close()

	var out []schedule.Cancellation
	for rows.Next() {
		c, err := scanCancellation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetCancellation returns a cancellation by ID.
func (r *ScheduleRepository) GetCancellation(ctx context.Context, id shared.ClassID) (*schedule.Cancellation, error) {
	query := `
		SELECT id, city_id, cancel_date, reason, created_at
		FROM cancellations
		WHERE id = $1
	`

	c, err := scanCancellation(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCancellationNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateCancellation inserts a cancellation. The (city_id, cancel_date)
// unique index maps double cancellation to the domain conflict error.
func (r *ScheduleRepository) CreateCancellation(ctx context.Context, cancellation *schedule.Cancellation) error {
	query := `
		INSERT INTO cancellations (id, city_id, cancel_date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query,
		cancellation.ID.String(),
		cancellation.CityID.String(),
		cancellation.Date.String(),
		cancellation.Reason,
		cancellation.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCancellationExists
		}
		return fmt.Errorf("failed to create cancellation: %w", err)
	}
	return nil
}

// DeleteCancellation removes a cancellation.
func (r *ScheduleRepository) DeleteCancellation(ctx context.Context, id shared.ClassID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM cancellations WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete cancellation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrCancellationNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanFixedClass(row pgx.Row) (*schedule.FixedClass, error) {
	var (
		c       schedule.FixedClass
		id      string
		cityID  string
		weekday int
		start   int
	)
	err := row.Scan(&id, &cityID, &weekday, &start, &c.Duration, &c.ClassType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan fixed class: %w", err)
	}
	c.ID = shared.ClassID(id)
	c.CityID = shared.CityID(cityID)
	c.Weekday = shared.Weekday(weekday)
	c.StartTime = shared.ClockTime(start)
	return &c, nil
}

func scanFlexibleClass(row pgx.Row) (*schedule.FlexibleClass, error) {
	var (
		c      schedule.FlexibleClass
		id     string
		cityID string
		date   time.Time
		start  int
	)
	err := row.Scan(&id, &cityID, &date, &start, &c.Duration, &c.ClassType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan flexible class: %w", err)
	}
	c.ID = shared.ClassID(id)
	c.CityID = shared.CityID(cityID)
	c.Date = isoDateOf(date)
	c.StartTime = shared.ClockTime(start)
	return &c, nil
}

func scanCancellation(row pgx.Row) (*schedule.Cancellation, error) {
	var (
		c      schedule.Cancellation
		id     string
		cityID string
		date   time.Time
	)
	err := row.Scan(&id, &cityID, &date, &c.Reason, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan cancellation: %w", err)
	}
	c.ID = shared.ClassID(id)
	c.CityID = shared.CityID(cityID)
	c.Date = isoDateOf(date)
	return &c, nil
}

// isoDateOf formats a DATE column value. pgx hands DATE back as a bare
// midnight timestamp; no timezone conversion must happen here.
func isoDateOf(t time.Time) shared.ISODate {
	return shared.ISODate(timeutil.ISODate(t.Year(), int(t.Month()), t.Day()))
}
