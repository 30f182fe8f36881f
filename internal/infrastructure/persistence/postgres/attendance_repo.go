package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/attendance"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRepository implements attendance.Repository for PostgreSQL.
// The presence map is stored as JSONB and replaced wholesale on every
// roll call; an upsert on (city_id, session_key) keeps one row per
// session forever.
type AttendanceRepository struct {
	conn *Connection
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(conn *Connection) *AttendanceRepository {
	return &AttendanceRepository{conn: conn}
}

// Get returns the roll call for one session.
func (r *AttendanceRepository) Get(ctx context.Context, cityID shared.CityID, key shared.SessionKey) (*attendance.Record, error) {
	query := `
		SELECT city_id, class_date, start_minutes, present, updated_at
		FROM attendance_records
		WHERE city_id = $1 AND session_key = $2
	`

	rec, err := scanAttendanceRecord(r.conn.QueryRow(ctx, query, cityID.String(), key.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Upsert stores the record, replacing any previous presence map.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *attendance.Record) error {
	presentJSON, err := json.Marshal(record.Present)
	if err != nil {
		return fmt.Errorf("failed to marshal presence map: %w", err)
	}

	query := `
		INSERT INTO attendance_records (city_id, session_key, class_date, start_minutes, present, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (city_id, session_key)
		DO UPDATE SET present = EXCLUDED.present, updated_at = EXCLUDED.updated_at
	`

	_, err = r.conn.Exec(ctx, query,
		record.CityID.String(),
		record.SessionKey().String(),
		record.Date.String(),
		record.StartTime.Int(),
		presentJSON,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	return nil
}

// ListByCity returns a city's roll calls, newest session first.
func (r *AttendanceRepository) ListByCity(ctx context.Context, cityID shared.CityID, limit int) ([]attendance.Record, error) {
	query := `
		SELECT city_id, class_date, start_minutes, present, updated_at
		FROM attendance_records
		WHERE city_id = $1
		ORDER BY class_date DESC, start_minutes DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.conn.Query(ctx, query, cityID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var out []attendance.Record
	for rows.Next() {
		rec, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanAttendanceRecord(row pgx.Row) (*attendance.Record, error) {
	var (
		rec         attendance.Record
		cityID      string
		date        time.Time
		start       int
		presentJSON []byte
	)
	err := row.Scan(&cityID, &date, &start, &presentJSON, &rec.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan attendance record: %w", err)
	}

	present := make(map[shared.StudentID]bool)
	if err := json.Unmarshal(presentJSON, &present); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence map: %w", err)
	}

	rec.CityID = shared.CityID(cityID)
	rec.Date = isoDateOf(date)
	rec.StartTime = shared.ClockTime(start)
	rec.Present = present
	return &rec, nil
}
