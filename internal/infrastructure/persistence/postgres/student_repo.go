package postgres

import (
	"context"
	"fmt"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements progression.StudentRepository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id shared.StudentID) (*progression.Student, error) {
	query := `
		SELECT id, city_id, full_name, current_belt, classes_attended, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	s, err := scanStudent(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, err
	}
	return s, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *progression.Student) error {
	query := `
		INSERT INTO students (id, city_id, full_name, current_belt, classes_attended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		student.ID.String(),
		student.CityID.String(),
		student.FullName,
		student.CurrentBelt,
		student.ClassesAttended,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("progression", "Create", shared.ErrAlreadyExists, "student already exists", err)
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// Update persists belt and profile changes. The attendance counter is
// deliberately not written here; it only moves through
// IncrementAttendance so concurrent roll calls never lose deltas.
func (r *StudentRepository) Update(ctx context.Context, student *progression.Student) error {
	query := `
		UPDATE students
		SET city_id = $2, full_name = $3, current_belt = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		student.ID.String(),
		student.CityID.String(),
		student.FullName,
		student.CurrentBelt,
		student.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// IncrementAttendance moves the counter atomically and returns the new
// total. GREATEST clamps corrections at zero.
func (r *StudentRepository) IncrementAttendance(ctx context.Context, id shared.StudentID, delta int) (int, error) {
	query := `
		UPDATE students
		SET classes_attended = GREATEST(classes_attended + $2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING classes_attended
	`

	var total int
	err := r.conn.QueryRow(ctx, query, id.String(), delta).Scan(&total)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to increment attendance: %w", err)
	}
	return total, nil
}

// ApplyAttendanceDelta implements progression.ProgressStore: the counter
// move and any milestone marks commit or roll back together.
func (r *StudentRepository) ApplyAttendanceDelta(
	ctx context.Context,
	id shared.StudentID,
	delta int,
	evaluate func(newTotal int) []progression.MilestoneID,
) (int, []progression.MilestoneID, error) {
	increment := `
		UPDATE students
		SET classes_attended = GREATEST(classes_attended + $2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING classes_attended
	`
	mark := `
		INSERT INTO achievement_marks (student_id, milestone_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, milestone_id) DO NOTHING
	`

	var (
		total   int
		created []progression.MilestoneID
	)
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, increment, id.String(), delta).Scan(&total); err != nil {
			if IsNoRows(err) {
				return shared.ErrStudentNotFound
			}
			return fmt.Errorf("failed to increment attendance: %w", err)
		}
		if evaluate == nil {
			return nil
		}
		for _, milestone := range evaluate(total) {
			tag, err := tx.Exec(ctx, mark, id.String(), string(milestone))
			if err != nil {
				return fmt.Errorf("failed to record achievement mark: %w", err)
			}
			if tag.RowsAffected() > 0 {
				created = append(created, milestone)
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return total, created, nil
}

// ListByCity returns all students registered in a city.
func (r *StudentRepository) ListByCity(ctx context.Context, cityID shared.CityID) ([]progression.Student, error) {
	query := `
		SELECT id, city_id, full_name, current_belt, classes_attended, created_at, updated_at
		FROM students
		WHERE city_id = $1
		ORDER BY full_name
	`

	rows, err := r.conn.Query(ctx, query, cityID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var out []progression.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanStudent(row pgx.Row) (*progression.Student, error) {
	var (
		s      progression.Student
		id     string
		cityID string
	)
	err := row.Scan(&id, &cityID, &s.FullName, &s.CurrentBelt, &s.ClassesAttended, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	s.ID = shared.StudentID(id)
	s.CityID = shared.CityID(cityID)
	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT MARK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MarkRepository implements progression.MarkRepository for PostgreSQL.
// Marks are write-once: ON CONFLICT DO NOTHING makes the insert the
// exactly-once gate for celebrations.
type MarkRepository struct {
	conn *Connection
}

// NewMarkRepository creates a new MarkRepository.
func NewMarkRepository(conn *Connection) *MarkRepository {
	return &MarkRepository{conn: conn}
}

// ListMarks returns the milestone ids already recorded for a student.
func (r *MarkRepository) ListMarks(ctx context.Context, id shared.StudentID) ([]progression.MilestoneID, error) {
	query := `
		SELECT milestone_id
		FROM achievement_marks
		WHERE student_id = $1
		ORDER BY unlocked_at
	`

	rows, err := r.conn.Query(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement marks: %w", err)
	}
	defer rows.Close()

	var out []progression.MilestoneID
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan achievement mark: %w", err)
		}
		out = append(out, progression.MilestoneID(m))
	}
	return out, rows.Err()
}

// RecordMark inserts a mark if absent and reports whether this call
// created it.
func (r *MarkRepository) RecordMark(ctx context.Context, id shared.StudentID, milestone progression.MilestoneID) (bool, error) {
	query := `
		INSERT INTO achievement_marks (student_id, milestone_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, milestone_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, id.String(), string(milestone))
	if err != nil {
		return false, fmt.Errorf("failed to record achievement mark: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
