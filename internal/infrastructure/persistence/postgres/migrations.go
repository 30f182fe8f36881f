package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CITIES AND STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create cities and students
-- Version: 001

CREATE TABLE IF NOT EXISTS cities (
    id VARCHAR(50) PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    city_id VARCHAR(50) NOT NULL REFERENCES cities(id),
    full_name VARCHAR(100) NOT NULL,
    current_belt VARCHAR(30) NOT NULL DEFAULT 'Branca',
    classes_attended INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_classes_attended CHECK (classes_attended >= 0)
);

CREATE INDEX IF NOT EXISTS idx_students_city_id ON students(city_id);
`

const migration001Down = `
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS cities;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create the three schedule collections
-- Version: 002
-- Interval overlap is validated in the application under the per-city
-- lock; the database enforces shape, ranges and per-day uniqueness.

CREATE TABLE IF NOT EXISTS fixed_classes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    city_id VARCHAR(50) NOT NULL REFERENCES cities(id),
    weekday SMALLINT NOT NULL,
    start_minutes SMALLINT NOT NULL,
    duration_minutes SMALLINT NOT NULL,
    class_type VARCHAR(50) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_weekday CHECK (weekday BETWEEN 0 AND 6),
    CONSTRAINT valid_start CHECK (start_minutes BETWEEN 0 AND 1439),
    CONSTRAINT valid_duration CHECK (duration_minutes > 0)
);

CREATE INDEX IF NOT EXISTS idx_fixed_classes_city ON fixed_classes(city_id, weekday);

CREATE TABLE IF NOT EXISTS flexible_classes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    city_id VARCHAR(50) NOT NULL REFERENCES cities(id),
    class_date DATE NOT NULL,
    start_minutes SMALLINT NOT NULL,
    duration_minutes SMALLINT NOT NULL,
    class_type VARCHAR(50) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_start CHECK (start_minutes BETWEEN 0 AND 1439),
    CONSTRAINT valid_duration CHECK (duration_minutes > 0)
);

CREATE INDEX IF NOT EXISTS idx_flexible_classes_city_date ON flexible_classes(city_id, class_date);

CREATE TABLE IF NOT EXISTS cancellations (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    city_id VARCHAR(50) NOT NULL REFERENCES cities(id),
    cancel_date DATE NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- At most one cancellation per city+date.
    CONSTRAINT uq_cancellations_city_date UNIQUE (city_id, cancel_date)
);
`

const migration002Down = `
DROP TABLE IF EXISTS cancellations;
DROP TABLE IF EXISTS flexible_classes;
DROP TABLE IF EXISTS fixed_classes;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create attendance records
-- Version: 003
-- One row per (city, session). The presence map is JSONB: student id ->
-- bool, replaced wholesale on every roll call.

CREATE TABLE IF NOT EXISTS attendance_records (
    city_id VARCHAR(50) NOT NULL REFERENCES cities(id),
    session_key VARCHAR(20) NOT NULL,
    class_date DATE NOT NULL,
    start_minutes SMALLINT NOT NULL,
    present JSONB NOT NULL DEFAULT '{}'::jsonb,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (city_id, session_key)
);

CREATE INDEX IF NOT EXISTS idx_attendance_city_date ON attendance_records(city_id, class_date DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS attendance_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE ACHIEVEMENT MARKS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create the permanent achievement ledger
-- Version: 004
-- A mark is written once when a student crosses a milestone and never
-- deleted, even if the attendance counter later drops back below the
-- threshold. Insert-if-absent drives the exactly-once celebration.

CREATE TABLE IF NOT EXISTS achievement_marks (
    student_id UUID NOT NULL REFERENCES students(id),
    milestone_id VARCHAR(50) NOT NULL,
    unlocked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (student_id, milestone_id)
);
`

const migration004Down = `
DROP TABLE IF EXISTS achievement_marks;
`
