package sqlite

import (
	"context"
	"database/sql"
)

// schema sets up the database on open. Every statement is idempotent.
// Courses must be created before students, and students before payments,
// because of the foreign keys.
//
// Money columns are TEXT holding decimal strings so amounts stay exact.
// Timestamps are Unix nanoseconds.
const schema = `
CREATE TABLE IF NOT EXISTS courses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    duration_months INTEGER NOT NULL,
    fee TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    course_id INTEGER,
    balance TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (course_id) REFERENCES courses(id)
);

CREATE TABLE IF NOT EXISTS payments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    reference TEXT NOT NULL UNIQUE,
    student_id INTEGER NOT NULL,
    amount TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('PAYMENT', 'REFUND')),
    note TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (student_id) REFERENCES students(id)
);

CREATE INDEX IF NOT EXISTS idx_students_course_id ON students(course_id);
CREATE INDEX IF NOT EXISTS idx_payments_student_id ON payments(student_id);
CREATE INDEX IF NOT EXISTS idx_payments_student_kind ON payments(student_id, kind);
CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(student_id, created_at DESC);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
