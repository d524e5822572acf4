package postgres

// schema mirrors the SQLite layout. NUMERIC without a scale keeps amounts exact.
const schema = `
CREATE TABLE IF NOT EXISTS courses (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    duration_months INTEGER NOT NULL,
    fee NUMERIC NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(100) NOT NULL UNIQUE,
    course_id BIGINT REFERENCES courses(id),
    balance NUMERIC NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS payments (
    id BIGSERIAL PRIMARY KEY,
    reference UUID NOT NULL UNIQUE,
    student_id BIGINT NOT NULL REFERENCES students(id),
    amount NUMERIC NOT NULL,
    kind VARCHAR(10) NOT NULL,
    note VARCHAR(255),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_kind CHECK (kind IN ('PAYMENT', 'REFUND')),
    CONSTRAINT positive_amount CHECK (amount > 0)
);

CREATE INDEX IF NOT EXISTS idx_students_course_id ON students(course_id);
CREATE INDEX IF NOT EXISTS idx_payments_student_kind ON payments(student_id, kind);
CREATE INDEX IF NOT EXISTS idx_payments_student_date ON payments(student_id, created_at DESC);
`
