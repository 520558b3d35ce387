package database

// Schema is the SQLite rendition of the base schema, applied when opening an
// in-memory database. PostgreSQL deployments are migrated instead (see the
// migrations package); both renditions carry the same logical columns, and a
// deployed PostgreSQL schema may carry more.
const Schema = `
CREATE TABLE modules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    code TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    drive_folder_id TEXT NOT NULL UNIQUE,
    drive_folder_url TEXT NOT NULL DEFAULT '',
    order_index INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE submissions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    module_id INTEGER NOT NULL REFERENCES modules(id),
    student_id INTEGER NOT NULL REFERENCES students(id),
    file_id TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    mime_type TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    size_mb REAL NOT NULL DEFAULT 0,
    file_extension TEXT NOT NULL DEFAULT '',
    drive_url TEXT NOT NULL DEFAULT '',
    uploaded_by TEXT NOT NULL DEFAULT '',
    owner_email TEXT NOT NULL DEFAULT '',
    created_time TIMESTAMP,
    modified_time TIMESTAMP,
    detected_at TIMESTAMP NOT NULL
);

CREATE TABLE sync_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sync_type TEXT NOT NULL,
    status TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP,
    files_processed INTEGER NOT NULL DEFAULT 0,
    errors_count INTEGER NOT NULL DEFAULT 0,
    error_details TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_submissions_module ON submissions(module_id);
CREATE INDEX idx_submissions_student ON submissions(student_id);
CREATE INDEX idx_submissions_detected ON submissions(detected_at);
`
