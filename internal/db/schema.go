package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Calendar dates are stored as TEXT in
// YYYY-MM-DD form so the driver hands them back untouched.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id             INTEGER PRIMARY KEY,
    email          TEXT NOT NULL,
    password_hash  TEXT NOT NULL,
    role           TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('admin', 'student')),
    first_name     TEXT NOT NULL DEFAULT '',
    last_name      TEXT NOT NULL DEFAULT '',
    contact_number TEXT NOT NULL DEFAULT '',
    college        TEXT NOT NULL DEFAULT '',
    year_level     TEXT NOT NULL DEFAULT '',
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at     DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS foundations (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    type        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    link        TEXT NOT NULL DEFAULT '',
    contact     TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT '',
    start_date  TEXT NOT NULL,
    end_date    TEXT NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id               INTEGER PRIMARY KEY,
    finder           TEXT NOT NULL DEFAULT '',
    finder_type      TEXT NOT NULL DEFAULT '',
    item             TEXT NOT NULL,
    item_type        TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    image_url        TEXT NOT NULL DEFAULT '',
    finder_contact   TEXT NOT NULL DEFAULT '',
    date_found       TEXT NOT NULL,
    general_location TEXT NOT NULL DEFAULT '',
    found_location   TEXT NOT NULL DEFAULT '',
    time_returned    TEXT NOT NULL DEFAULT '',
    owner            TEXT NOT NULL DEFAULT '',
    owner_college    TEXT NOT NULL DEFAULT '',
    owner_contact    TEXT NOT NULL DEFAULT '',
    owner_image      TEXT NOT NULL DEFAULT '',
    date_claimed     TEXT NOT NULL DEFAULT '',
    time_claimed     TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'unclaimed' CHECK (status IN ('unclaimed', 'claimed', 'donated')),
    foundation_id    INTEGER REFERENCES foundations(id) ON DELETE SET NULL,
    post_id          TEXT NOT NULL DEFAULT '',
    duration         TEXT NOT NULL DEFAULT '',
    image            BLOB,
    image_mime       TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_foundation ON items(foundation_id);

CREATE TABLE IF NOT EXISTS item_transitions (
    id            INTEGER PRIMARY KEY,
    item_id       INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    from_status   TEXT,
    to_status     TEXT NOT NULL,
    foundation_id INTEGER,
    note          TEXT NOT NULL DEFAULT '',
    changed_by    INTEGER REFERENCES users(id),
    changed_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_item_transitions_item ON item_transitions(item_id);

CREATE TABLE IF NOT EXISTS complaints (
    id               INTEGER PRIMARY KEY,
    complainer       TEXT NOT NULL,
    college          TEXT NOT NULL DEFAULT '',
    year_level       TEXT NOT NULL DEFAULT '',
    item_name        TEXT NOT NULL DEFAULT '',
    item_type        TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    contact          TEXT NOT NULL DEFAULT '',
    general_location TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    time_lost        TEXT NOT NULL DEFAULT '',
    date_lost        TEXT NOT NULL DEFAULT '',
    date_complained  TEXT NOT NULL DEFAULT '',
    time_complained  TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT '',
    finder           TEXT NOT NULL DEFAULT 'N/A',
    duration         TEXT NOT NULL DEFAULT '',
    user_id          INTEGER REFERENCES users(id),
    item_image       BLOB,
    item_image_mime  TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_complaints_user ON complaints(user_id);

CREATE TABLE IF NOT EXISTS retrieval_requests (
    id                INTEGER PRIMARY KEY,
    claimer_name      TEXT NOT NULL,
    claimer_college   TEXT NOT NULL DEFAULT '',
    claimer_level     TEXT NOT NULL DEFAULT '',
    contact_number    TEXT NOT NULL DEFAULT '',
    date_complained   TEXT NOT NULL DEFAULT '',
    time_complained   TEXT NOT NULL DEFAULT '',
    item_name         TEXT NOT NULL DEFAULT '',
    description       TEXT NOT NULL DEFAULT '',
    general_location  TEXT NOT NULL DEFAULT '',
    specific_location TEXT NOT NULL DEFAULT '',
    date_lost         TEXT NOT NULL DEFAULT '',
    time_lost         TEXT NOT NULL DEFAULT '',
    item_id           INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    owner_image       BLOB,
    owner_image_mime  TEXT,
    status            TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    user_id           INTEGER REFERENCES users(id),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_retrieval_requests_user ON retrieval_requests(user_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS mirror_outbox (
    id         INTEGER PRIMARY KEY,
    event_id   TEXT NOT NULL UNIQUE,
    kind       TEXT NOT NULL,
    payload    TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'created' CHECK (status IN ('created', 'failed', 'done')),
    attempts   INTEGER NOT NULL DEFAULT 0,
    last_error TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_mirror_outbox_pending ON mirror_outbox(status, attempts);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
