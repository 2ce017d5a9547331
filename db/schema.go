// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types and defaults shared by SQLite and PostgreSQL.
const schema = `
-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Submissions (one per participant)
CREATE TABLE IF NOT EXISTS submission (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE REFERENCES participant(id) ON DELETE CASCADE,
    photo_url TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_submission_created_at ON submission(created_at);

-- Responses (one per participant per submission)
CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    submission_id TEXT NOT NULL REFERENCES submission(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    comment TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (submission_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_response_submission_id ON response(submission_id);
CREATE INDEX IF NOT EXISTS idx_response_user_id ON response(user_id);
`
