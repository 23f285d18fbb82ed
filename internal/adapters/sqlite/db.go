package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Open opens (or creates) the database file at path, enables WAL and creates the schema.
// SQLite allows a single writer, so the pool is capped at one connection.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("missing SQLITE_PATH")
	}
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}

// dsn builds a file: URI for path; '?', '#' and '%' in the path are percent-escaped.
func dsn(path string) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?_busy_timeout=5000&_foreign_keys=on"
}

const schema = `
CREATE TABLE IF NOT EXISTS rsvps (
	id                   TEXT PRIMARY KEY,
	name                 TEXT    NOT NULL,
	email                TEXT    NOT NULL,
	email_key            TEXT    NOT NULL UNIQUE,
	attending            INTEGER NOT NULL,
	party_size           INTEGER NOT NULL CHECK (party_size BETWEEN 1 AND 4),
	guest_names          TEXT    NOT NULL DEFAULT '[]',
	dietary_restrictions TEXT    NOT NULL DEFAULT '',
	message              TEXT    NOT NULL DEFAULT '',
	created_at           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rsvps_created ON rsvps(created_at DESC);

CREATE TABLE IF NOT EXISTS guestbook_messages (
	id           TEXT PRIMARY KEY,
	name         TEXT    NOT NULL,
	relationship TEXT    NOT NULL,
	message      TEXT    NOT NULL,
	is_approved  INTEGER NOT NULL DEFAULT 0,
	is_deleted   INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_guestbook_created ON guestbook_messages(created_at DESC);

CREATE TABLE IF NOT EXISTS song_suggestions (
	id           TEXT PRIMARY KEY,
	title        TEXT    NOT NULL,
	artist       TEXT    NOT NULL,
	suggested_by TEXT    NOT NULL,
	reason       TEXT    NOT NULL DEFAULT '',
	likes        INTEGER NOT NULL DEFAULT 0,
	is_approved  INTEGER NOT NULL DEFAULT 0,
	is_deleted   INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_songs_popularity ON song_suggestions(likes DESC, created_at DESC);

CREATE TABLE IF NOT EXISTS idempotency_keys (
	idempotency_key TEXT    NOT NULL,
	method          TEXT    NOT NULL,
	route           TEXT    NOT NULL,
	body_hash       TEXT    NOT NULL,
	status_code     INTEGER NOT NULL,
	content_type    TEXT    NOT NULL,
	body            BLOB    NOT NULL,
	created_at      INTEGER NOT NULL,
	PRIMARY KEY (idempotency_key, method, route, body_hash)
);
`

// UniqueViolation reports whether err is a UNIQUE or PRIMARY KEY violation and returns the
// driver message, which names the offending column (e.g. "UNIQUE constraint failed: rsvps.email_key").
func UniqueViolation(err error) (string, bool) {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return "", false
	}
	if se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return se.Error(), true
	}
	return "", false
}

// Limit maps a non-positive limit to -1, which SQLite treats as no limit.
func Limit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}

func ToUnix(t time.Time) int64 { return t.UTC().UnixNano() }

func FromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }
