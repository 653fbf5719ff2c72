// Package profilestore provides SQLite-backed persistence for cognitive
// profiles, keyed by user identifier.
package profilestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/attuneweb/attune/internal/apperr"
	"github.com/attuneweb/attune/internal/profile"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id      TEXT PRIMARY KEY,
	doc          TEXT NOT NULL,
	version      INTEGER NOT NULL DEFAULT 1,
	generated_by TEXT NOT NULL DEFAULT 'manual',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with profile-store operations.
type DB struct {
	conn *sql.DB
}

// Record is a lightweight row returned by list operations.
type Record struct {
	UserID      string    `json:"userId"`
	Version     int       `json:"version"`
	GeneratedBy string    `json:"generatedBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("profilestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("profilestore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("profilestore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the stored profile for userID, or apperr.ErrNotFound.
func (db *DB) Get(userID string) (*profile.Profile, error) {
	var (
		doc         string
		version     int
		generatedBy string
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := db.conn.QueryRow(
		`SELECT doc, version, generated_by, created_at, updated_at FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(&doc, &version, &generatedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profilestore: get %s: %w", userID, err)
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("profilestore: decode %s: %w", userID, err)
	}
	p.Metadata.Version = version
	p.Metadata.GeneratedBy = generatedBy
	p.Metadata.CreatedAt = createdAt
	p.Metadata.UpdatedAt = updatedAt
	return &p, nil
}

// Create stores a new profile for userID. Returns apperr.ErrAlreadyExists
// when the user already has one.
func (db *DB) Create(userID string, p *profile.Profile) (*profile.Profile, error) {
	if _, err := db.Get(userID); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	stored := *p
	stored.Metadata.CreatedAt = now
	stored.Metadata.UpdatedAt = now
	stored.Metadata.Version = 1
	if stored.Metadata.GeneratedBy == "" {
		stored.Metadata.GeneratedBy = profile.GeneratedByManual
	}

	doc, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("profilestore: encode %s: %w", userID, err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO profiles (user_id, doc, version, generated_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, string(doc), stored.Metadata.Version, stored.Metadata.GeneratedBy, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("profilestore: insert %s: %w", userID, err)
	}
	return &stored, nil
}

// Update replaces the stored profile for userID and bumps its version.
// Returns apperr.ErrNotFound when the user has no profile.
func (db *DB) Update(userID string, p *profile.Profile) (*profile.Profile, error) {
	existing, err := db.Get(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored := *p
	stored.Metadata.CreatedAt = existing.Metadata.CreatedAt
	stored.Metadata.UpdatedAt = now
	stored.Metadata.Version = existing.Metadata.Version + 1
	if stored.Metadata.GeneratedBy == "" {
		stored.Metadata.GeneratedBy = existing.Metadata.GeneratedBy
	}

	doc, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("profilestore: encode %s: %w", userID, err)
	}
	_, err = db.conn.Exec(
		`UPDATE profiles SET doc = ?, version = ?, generated_by = ?, updated_at = ? WHERE user_id = ?`,
		string(doc), stored.Metadata.Version, stored.Metadata.GeneratedBy, now, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("profilestore: update %s: %w", userID, err)
	}
	return &stored, nil
}

// Delete removes the profile for userID. Deleting a missing profile returns
// apperr.ErrNotFound.
func (db *DB) Delete(userID string) error {
	res, err := db.conn.Exec(`DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("profilestore: delete %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// List returns paginated profile records ordered by most recently updated,
// plus the total row count.
func (db *DB) List(limit, offset int) ([]Record, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("profilestore: count: %w", err)
	}

	rows, err := db.conn.Query(
		`SELECT user_id, version, generated_by, updated_at FROM profiles ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("profilestore: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.UserID, &r.Version, &r.GeneratedBy, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
