// Package scanstore persists scan results to a local SQLite database so
// past scans can be listed and re-fetched through the API.
package scanstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a scan id does not exist.
var ErrNotFound = errors.New("scan not found")

// Scan is one stored classification + extraction result.
type Scan struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	Filename     string            `json:"filename"`
	DetectedType string            `json:"detected_type"`
	Reason       string            `json:"decision_reason"`
	Warning      string            `json:"warning,omitempty"`
	Fields       map[string]string `json:"parsed"`
}

// Store wraps the SQLite database holding scan history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMP NOT NULL,
	filename      TEXT NOT NULL DEFAULT '',
	detected_type TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	warning       TEXT NOT NULL DEFAULT '',
	fields        TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at DESC);
`

// New opens (creating if needed) the scan database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open scan database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate scan database: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a scan, assigning its ID and timestamp when unset, and
// returns the stored record.
func (s *Store) Save(ctx context.Context, scan *Scan) (*Scan, error) {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now().UTC()
	}
	fields, err := json.Marshal(scan.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, created_at, filename, detected_type, reason, warning, fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.CreatedAt, scan.Filename, scan.DetectedType, scan.Reason, scan.Warning, string(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}

	s.logger.Debug("saved scan", "id", scan.ID, "type", scan.DetectedType)
	return scan, nil
}

// Get fetches one scan by id.
func (s *Store) Get(ctx context.Context, id string) (*Scan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, filename, detected_type, reason, warning, fields
		 FROM scans WHERE id = ?`, id)
	return scanRow(row)
}

// List returns scans newest-first, up to limit (<= 0 means a default of 100).
func (s *Store) List(ctx context.Context, limit int) ([]*Scan, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, filename, detected_type, reason, warning, fields
		 FROM scans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var out []*Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, scan)
	}
	return out, rows.Err()
}

// Delete removes one scan by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored scans.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*Scan, error) {
	var scan Scan
	var fields string
	err := row.Scan(&scan.ID, &scan.CreatedAt, &scan.Filename, &scan.DetectedType,
		&scan.Reason, &scan.Warning, &fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scan row: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &scan.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return &scan, nil
}
