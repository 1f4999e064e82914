package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mbsearch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// DefaultListLimit caps history queries without an explicit limit.
const DefaultListLimit = 50

// Store is a SQLite-based storage providing the export ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.mbsearch/data/exports.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mbsearch", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "exports.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ExportLedger returns an ExportLedger interface backed by this store.
func (s *Store) ExportLedger() driven.ExportLedger {
	return &exportLedger{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_exports.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Export Ledger ====================

// exportLedger implements driven.ExportLedger.
type exportLedger struct {
	store *Store
}

var _ driven.ExportLedger = (*exportLedger)(nil)

// Record stores or replaces a finished export.
func (l *exportLedger) Record(ctx context.Context, r domain.ExportRecord) error {
	intentJSON, err := json.Marshal(r.Intent)
	if err != nil {
		return fmt.Errorf("marshalling intent: %w", err)
	}

	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO exports (id, format, outcome, filename, location, total_count, fetched_count,
			message, error, intent, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			outcome = excluded.outcome,
			filename = excluded.filename,
			location = excluded.location,
			total_count = excluded.total_count,
			fetched_count = excluded.fetched_count,
			message = excluded.message,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, r.ID, string(r.Format), string(r.Outcome), nullString(r.Filename), nullString(r.Location),
		r.TotalCount, r.FetchedCount, r.Message, nullString(r.Err), string(intentJSON),
		r.StartedAt.UTC(), r.FinishedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving export: %w", err)
	}
	return nil
}

// List returns up to limit exports, most recent first.
func (l *exportLedger) List(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := l.store.db.QueryContext(ctx, `
		SELECT id, format, outcome, filename, location, total_count, fetched_count,
			message, error, intent, started_at, finished_at
		FROM exports
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ExportRecord, 0, limit)
	for rows.Next() {
		var r domain.ExportRecord
		var format, outcome, intentJSON string
		var filename, location, errText sql.NullString
		var startedAt, finishedAt sql.NullTime
		if err := rows.Scan(&r.ID, &format, &outcome, &filename, &location, &r.TotalCount,
			&r.FetchedCount, &r.Message, &errText, &intentJSON, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}

		if err := json.Unmarshal([]byte(intentJSON), &r.Intent); err != nil {
			return nil, fmt.Errorf("unmarshaling intent: %w", err)
		}

		r.Format = domain.ExportFormat(format)
		r.Outcome = domain.ExportOutcome(outcome)
		r.Filename = filename.String
		r.Location = location.String
		r.Err = errText.String
		if startedAt.Valid {
			r.StartedAt = startedAt.Time
		}
		if finishedAt.Valid {
			r.FinishedAt = finishedAt.Time
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exports: %w", err)
	}

	return records, nil
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
