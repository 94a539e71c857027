package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Compile-time contract assertion.
var _ Store = (*SQLite)(nil)

// SQLite is a durable Store backed by a single SQLite file.
//
// The reconciler assumes exclusive access for the duration of a batch, so
// the connection pool is limited to a single connection.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
	notify notifier
}

// SQLiteOption configures an opened store.
type SQLiteOption func(*SQLite)

// WithSQLiteLogger sets the logger used for background failures that have
// no error return path (notification snapshotting).
func WithSQLiteLogger(logger *slog.Logger) SQLiteOption {
	return func(s *SQLite) {
		s.logger = logger
	}
}

// OpenSQLite creates or opens a SQLite replica at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - a single-connection pool (SQLite supports one writer at a time)
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLite{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	_, err := db.Exec(
		"INSERT INTO schema_version (version) VALUES (?) ON CONFLICT DO NOTHING",
		currentSchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the document for id, or ok=false.
func (s *SQLite) Lookup(ctx context.Context, id doc.ID) (*doc.Document, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT fields FROM documents WHERE id = ?", string(id),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %q: %w", id, err)
	}
	fields, err := unmarshalFields(data)
	if err != nil {
		return nil, false, fmt.Errorf("lookup %q: %w", id, err)
	}
	return &doc.Document{ID: id, Fields: fields}, true, nil
}

// Insert stores a new document.
func (s *SQLite) Insert(ctx context.Context, d *doc.Document) error {
	data, err := marshalFields(d.Fields)
	if err != nil {
		return fmt.Errorf("insert %q: %w", d.ID, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, fields) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, string(d.ID), data)
	if err != nil {
		return fmt.Errorf("insert %q: %w", d.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %q: %w", d.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("insert %q: %w", d.ID, ErrDocumentExists)
	}

	s.notify.emit(Event{Kind: EventAdded, ID: d.ID, Fields: d.Fields.Clone()})
	return nil
}

// Update applies a patch to an existing document.
// Read-modify-write is safe under the single-writer connection pool.
func (s *SQLite) Update(ctx context.Context, id doc.ID, p diff.Patch) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT fields FROM documents WHERE id = ?", string(id),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update %q: %w", id, ErrDocumentMissing)
	}
	if err != nil {
		return fmt.Errorf("update %q: %w", id, err)
	}

	fields, err := unmarshalFields(data)
	if err != nil {
		return fmt.Errorf("update %q: %w", id, err)
	}
	diff.Apply(fields, p)

	updated, err := marshalFields(fields)
	if err != nil {
		return fmt.Errorf("update %q: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE documents SET fields = ? WHERE id = ?", updated, string(id),
	); err != nil {
		return fmt.Errorf("update %q: %w", id, err)
	}

	s.notify.emit(Event{Kind: EventChanged, ID: id, Patch: p})
	return nil
}

// Remove deletes an existing document.
func (s *SQLite) Remove(ctx context.Context, id doc.ID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ?", string(id),
	)
	if err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("remove %q: %w", id, ErrDocumentMissing)
	}

	s.notify.emit(Event{Kind: EventRemoved, ID: id})
	return nil
}

// RemoveAll clears every document.
func (s *SQLite) RemoveAll(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM documents ORDER BY id COLLATE BINARY ASC",
	)
	if err != nil {
		return fmt.Errorf("remove all: %w", err)
	}
	var removed []doc.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("remove all: %w", err)
		}
		removed = append(removed, doc.ID(id))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("remove all: %w", err)
	}
	rows.Close()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("remove all: %w", err)
	}

	for _, id := range removed {
		s.notify.emit(Event{Kind: EventRemoved, ID: id})
	}
	return nil
}

// All returns every document, sorted by identifier.
func (s *SQLite) All(ctx context.Context) ([]doc.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fields FROM documents ORDER BY id COLLATE BINARY ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []doc.Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		fields, err := unmarshalFields(data)
		if err != nil {
			return nil, fmt.Errorf("list documents %q: %w", id, err)
		}
		out = append(out, doc.Document{ID: doc.ID(id), Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Observe registers an observer for mutation events.
func (s *SQLite) Observe(fn Observer) {
	s.notify.observe(fn)
}

// SuspendNotifications withholds events until the matching resume.
func (s *SQLite) SuspendNotifications() {
	s.notify.suspend(s.snapshotAll())
}

// ResumeNotifications delivers the coalesced net effect since suspension.
func (s *SQLite) ResumeNotifications() {
	s.notify.resume(s.snapshotAll())
}

// snapshotAll reads the whole replica for notification coalescing. The
// Store contract gives suspend/resume no error return, so read failures are
// logged and the snapshot degrades to empty.
func (s *SQLite) snapshotAll() map[doc.ID]doc.Fields {
	out := make(map[doc.ID]doc.Fields)

	rows, err := s.db.Query("SELECT id, fields FROM documents")
	if err != nil {
		s.logger.Error("snapshot for notifications failed", "error", err)
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			s.logger.Error("snapshot for notifications failed", "error", err)
			return out
		}
		fields, err := unmarshalFields(data)
		if err != nil {
			s.logger.Error("snapshot for notifications failed", "id", id, "error", err)
			return out
		}
		out[doc.ID(id)] = fields
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("snapshot for notifications failed", "error", err)
	}
	return out
}
