package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ytget/yt-fetch/internal/model"
)

// Entry is one recorded outcome.
type Entry struct {
	ID         int64
	RequestID  string
	Kind       model.MediaKind
	Collection string // playlist title, empty for single fetches
	Reference  string
	Title      string
	Path       string
	Stage      model.Stage // empty on success
	Reason     string
	Elapsed    time.Duration
	RecordedAt time.Time
}

// OK returns true if the recorded outcome had no failure
func (e Entry) OK() bool {
	return e.Stage == ""
}

// NewEntry flattens an outcome into a ledger row
func NewEntry(requestID string, kind model.MediaKind, collection string, o model.Outcome) Entry {
	entry := Entry{
		RequestID:  requestID,
		Kind:       kind,
		Collection: collection,
		Reference:  o.Reference,
		Title:      o.Title,
		Path:       o.Path,
		Elapsed:    o.Elapsed,
	}
	if o.Failure != nil {
		entry.Stage = o.Failure.Stage
		entry.Reason = o.Failure.Reason
	}
	return entry
}

// Store persists entries in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path and ensures its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// one writer at a time keeps sqlite out of SQLITE_BUSY during playlist fan-out
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the ledger table and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			collection TEXT,
			reference TEXT NOT NULL,
			title TEXT,
			path TEXT,
			stage TEXT,
			reason TEXT,
			elapsed_ms INTEGER DEFAULT 0,
			recorded_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_request ON outcomes(request_id);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_recorded ON outcomes(recorded_at);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}
	}
	return nil
}

// Record appends entry to the ledger.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (request_id, kind, collection, reference, title, path, stage, reason, elapsed_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		string(entry.Kind),
		entry.Collection,
		entry.Reference,
		entry.Title,
		entry.Path,
		string(entry.Stage),
		entry.Reason,
		entry.Elapsed.Milliseconds(),
		recordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, kind, collection, reference, title, path, stage, reason, elapsed_ms, recorded_at
		 FROM outcomes ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry                           Entry
			kind, stage                     string
			collection, title, path, reason sql.NullString
			elapsedMS                       int64
		)
		if err := rows.Scan(&entry.ID, &entry.RequestID, &kind, &collection, &entry.Reference,
			&title, &path, &stage, &reason, &elapsedMS, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.Kind = model.MediaKind(kind)
		entry.Stage = model.Stage(stage)
		entry.Collection = collection.String
		entry.Title = title.String
		entry.Path = path.String
		entry.Reason = reason.String
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
