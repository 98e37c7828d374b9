package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"copydesk/internal/config"
)

// Record is one transcript document: the transcript text plus the analysis
// key map the iteration engine versions. Callers mutate the map in memory
// and write the whole document back (merge-read-then-rewrite).
type Record struct {
	TranscriptID string
	Transcript   string
	Analyses     map[string]json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewRecord builds an empty record for a transcript.
func NewRecord(transcriptID, transcript string) *Record {
	return &Record{
		TranscriptID: transcriptID,
		Transcript:   transcript,
		Analyses:     map[string]json.RawMessage{},
	}
}

// Store manages transcript record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the records database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.RecordsDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Get fetches one transcript record, or nil when the transcript is unknown.
func (s *Store) Get(ctx context.Context, transcriptID string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT transcript_id, transcript, analyses, created_at, updated_at
         FROM transcript_records WHERE transcript_id = ?`,
		transcriptID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Put writes the whole record back, inserting or replacing as needed.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if rec.Analyses == nil {
		rec.Analyses = map[string]json.RawMessage{}
	}
	analyses, err := json.Marshal(rec.Analyses)
	if err != nil {
		return fmt.Errorf("encode analyses: %w", err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO transcript_records (transcript_id, transcript, analyses, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(transcript_id) DO UPDATE SET
             transcript = excluded.transcript,
             analyses = excluded.analyses,
             updated_at = excluded.updated_at`,
		rec.TranscriptID,
		rec.Transcript,
		string(analyses),
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// List returns all transcript records ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT transcript_id, transcript, analyses, created_at, updated_at
         FROM transcript_records ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		transcriptID string
		transcript   string
		analysesRaw  string
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&transcriptID, &transcript, &analysesRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	rec := &Record{
		TranscriptID: transcriptID,
		Transcript:   transcript,
		Analyses:     map[string]json.RawMessage{},
	}
	if analysesRaw != "" {
		if err := json.Unmarshal([]byte(analysesRaw), &rec.Analyses); err != nil {
			return nil, fmt.Errorf("decode analyses for %s: %w", transcriptID, err)
		}
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return rec, nil
}
