// Package statestore persists the action state document: a single JSON file
// mapping action IDs to lifecycle state. The document is the source of truth
// for status; mutation is whole-file read-modify-write with last-writer-wins,
// acceptable under the single-writer usage contract.
package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"copydesk/internal/fileutil"
	"copydesk/internal/lifecycle"
	"copydesk/internal/logging"
)

// Store reads and writes the action state document.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes store construction.
type Option func(*Store)

// WithClock overrides the timestamp source used for corrupt-file backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a store for the document at path.
func New(path string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.WithComponent(logger, "statestore"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Load reads the state document. A missing file yields an empty document.
// A file that fails to parse is backed up aside and replaced by an empty
// document; corruption is logged, never surfaced as a request failure.
func (s *Store) Load() (*lifecycle.Document, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock state document: %w", err)
	}
	defer s.unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lifecycle.NewDocument(), nil
		}
		return nil, fmt.Errorf("read state document: %w", err)
	}
	if len(data) == 0 {
		return lifecycle.NewDocument(), nil
	}

	var doc lifecycle.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		backup, backupErr := fileutil.BackupAside(s.path, s.now())
		if backupErr != nil {
			s.logger.Error("state document corrupt and backup failed",
				logging.Error(err),
				logging.Any("backup_error", backupErr))
			return lifecycle.NewDocument(), nil
		}
		s.logger.Error("state document corrupt, reset to empty",
			logging.Error(err),
			logging.String("backup", backup))
		return lifecycle.NewDocument(), nil
	}
	doc.EnsureMaps()
	return &doc, nil
}

// Save atomically replaces the state document.
func (s *Store) Save(doc *lifecycle.Document) error {
	if doc == nil {
		return errors.New("nil state document")
	}
	doc.EnsureMaps()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock state document: %w", err)
	}
	defer s.unlock()

	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state document: %w", err)
	}
	return nil
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("unlock state document", logging.Error(err))
	}
}
