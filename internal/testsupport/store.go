package testsupport

import (
	"context"
	"testing"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/logging"
	"copydesk/internal/records"
	"copydesk/internal/revision"
	"copydesk/internal/statestore"
)

// MustOpenRecords opens a transcript record store for tests and registers
// cleanup.
func MustOpenRecords(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewStateStore builds an action state store rooted in the test config's
// data directory.
func NewStateStore(t testing.TB, cfg *config.Config) *statestore.Store {
	t.Helper()
	return statestore.New(cfg.StateFilePath(), logging.NewNop())
}

// SeedTranscript writes a transcript record with generated content for each
// analysis type and returns it.
func SeedTranscript(t testing.TB, store *records.Store, transcriptID, transcript string, contents map[string]string) *records.Record {
	t.Helper()

	rec := records.NewRecord(transcriptID, transcript)
	for analysisType, content := range contents {
		if err := revision.InitAnalysis(rec.Analyses, analysisType, content, time.Now()); err != nil {
			t.Fatalf("seed analysis %s: %v", analysisType, err)
		}
	}
	if err := store.Put(context.Background(), rec); err != nil {
		t.Fatalf("seed record %s: %v", transcriptID, err)
	}
	return rec
}
