package statestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"copydesk/internal/lifecycle"
	"copydesk/internal/logging"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "state.json"), logging.NewNop())
}

func TestLoadMissingFileReturnsEmptyDocument(t *testing.T) {
	store := newStore(t)
	doc, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Actions) != 0 || len(doc.Processing) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)
	doc := lifecycle.NewDocument()
	id, _ := lifecycle.NewID("t1", "linkedin_v2")
	doc.Ensure(id, time.Now()).Status = lifecycle.StatusStaged
	doc.Processing["t2"] = &lifecycle.ProcessingEntry{
		Types:     []string{"linkedin_v2", "quotes"},
		StartedAt: time.Now().UTC(),
	}

	if err := store.Save(doc); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Actions["t1--linkedin_v2"]; got == nil || got.Status != lifecycle.StatusStaged {
		t.Fatalf("loaded action = %+v", got)
	}
	if got := loaded.Processing["t2"]; got == nil || len(got.Types) != 2 {
		t.Fatalf("loaded processing = %+v", got)
	}
}

func TestLoadCorruptDocumentBacksUpAndResets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{definitely not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fixed := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store := New(path, logging.NewNop(), WithClock(func() time.Time { return fixed }))

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("corrupt document must not surface an error, got %v", err)
	}
	if len(doc.Actions) != 0 {
		t.Fatal("expected reset to empty document")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var foundBackup bool
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "state.json.corrupt-20260115T120000") {
			foundBackup = true
		}
	}
	if !foundBackup {
		t.Fatalf("corrupt backup missing, dir has %v", entries)
	}

	// A subsequent save starts a fresh document at the original path.
	if err := store.Save(doc); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
