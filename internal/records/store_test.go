package records

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"copydesk/internal/config"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "out")

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetUnknownTranscript(t *testing.T) {
	store := openStore(t)
	rec, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := NewRecord("ep-001", "we talked about shipping small")
	rec.Analyses["linkedin_v2"] = json.RawMessage(`{"content":"ship small, ship often"}`)

	if err := store.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "ep-001")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("record missing after put")
	}
	if got.Transcript != rec.Transcript {
		t.Fatalf("transcript = %q", got.Transcript)
	}
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(got.Analyses["linkedin_v2"], &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Content != "ship small, ship often" {
		t.Fatalf("content = %q", payload.Content)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not persisted")
	}
}

func TestPutRewritesWholeDocument(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := NewRecord("ep-002", "transcript")
	rec.Analyses["quotes"] = json.RawMessage(`{"content":"v1"}`)
	if err := store.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	rec.Analyses["quotes"] = json.RawMessage(`{"content":"v2"}`)
	rec.Analyses["quotes_0"] = json.RawMessage(`{"content":"v1"}`)
	if err := store.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "ep-002")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Analyses) != 2 {
		t.Fatalf("analyses keys = %d, want 2", len(got.Analyses))
	}
}

func TestListOrdersByCreation(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, NewRecord(id, "t-"+id)); err != nil {
			t.Fatal(err)
		}
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
}
