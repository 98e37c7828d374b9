package revision

import (
	"encoding/json"
	"testing"
)

func TestHistoryViewRounds(t *testing.T) {
	analyses := newAnalyses(t, "linkedin_v2", "round zero")
	if _, err := NewRound(analyses, "linkedin_v2", "round one", JudgeResult{Overall: 6.2}, testNow); err != nil {
		t.Fatal(err)
	}

	entries, err := HistoryView(analyses, "linkedin_v2")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Draft != "round zero" || entries[0].Judge == nil || entries[0].Judge.Overall != 6.2 {
		t.Fatalf("round 0 = %+v", entries[0])
	}
	if entries[1].Draft != "round one" || entries[1].Judge != nil {
		t.Fatalf("round 1 = %+v", entries[1])
	}
}

func TestHistoryViewLegacyFallback(t *testing.T) {
	analyses := map[string]json.RawMessage{
		"blog_post":       json.RawMessage(`{"content":"old words"}`),
		"blog_post_judge": json.RawMessage(`{"overall":4.5}`),
	}
	entries, err := HistoryView(analyses, "blog_post")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Round != 0 || entries[0].Draft != "old words" {
		t.Fatalf("entry = %+v", entries[0])
	}
	if entries[0].Judge == nil || entries[0].Judge.Overall != 4.5 {
		t.Fatalf("judge = %+v", entries[0].Judge)
	}
}

func TestHistoryViewMissingType(t *testing.T) {
	if _, err := HistoryView(map[string]json.RawMessage{}, "quotes"); err != ErrNoContent {
		t.Fatalf("err = %v", err)
	}
}

func TestEditHistoryViewOrder(t *testing.T) {
	analyses := newAnalyses(t, "blog_post", "draft")
	if _, _, err := EnsureStaged(analyses, "blog_post", testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveEdit(analyses, "blog_post", "tweak one", testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveEdit(analyses, "blog_post", "tweak two", testNow); err != nil {
		t.Fatal(err)
	}

	entries, err := EditHistoryView(analyses, "blog_post")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d", len(entries))
	}
	want := []string{"draft", "tweak one", "tweak two"}
	for i, entry := range entries {
		if entry.Edit != i || entry.Content != want[i] {
			t.Fatalf("entry %d = %+v", i, entry)
		}
	}
	if entries[1].Source != EditKey("blog_post", 0, 0) {
		t.Fatalf("entry 1 source = %q", entries[1].Source)
	}
}

func TestEditHistoryViewEmptyWithoutEdits(t *testing.T) {
	analyses := newAnalyses(t, "quotes", "draft")
	entries, err := EditHistoryView(analyses, "quotes")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d", len(entries))
	}
}

func TestEditHistoryResetsAfterNewRound(t *testing.T) {
	analyses := newAnalyses(t, "linkedin_v2", "draft")
	if _, _, err := EnsureStaged(analyses, "linkedin_v2", testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveEdit(analyses, "linkedin_v2", "edited", testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRound(analyses, "linkedin_v2", "rewritten", JudgeResult{Overall: 8}, testNow); err != nil {
		t.Fatal(err)
	}

	entries, err := EditHistoryView(analyses, "linkedin_v2")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("new round should start with no edits, got %d", len(entries))
	}
}
