package views_test

import (
	"encoding/json"
	"testing"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/lifecycle"
	"copydesk/internal/records"
	"copydesk/internal/revision"
	"copydesk/internal/views"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Destinations = map[string]string{
		"linkedin_v2": "LinkedIn",
		"title*":      "Planning",
		"*":           "Drafts",
	}
	return &cfg
}

func docWith(t *testing.T, statuses map[string]lifecycle.Status) *lifecycle.Document {
	t.Helper()
	doc := lifecycle.NewDocument()
	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for raw, status := range statuses {
		id, err := lifecycle.ParseID(raw)
		if err != nil {
			t.Fatal(err)
		}
		action := doc.Ensure(id, created)
		action.Status = status
		created = created.Add(time.Minute)
	}
	return doc
}

func TestDestinationPrecedence(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		analysisType string
		want         string
	}{
		{"linkedin_v2", "LinkedIn"}, // exact beats the glob and catch-all
		{"title_ideas", "Planning"}, // glob beats catch-all
		{"quotes", "Drafts"},        // catch-all
	}
	for _, tc := range cases {
		if got := views.Destination(cfg, tc.analysisType); got != tc.want {
			t.Errorf("Destination(%q) = %q, want %q", tc.analysisType, got, tc.want)
		}
	}
}

func TestDestinationDefaultLabel(t *testing.T) {
	cfg := testConfig()
	cfg.Destinations = nil
	if got := views.Destination(cfg, "title_ideas"); got != "Title Ideas" {
		t.Fatalf("got %q", got)
	}
}

func TestQueueListsOnlyNew(t *testing.T) {
	cfg := testConfig()
	doc := docWith(t, map[string]lifecycle.Status{
		"t1--linkedin_v2": lifecycle.StatusNew,
		"t1--quotes":      lifecycle.StatusStaged,
		"t2--blog_post":   lifecycle.StatusDone,
		"t3--title_ideas": lifecycle.StatusNew,
	})

	items := views.Queue(cfg, doc, nil)
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	seen := map[string]string{}
	for _, item := range items {
		seen[item.ActionID] = item.Destination
	}
	if seen["t1--linkedin_v2"] != "LinkedIn" || seen["t3--title_ideas"] != "Planning" {
		t.Fatalf("destinations = %v", seen)
	}
}

// An analysis record the state document has never tracked is an implicitly
// created action and must surface as status=new; a tracked entry of any
// status wins over its pending counterpart.
func TestQueueSurfacesRecordOnlyAnalyses(t *testing.T) {
	cfg := testConfig()
	doc := docWith(t, map[string]lifecycle.Status{
		"t1--blog_post": lifecycle.StatusStaged,
	})

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := records.NewRecord("t1", "transcript")
	rec.CreatedAt = created
	for _, analysisType := range []string{"linkedin_v2", "blog_post", "summary"} {
		if err := revision.InitAnalysis(rec.Analyses, analysisType, "content", created); err != nil {
			t.Fatal(err)
		}
	}

	pending := views.PendingAnalyses(cfg, []*records.Record{rec})
	items := views.Queue(cfg, doc, pending)
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
	item := items[0]
	if item.ActionID != "t1--linkedin_v2" {
		t.Fatalf("action = %s", item.ActionID)
	}
	if item.Destination != "LinkedIn" || !item.CreatedAt.Equal(created) {
		t.Fatalf("item = %+v", item)
	}
}

func TestReviewAnnotatesIterationState(t *testing.T) {
	analyses := map[string]json.RawMessage{}
	if err := revision.InitAnalysis(analyses, "linkedin_v2", "v0", time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := revision.NewRound(analyses, "linkedin_v2", "v1", revision.JudgeResult{Overall: 8.1}, time.Now()); err != nil {
		t.Fatal(err)
	}

	doc := docWith(t, map[string]lifecycle.Status{
		"t1--linkedin_v2": lifecycle.StatusStaged,
	})
	items := views.Review(doc, func(transcriptID string) map[string]json.RawMessage {
		if transcriptID == "t1" {
			return analyses
		}
		return nil
	})
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	item := items[0]
	if item.IterationCount != 2 {
		t.Fatalf("iteration_count = %d", item.IterationCount)
	}
	if item.LatestScore == nil || *item.LatestScore != 8.1 {
		t.Fatalf("latest_score = %v", item.LatestScore)
	}
}

// Projection membership and the terminal statuses are mutually exclusive for
// every action.
func TestQueueAndReviewDisjoint(t *testing.T) {
	cfg := testConfig()
	statuses := map[string]lifecycle.Status{
		"t1--linkedin_v2": lifecycle.StatusNew,
		"t1--blog_post":   lifecycle.StatusStaged,
		"t2--linkedin_v2": lifecycle.StatusReady,
		"t2--quotes":      lifecycle.StatusDone,
		"t3--linkedin_v2": lifecycle.StatusSkip,
	}
	doc := docWith(t, statuses)

	queueIDs := map[string]bool{}
	for _, item := range views.Queue(cfg, doc, nil) {
		queueIDs[item.ActionID] = true
	}
	reviewIDs := map[string]bool{}
	for _, item := range views.Review(doc, func(string) map[string]json.RawMessage { return nil }) {
		reviewIDs[item.ActionID] = true
	}

	for raw, status := range statuses {
		memberships := 0
		if queueIDs[raw] {
			memberships++
		}
		if reviewIDs[raw] {
			memberships++
		}
		if status.Terminal() {
			memberships++
		}
		if memberships != 1 {
			t.Errorf("action %s (status %s) has %d memberships", raw, status, memberships)
		}
	}
}
