package daemon

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"copydesk/internal/api"
	"copydesk/internal/logging"
	"copydesk/internal/testsupport"
)

type testHarness struct {
	daemon    *Daemon
	server    *httptest.Server
	generator *testsupport.FakeGenerator
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	gen := &testsupport.FakeGenerator{}
	d, err := New(cfg, logging.NewNop(), testsupport.Collaborators(gen, nil, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = d.Close() })

	server := httptest.NewServer(d.api.handler())
	t.Cleanup(server.Close)
	return &testHarness{daemon: d, server: server, generator: gen}
}

func (h *testHarness) seed(t *testing.T, transcriptID string, contents map[string]string) {
	t.Helper()
	testsupport.SeedTranscript(t, h.daemon.Records(), transcriptID, "transcript", contents)
}

func (h *testHarness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func (h *testHarness) stage(t *testing.T, actionID string) {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/action/"+actionID+"/stage", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stage %s: status %d", actionID, resp.StatusCode)
	}
}

func TestQueueEndpointListsNewActions(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "t1", map[string]string{"linkedin_v2": "draft"})

	// Seeding the record alone is enough; the analysis is an implicitly
	// created action and must appear without any state-document entry.
	resp := h.do(t, http.MethodGet, "/api/queue", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	queue := decode[api.QueueResponse](t, resp)
	if len(queue.Items) == 0 {
		t.Fatal("queue empty")
	}
	found := false
	for _, item := range queue.Items {
		if item.ActionID == "t1--linkedin_v2" {
			found = true
			if item.Destination != "LinkedIn" {
				t.Fatalf("destination = %q", item.Destination)
			}
		}
	}
	if !found {
		t.Fatalf("t1--linkedin_v2 missing from queue: %+v", queue.Items)
	}
}

func TestStageMovesActionFromQueueToReview(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "t1", map[string]string{"linkedin_v2": "draft"})
	h.stage(t, "t1--linkedin_v2")

	queue := decode[api.QueueResponse](t, h.do(t, http.MethodGet, "/api/queue", nil))
	for _, item := range queue.Items {
		if item.ActionID == "t1--linkedin_v2" {
			t.Fatal("staged action still in queue")
		}
	}

	review := decode[api.ReviewResponse](t, h.do(t, http.MethodGet, "/api/posting-queue-v2", nil))
	if len(review.Items) != 1 || review.Items[0].ActionID != "t1--linkedin_v2" {
		t.Fatalf("review = %+v", review.Items)
	}
	if review.Items[0].IterationCount != 1 {
		t.Fatalf("iteration_count = %d", review.Items[0].IterationCount)
	}
}

func TestSaveEditEndpoint(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "t1", map[string]string{"linkedin_v2": "draft"})
	h.stage(t, "t1--linkedin_v2")

	resp := h.do(t, http.MethodPost, "/api/action/t1--linkedin_v2/save-edit", api.SaveEditRequest{Text: "better"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	action := decode[api.ActionResponse](t, resp)
	if action.EditCount != 1 {
		t.Fatalf("edit_count = %d", action.EditCount)
	}

	history := decode[api.EditHistoryResponse](t, h.do(t, http.MethodGet, "/api/action/t1--linkedin_v2/edit-history", nil))
	if len(history.Edits) != 2 || history.Edits[1].Content != "better" {
		t.Fatalf("edits = %+v", history.Edits)
	}
}

func TestIterateEndpointAcceptsAndRecordsRound(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "t1", map[string]string{"linkedin_v2": "draft"})
	h.stage(t, "t1--linkedin_v2")

	resp := h.do(t, http.MethodPost, "/api/action/t1--linkedin_v2/iterate", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	job := decode[api.JobResponse](t, resp)
	if job.JobID == "" {
		t.Fatal("no job id")
	}
	h.daemon.runner.Wait("t1--linkedin_v2")

	iterations := decode[api.IterationsResponse](t, h.do(t, http.MethodGet, "/api/action/t1--linkedin_v2/iterations", nil))
	if len(iterations.Rounds) != 2 {
		t.Fatalf("rounds = %+v", iterations.Rounds)
	}
	if iterations.Rounds[0].Judge == nil || iterations.Rounds[1].Judge != nil {
		t.Fatalf("judge placement wrong: %+v", iterations.Rounds)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "t1", map[string]string{"linkedin_v2": "draft"})

	// invalid action id → 400
	if resp := h.do(t, http.MethodPost, "/api/action/not-an-id/stage", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d", resp.StatusCode)
	}
	// unknown transcript → 404
	if resp := h.do(t, http.MethodPost, "/api/action/ghost--linkedin_v2/stage", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown transcript status = %d", resp.StatusCode)
	}
	// iterate before staging → 409
	if resp := h.do(t, http.MethodPost, "/api/action/t1--linkedin_v2/iterate", nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("unstaged iterate status = %d", resp.StatusCode)
	}
	// unknown verb → 404
	if resp := h.do(t, http.MethodPost, "/api/action/t1--linkedin_v2/explode", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown verb status = %d", resp.StatusCode)
	}
}

func TestAnalysisTypesExcludesInternal(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/analysis-types", nil)
	types := decode[api.AnalysisTypesResponse](t, resp)
	if len(types.Types) == 0 {
		t.Fatal("no types")
	}
	for _, entry := range types.Types {
		if entry.Name == "summary" {
			t.Fatal("internal type exposed")
		}
	}
}

func TestTemplatesEndpoint(t *testing.T) {
	h := newHarness(t)
	templates := decode[api.TemplatesResponse](t, h.do(t, http.MethodGet, "/api/templates", nil))
	if len(templates.Templates) == 0 {
		t.Fatal("no templates")
	}
}

func TestAnalyzeEndpointConflictsWhileRunning(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "t2", map[string]string{})

	started := make(chan struct{})
	release := make(chan struct{})
	h.generator.GenerateHook = func() {
		close(started)
		<-release
		h.generator.GenerateHook = nil
	}

	resp := h.do(t, http.MethodPost, "/api/transcript/t2/analyze", api.AnalyzeRequest{Types: []string{"quotes"}})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	<-started

	processing := decode[api.ProcessingResponse](t, h.do(t, http.MethodGet, "/api/processing", nil))
	if _, ok := processing.Processing["t2"]; !ok {
		t.Fatalf("processing = %+v", processing.Processing)
	}

	if resp := h.do(t, http.MethodPost, "/api/transcript/t2/analyze", api.AnalyzeRequest{Types: []string{"quotes"}}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second analyze status = %d", resp.StatusCode)
	}

	close(release)
	h.daemon.runner.Wait("t2")

	processing = decode[api.ProcessingResponse](t, h.do(t, http.MethodGet, "/api/processing", nil))
	if len(processing.Processing) != 0 {
		t.Fatalf("processing not cleared: %+v", processing.Processing)
	}
}

func TestStatusEndpoint(t *testing.T) {
	h := newHarness(t)
	status := decode[api.DaemonStatus](t, h.do(t, http.MethodGet, "/api/status", nil))
	if status.StateFilePath == "" || status.RecordsDBPath == "" {
		t.Fatalf("status = %+v", status)
	}
}
