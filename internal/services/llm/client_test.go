package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"},
		WithRetry(3, time.Millisecond, 5*time.Millisecond),
	)
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":` + jsonQuote(content) + `}}]}`
}

func jsonQuote(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\n':
			out += `\n`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func TestCompleteJSONReturnsContent(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(completionBody(`{"ok":true}`)))
	})

	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatal(err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("content = %q", content)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody("recovered")))
	})

	content, err := client.CompleteText(context.Background(), "system", "user")
	if err != nil {
		t.Fatal(err)
	}
	if content != "recovered" || calls.Load() != 3 {
		t.Fatalf("content=%q calls=%d", content, calls.Load())
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	if _, err := client.CompleteText(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	if _, err := client.CompleteText(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeJSONHandlesFences(t *testing.T) {
	var target struct {
		Overall float64 `json:"overall"`
	}
	cases := []string{
		`{"overall":7.5}`,
		"```json\n{\"overall\":7.5}\n```",
		"Here is the result:\n{\"overall\":7.5}\nHope that helps!",
	}
	for _, payload := range cases {
		target.Overall = 0
		if err := DecodeJSON(payload, &target); err != nil {
			t.Fatalf("DecodeJSON(%q): %v", payload, err)
		}
		if target.Overall != 7.5 {
			t.Fatalf("DecodeJSON(%q) overall = %v", payload, target.Overall)
		}
	}
}

func TestDecodeJSONRejectsEmpty(t *testing.T) {
	var target map[string]any
	if err := DecodeJSON("   ", &target); err == nil {
		t.Fatal("expected error")
	}
}
