package visuals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"copydesk/internal/actions"
)

func TestHeuristicClassifier(t *testing.T) {
	classifier := NewClassifier(nil)

	format, err := classifier.Classify(context.Background(), "one short thought")
	if err != nil {
		t.Fatal(err)
	}
	if format != actions.FormatTextOnly {
		t.Fatalf("format = %q", format)
	}

	format, err = classifier.Classify(context.Background(), "Hook\n\nPoint one\n\nPoint two\n\nClose")
	if err != nil {
		t.Fatal(err)
	}
	if format != actions.FormatCarousel {
		t.Fatalf("format = %q", format)
	}
}

func TestRendererRoundTrip(t *testing.T) {
	var received renderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(actions.RenderResult{
			PDFPath:        "/out/deck.pdf",
			ThumbnailPaths: []string{"/out/slide-0.png"},
		})
	}))
	defer server.Close()

	renderer := NewRendererWithClient(server.URL, http.DefaultClient)
	slides := []actions.Slide{{Index: 0, Body: "hook"}, {Index: 1, Title: "Point", Body: "detail"}}
	result, err := renderer.Render(context.Background(), slides, "gradient")
	if err != nil {
		t.Fatal(err)
	}
	if result.PDFPath != "/out/deck.pdf" || len(result.ThumbnailPaths) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if received.Template != "gradient" || len(received.Slides) != 2 {
		t.Fatalf("request = %+v", received)
	}
}

func TestRendererSurfacesPipelineFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	renderer := NewRendererWithClient(server.URL, http.DefaultClient)
	_, err := renderer.Render(context.Background(), []actions.Slide{{Body: "x"}}, "mono")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRendererRequiresConfiguration(t *testing.T) {
	renderer := NewRendererWithClient("", http.DefaultClient)
	if _, err := renderer.Render(context.Background(), []actions.Slide{{Body: "x"}}, "mono"); err == nil {
		t.Fatal("expected error")
	}
}
