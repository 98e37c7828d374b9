package visuals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"copydesk/internal/actions"
	"copydesk/internal/config"
)

// HTTPDoer describes the HTTP client used by the renderer.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Renderer posts slide data to the external render pipeline.
type Renderer struct {
	baseURL string
	client  HTTPDoer
}

// NewRenderer constructs a renderer from configuration.
func NewRenderer(cfg *config.Config) *Renderer {
	timeout := 120 * time.Second
	if cfg.Visuals.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Visuals.TimeoutSeconds) * time.Second
	}
	return &Renderer{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.Visuals.RendererURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewRendererWithClient constructs a renderer with an explicit HTTP client
// (used in tests).
func NewRendererWithClient(baseURL string, client HTTPDoer) *Renderer {
	return &Renderer{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

type renderRequest struct {
	Template string          `json:"template"`
	Slides   []actions.Slide `json:"slides"`
}

// Render submits the slides and returns the produced asset paths.
func (r *Renderer) Render(ctx context.Context, slides []actions.Slide, template string) (actions.RenderResult, error) {
	var result actions.RenderResult
	if r.baseURL == "" {
		return result, fmt.Errorf("render: renderer_url not configured")
	}
	if len(slides) == 0 {
		return result, fmt.Errorf("render: no slides")
	}

	encoded, err := json.Marshal(renderRequest{Template: template, Slides: slides})
	if err != nil {
		return result, fmt.Errorf("render: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render", bytes.NewReader(encoded))
	if err != nil {
		return result, fmt.Errorf("render: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("render: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("render: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return result, fmt.Errorf("render: pipeline returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("render: decode response: %w", err)
	}
	if result.PDFPath == "" && len(result.Errors) == 0 {
		return result, fmt.Errorf("render: pipeline returned no assets")
	}
	return result, nil
}
