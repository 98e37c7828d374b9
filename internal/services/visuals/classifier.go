// Package visuals decides how content gets rendered and drives the external
// render pipeline.
package visuals

import (
	"context"
	"fmt"
	"strings"

	"copydesk/internal/actions"
	"copydesk/internal/services/llm"
)

const classifySystemPrompt = "Decide whether this social post works better as a slide carousel or as plain text. " +
	`Respond with JSON only: {"format": "carousel"} or {"format": "text_only"}. ` +
	"Posts with several distinct points or a list structure suit a carousel; short single-thought posts stay text."

// Classifier picks a render format for a draft. Without an LLM client it
// falls back to a structural heuristic.
type Classifier struct {
	client *llm.Client
}

// NewClassifier constructs a classifier. client may be nil.
func NewClassifier(client *llm.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify returns FormatCarousel or FormatTextOnly.
func (c *Classifier) Classify(ctx context.Context, draft string) (string, error) {
	if c.client == nil {
		return heuristicFormat(draft), nil
	}
	payload, err := c.client.CompleteJSON(ctx, classifySystemPrompt, draft)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	var parsed struct {
		Format string `json:"format"`
	}
	if err := llm.DecodeJSON(payload, &parsed); err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(parsed.Format)) {
	case actions.FormatCarousel:
		return actions.FormatCarousel, nil
	case actions.FormatTextOnly, "text":
		return actions.FormatTextOnly, nil
	default:
		return "", fmt.Errorf("classify: unexpected format %q", parsed.Format)
	}
}

// heuristicFormat favors a carousel once content has three or more
// paragraphs or list-shaped lines.
func heuristicFormat(draft string) string {
	paragraphs := 0
	for _, block := range strings.Split(draft, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}
	listLines := 0
	for _, line := range strings.Split(draft, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			listLines++
		}
	}
	if paragraphs >= 3 || listLines >= 3 {
		return actions.FormatCarousel
	}
	return actions.FormatTextOnly
}
