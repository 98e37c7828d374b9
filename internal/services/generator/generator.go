// Package generator produces and rewrites analysis drafts through the
// chat-completion client.
package generator

import (
	"context"
	"fmt"
	"strings"

	"copydesk/internal/revision"
	"copydesk/internal/services/llm"
)

// Service drives the content-generation model.
type Service struct {
	client *llm.Client
}

// New constructs the generator around an LLM client.
func New(client *llm.Client) *Service {
	return &Service{client: client}
}

// Generate produces a fresh draft for one analysis type.
func (s *Service) Generate(ctx context.Context, transcript, analysisType string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("generate %s: transcript required", analysisType)
	}
	draft, err := s.client.CompleteText(ctx, generatePrompt(analysisType), transcript)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", analysisType, err)
	}
	return strings.TrimSpace(draft), nil
}

// Rewrite produces the next-round draft from the previous draft and the
// judge's feedback.
func (s *Service) Rewrite(ctx context.Context, transcript, previousDraft string, feedback revision.JudgeResult) (string, error) {
	previousDraft = strings.TrimSpace(previousDraft)
	if previousDraft == "" {
		return "", fmt.Errorf("rewrite: previous draft required")
	}
	draft, err := s.client.CompleteText(ctx, rewriteSystemPrompt, rewriteUserPrompt(transcript, previousDraft, feedback))
	if err != nil {
		return "", fmt.Errorf("rewrite: %w", err)
	}
	return strings.TrimSpace(draft), nil
}
