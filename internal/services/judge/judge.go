// Package judge scores drafts with the quality-judging model. The structured
// payload (criteria sub-scores, strengths, rewritten hook) is model-defined;
// this package validates only the shape and stores the rest as-is.
package judge

import (
	"context"
	"fmt"
	"time"

	"copydesk/internal/revision"
	"copydesk/internal/services/llm"
)

const systemPrompt = "You are a strict content reviewer. Score the draft and respond with JSON only: " +
	`{"overall": <0-10>, "criteria": {"hook": <0-10>, "clarity": <0-10>, "specificity": <0-10>}, ` +
	`"improvements": ["..."], "strengths": ["..."], "rewritten_hook": "..."} ` +
	"Improvements must be concrete edits, not generalities."

// Service drives the judging model.
type Service struct {
	client *llm.Client
	now    func() time.Time
}

// New constructs the judge around an LLM client.
func New(client *llm.Client) *Service {
	return &Service{client: client, now: time.Now}
}

// Score asks the model to evaluate one draft.
func (s *Service) Score(ctx context.Context, draft string) (revision.JudgeResult, error) {
	var result revision.JudgeResult
	payload, err := s.client.CompleteJSON(ctx, systemPrompt, draft)
	if err != nil {
		return result, fmt.Errorf("judge: %w", err)
	}
	if err := llm.DecodeJSON(payload, &result); err != nil {
		return result, fmt.Errorf("judge: %w", err)
	}
	if result.Overall < 0 {
		result.Overall = 0
	}
	if result.Overall > 10 {
		result.Overall = 10
	}
	result.JudgedAt = s.now().UTC()
	return result, nil
}
