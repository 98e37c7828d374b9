package actions

import (
	"context"
	"errors"

	"copydesk/internal/lifecycle"
	"copydesk/internal/revision"
)

// Iterations returns the ordered round history for one action.
func (s *Service) Iterations(ctx context.Context, id lifecycle.ID) ([]revision.RoundEntry, error) {
	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := revision.HistoryView(rec.Analyses, id.AnalysisType)
	if errors.Is(err, revision.ErrNoContent) {
		return nil, lifecycle.NotFoundf("transcript %s has no %s analysis", id.TranscriptID, id.AnalysisType)
	}
	return entries, err
}

// EditHistory returns the current round's edits for one action.
func (s *Service) EditHistory(ctx context.Context, id lifecycle.ID) ([]revision.EditEntry, error) {
	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := revision.EditHistoryView(rec.Analyses, id.AnalysisType)
	if errors.Is(err, revision.ErrNoContent) {
		return nil, lifecycle.NotFoundf("transcript %s has no %s analysis", id.TranscriptID, id.AnalysisType)
	}
	return entries, err
}

// Slides previews the carousel slides the render job would produce from the
// action's current content.
func (s *Service) Slides(ctx context.Context, id lifecycle.ID) ([]Slide, error) {
	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	alias, err := revision.Alias(rec.Analyses, id.AnalysisType)
	if err != nil {
		return nil, err
	}
	return BuildSlides(alias.Content, s.cfg.Visuals.MaxSlides), nil
}
