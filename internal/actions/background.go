package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"copydesk/internal/jobs"
	"copydesk/internal/lifecycle"
	"copydesk/internal/logging"
	"copydesk/internal/revision"
)

// Iterate launches one automated draft+judge round in the background. The
// handler validates preconditions, records the in-flight flag and returns;
// the collaborator calls happen on the job goroutine.
func (s *Service) Iterate(ctx context.Context, id lifecycle.ID) (string, error) {
	entry, err := s.typeEntry(id)
	if err != nil {
		return "", err
	}
	if !entry.AutoJudge {
		return "", lifecycle.Validationf("%s is not an auto-judge type", id.AnalysisType)
	}
	if _, err := s.loadRecord(ctx, id); err != nil {
		return "", err
	}

	err = s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if action.Status != lifecycle.StatusStaged {
			return lifecycle.Conflictf("cannot iterate %s: status is %s, must be staged", id, action.Status)
		}
		if action.Iterating {
			return lifecycle.Conflictf("action %s is already iterating", id)
		}
		action.Iterating = true
		return nil
	})
	if err != nil {
		return "", err
	}

	jobID, err := s.runner.Start(ctx, id.String(), "iterate", func(jobCtx context.Context) {
		s.runIterate(jobCtx, id)
	})
	if err != nil {
		// Admission failed after the flag was set; roll it back so the
		// action is not wedged.
		s.clearIterating(id)
		if errors.Is(err, jobs.ErrScopeBusy) {
			return "", lifecycle.Conflictf("action %s already has a running job", id)
		}
		return "", err
	}
	return jobID, nil
}

// runIterate is the iterate job body: judge the current content, ask the
// generator for a rewritten draft and record the completed round. The
// in-flight flag is cleared on every exit path.
func (s *Service) runIterate(ctx context.Context, id lifecycle.ID) {
	logger := s.logger.With(logging.String(logging.FieldAction, id.String()))
	defer s.clearIterating(id)

	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		logger.Error("iterate: load record", logging.Error(err))
		return
	}
	alias, err := revision.Alias(rec.Analyses, id.AnalysisType)
	if err != nil || alias == nil {
		logger.Error("iterate: read alias", logging.Error(err))
		return
	}

	judgeResult, err := s.judge.Score(ctx, alias.Content)
	if err != nil {
		logger.Error("iterate: judge failed", logging.Error(err))
		return
	}
	draft, err := s.generator.Rewrite(ctx, rec.Transcript, alias.Content, judgeResult)
	if err != nil {
		logger.Error("iterate: rewrite failed", logging.Error(err))
		return
	}

	err = s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Get(id)
		if action == nil {
			return lifecycle.NotFoundf("action %s disappeared mid-job", id)
		}
		// Edits can land while the collaborators run; re-read the record at
		// write-back time so the round lands on the current key map instead
		// of erasing them.
		fresh, err := s.loadRecord(ctx, id)
		if err != nil {
			return err
		}
		round, err := revision.NewRound(fresh.Analyses, id.AnalysisType, draft, judgeResult, s.now())
		if err != nil {
			return err
		}
		if err := s.records.Put(ctx, fresh); err != nil {
			return fmt.Errorf("persist iterated record: %w", err)
		}
		action.StagedRound = round
		action.EditCount = 0
		return nil
	})
	if err != nil {
		logger.Error("iterate: record round", logging.Error(err))
		return
	}
	logger.Info("iterate round complete", logging.Float64("score", judgeResult.Overall))
}

func (s *Service) clearIterating(id lifecycle.ID) {
	err := s.mutate(func(doc *lifecycle.Document) error {
		if action := doc.Get(id); action != nil {
			action.Iterating = false
		}
		return nil
	})
	if err != nil {
		s.logger.Error("clear iterating flag",
			logging.String(logging.FieldAction, id.String()),
			logging.Error(err))
	}
}

// Render launches a visual render job with an explicit template. An empty
// template name selects the configured default.
func (s *Service) Render(ctx context.Context, id lifecycle.ID, template string) (string, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		template = s.cfg.Visuals.DefaultTemplate
	}
	if _, ok := s.cfg.TemplateByName(template); !ok {
		return "", lifecycle.Validationf("unknown template %q", template)
	}
	if _, err := s.loadRecord(ctx, id); err != nil {
		return "", err
	}

	var prevVisual lifecycle.VisualStatus
	err := s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if action.Status != lifecycle.StatusStaged && action.Status != lifecycle.StatusReady {
			return lifecycle.Conflictf("cannot render %s: status is %s, must be staged or ready", id, action.Status)
		}
		if action.VisualStatus == lifecycle.VisualGenerating {
			return lifecycle.Conflictf("action %s is already generating visuals", id)
		}
		prevVisual = action.VisualStatus
		action.VisualStatus = lifecycle.VisualGenerating
		return nil
	})
	if err != nil {
		return "", err
	}

	jobID, err := s.runner.Start(ctx, id.String(), "render", func(jobCtx context.Context) {
		s.runRender(jobCtx, id, template)
	})
	if err != nil {
		// No render was attempted; restore the previous visual state so a
		// refused request cannot clobber earlier assets.
		s.setVisualStatus(id, prevVisual, nil)
		if errors.Is(err, jobs.ErrScopeBusy) {
			return "", lifecycle.Conflictf("action %s already has a running job", id)
		}
		return "", err
	}
	return jobID, nil
}

// GenerateVisuals is Render with the configured default template.
func (s *Service) GenerateVisuals(ctx context.Context, id lifecycle.ID) (string, error) {
	return s.Render(ctx, id, "")
}

// runRender is the visual job body: classify the content, then either mark it
// text-only or hand slides to the render pipeline. Failures land in
// visual_status=failed with a diagnostic; the worker never crashes.
func (s *Service) runRender(ctx context.Context, id lifecycle.ID, template string) {
	logger := s.logger.With(logging.String(logging.FieldAction, id.String()))

	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		logger.Error("render: load record", logging.Error(err))
		s.setVisualStatus(id, lifecycle.VisualFailed, visualDiagnostic(err.Error()))
		return
	}
	alias, err := revision.Alias(rec.Analyses, id.AnalysisType)
	if err != nil || alias == nil {
		logger.Error("render: read alias", logging.Error(err))
		s.setVisualStatus(id, lifecycle.VisualFailed, visualDiagnostic("analysis content unavailable"))
		return
	}

	format, err := s.classifier.Classify(ctx, alias.Content)
	if err != nil {
		logger.Error("render: classify failed", logging.Error(err))
		s.setVisualStatus(id, lifecycle.VisualFailed, visualDiagnostic(err.Error()))
		return
	}
	if format == FormatTextOnly {
		s.setVisualStatus(id, lifecycle.VisualTextOnly, nil)
		logger.Info("render complete", logging.String("format", format))
		return
	}

	slides := BuildSlides(alias.Content, s.cfg.Visuals.MaxSlides)
	result, err := s.renderer.Render(ctx, slides, template)
	if err != nil {
		logger.Error("render: pipeline failed", logging.Error(err))
		s.setVisualStatus(id, lifecycle.VisualFailed, visualDiagnostic(err.Error()))
		return
	}
	if len(result.Errors) > 0 {
		logger.Error("render: pipeline reported errors", logging.Any("errors", result.Errors))
		s.setVisualStatus(id, lifecycle.VisualFailed, visualDiagnostic(strings.Join(result.Errors, "; ")))
		return
	}

	payload, err := json.Marshal(struct {
		Template string `json:"template"`
		RenderResult
	}{Template: template, RenderResult: result})
	if err != nil {
		s.setVisualStatus(id, lifecycle.VisualFailed, visualDiagnostic(err.Error()))
		return
	}
	s.setVisualStatus(id, lifecycle.VisualReady, payload)
	logger.Info("render complete",
		logging.String("format", format),
		logging.String("template", template),
		logging.Int("slides", len(slides)))
}

func (s *Service) setVisualStatus(id lifecycle.ID, status lifecycle.VisualStatus, data json.RawMessage) {
	err := s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Get(id)
		if action == nil {
			return nil
		}
		action.VisualStatus = status
		if data != nil {
			action.VisualData = data
		}
		return nil
	})
	if err != nil {
		s.logger.Error("set visual status",
			logging.String(logging.FieldAction, id.String()),
			logging.String("visual_status", string(status)),
			logging.Error(err))
	}
}

func visualDiagnostic(message string) json.RawMessage {
	payload, err := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: message})
	if err != nil {
		return nil
	}
	return payload
}

// Analyze generates fresh analyses for a transcript in the background. Types
// defaults to every user-facing registry entry. A transcript with an analyze
// job already in flight is refused with a conflict.
func (s *Service) Analyze(ctx context.Context, transcriptID string, types []string) (string, error) {
	if !lifecycle.ValidTranscriptID(transcriptID) {
		return "", lifecycle.Validationf("invalid transcript id %q", transcriptID)
	}
	if len(types) == 0 {
		for _, at := range s.cfg.UserFacingTypes() {
			types = append(types, at.Name)
		}
	}
	for _, name := range types {
		if _, ok := s.cfg.TypeByName(name); !ok {
			return "", lifecycle.Validationf("unknown analysis type %q", name)
		}
	}

	rec, err := s.records.Get(ctx, transcriptID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", lifecycle.NotFoundf("transcript %s not found", transcriptID)
	}
	if strings.TrimSpace(rec.Transcript) == "" {
		return "", lifecycle.Validationf("transcript %s has no text to analyze", transcriptID)
	}

	err = s.mutate(func(doc *lifecycle.Document) error {
		if _, inFlight := doc.Processing[transcriptID]; inFlight {
			return lifecycle.Conflictf("transcript %s already has an analyze job in flight", transcriptID)
		}
		doc.Processing[transcriptID] = &lifecycle.ProcessingEntry{
			Types:     append([]string(nil), types...),
			StartedAt: s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	jobID, err := s.runner.Start(ctx, transcriptID, "analyze", func(jobCtx context.Context) {
		s.runAnalyze(jobCtx, transcriptID, types)
	})
	if err != nil {
		s.clearProcessing(transcriptID)
		if errors.Is(err, jobs.ErrScopeBusy) {
			return "", lifecycle.Conflictf("transcript %s already has a running job", transcriptID)
		}
		return "", err
	}
	return jobID, nil
}

// runAnalyze generates each requested type in turn. Per-type failures are
// logged and skipped; the processing entry always clears.
func (s *Service) runAnalyze(ctx context.Context, transcriptID string, types []string) {
	logger := s.logger.With(logging.String("transcript", transcriptID))
	started := time.Now()
	defer s.clearProcessing(transcriptID)

	rec, err := s.records.Get(ctx, transcriptID)
	if err != nil || rec == nil {
		logger.Error("analyze: load record", logging.Error(err))
		return
	}

	generated := 0
	for _, analysisType := range types {
		content, err := s.generator.Generate(ctx, rec.Transcript, analysisType)
		if err != nil {
			logger.Error("analyze: generation failed",
				logging.String("type", analysisType),
				logging.Error(err))
			continue
		}
		if err := revision.InitAnalysis(rec.Analyses, analysisType, content, s.now()); err != nil {
			logger.Error("analyze: record analysis",
				logging.String("type", analysisType),
				logging.Error(err))
			continue
		}
		generated++
	}
	if generated == 0 {
		return
	}

	err = s.mutate(func(doc *lifecycle.Document) error {
		if err := s.records.Put(ctx, rec); err != nil {
			return fmt.Errorf("persist analyzed record: %w", err)
		}
		now := s.now().UTC()
		for _, analysisType := range types {
			if _, ok := rec.Analyses[analysisType]; !ok {
				continue
			}
			doc.Ensure(lifecycle.ID{TranscriptID: transcriptID, AnalysisType: analysisType}, now)
		}
		return nil
	})
	if err != nil {
		logger.Error("analyze: persist results", logging.Error(err))
		return
	}
	logger.Info("analyze complete",
		logging.Int("generated", generated),
		logging.Duration("elapsed", time.Since(started)))
}

func (s *Service) clearProcessing(transcriptID string) {
	err := s.mutate(func(doc *lifecycle.Document) error {
		delete(doc.Processing, transcriptID)
		return nil
	})
	if err != nil {
		s.logger.Error("clear processing entry",
			logging.String("transcript", transcriptID),
			logging.Error(err))
	}
}
