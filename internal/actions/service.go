// Package actions implements the lifecycle operations over the action state
// document and the transcript record store. Handlers validate preconditions
// synchronously; anything that talks to an external collaborator runs inside
// a background job.
package actions

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/jobs"
	"copydesk/internal/lifecycle"
	"copydesk/internal/logging"
	"copydesk/internal/records"
	"copydesk/internal/revision"
	"copydesk/internal/statestore"
)

// ContentGenerator produces analysis drafts from transcripts.
type ContentGenerator interface {
	Generate(ctx context.Context, transcript, analysisType string) (string, error)
	Rewrite(ctx context.Context, transcript, previousDraft string, feedback revision.JudgeResult) (string, error)
}

// Judge scores a draft and returns structured feedback. The payload shape is
// stable but its contents are collaborator-defined and stored as-is.
type Judge interface {
	Score(ctx context.Context, draft string) (revision.JudgeResult, error)
}

// VisualClassifier decides the render format for a draft.
type VisualClassifier interface {
	Classify(ctx context.Context, draft string) (string, error)
}

// Render formats returned by the classifier.
const (
	FormatCarousel = "carousel"
	FormatTextOnly = "text_only"
)

// Slide is one rendered carousel page.
type Slide struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// RenderResult is the render pipeline's output for a carousel.
type RenderResult struct {
	PDFPath        string   `json:"pdf_path"`
	ThumbnailPaths []string `json:"thumbnail_paths,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// RenderPipeline turns slide data into publishable assets.
type RenderPipeline interface {
	Render(ctx context.Context, slides []Slide, template string) (RenderResult, error)
}

// Service coordinates lifecycle operations. A single mutex serializes every
// read-modify-write of the state document, which keeps the whole-document
// replace safe under the single-writer usage contract.
type Service struct {
	cfg        *config.Config
	state      *statestore.Store
	records    *records.Store
	runner     *jobs.Runner
	generator  ContentGenerator
	judge      Judge
	classifier VisualClassifier
	renderer   RenderPipeline
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

// Collaborators bundles the external interfaces the service consumes.
type Collaborators struct {
	Generator  ContentGenerator
	Judge      Judge
	Classifier VisualClassifier
	Renderer   RenderPipeline
}

// Option customizes service construction.
type Option func(*Service)

// WithClock overrides the timestamp source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the lifecycle service.
func NewService(
	cfg *config.Config,
	state *statestore.Store,
	recs *records.Store,
	runner *jobs.Runner,
	collab Collaborators,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		cfg:        cfg,
		state:      state,
		records:    recs,
		runner:     runner,
		generator:  collab.Generator,
		judge:      collab.Judge,
		classifier: collab.Classifier,
		renderer:   collab.Renderer,
		logger:     logging.WithComponent(logger, "actions"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutate performs one serialized read-modify-write of the state document.
// Legacy status vocabulary is migrated on every load so older documents
// normalize transparently.
func (s *Service) mutate(fn func(doc *lifecycle.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.state.Load()
	if err != nil {
		return err
	}
	if lifecycle.Migrate(doc) {
		s.logger.Info("migrated legacy action statuses")
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.state.Save(doc)
}

// snapshot returns the document after migration. The file is only rewritten
// when migration actually changed something, so read-only polls leave the
// document untouched.
func (s *Service) snapshot() (*lifecycle.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.state.Load()
	if err != nil {
		return nil, err
	}
	if lifecycle.Migrate(doc) {
		s.logger.Info("migrated legacy action statuses")
		if err := s.state.Save(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Document returns the current migrated state document.
func (s *Service) Document() (*lifecycle.Document, error) {
	return s.snapshot()
}

// loadRecord fetches the transcript record behind an action and verifies the
// analysis type has content.
func (s *Service) loadRecord(ctx context.Context, id lifecycle.ID) (*records.Record, error) {
	rec, err := s.records.Get(ctx, id.TranscriptID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, lifecycle.NotFoundf("transcript %s not found", id.TranscriptID)
	}
	alias, err := revision.Alias(rec.Analyses, id.AnalysisType)
	if err != nil {
		return nil, err
	}
	if alias == nil {
		return nil, lifecycle.NotFoundf("transcript %s has no %s analysis", id.TranscriptID, id.AnalysisType)
	}
	return rec, nil
}

// typeEntry resolves the registry entry for an action's analysis type.
func (s *Service) typeEntry(id lifecycle.ID) (config.AnalysisType, error) {
	entry, ok := s.cfg.TypeByName(id.AnalysisType)
	if !ok {
		return config.AnalysisType{}, lifecycle.Validationf("unknown analysis type %q", id.AnalysisType)
	}
	return entry, nil
}

func cloneAction(action *lifecycle.Action) lifecycle.Action {
	out := *action
	if action.VisualData != nil {
		out.VisualData = append(json.RawMessage(nil), action.VisualData...)
	}
	return out
}
