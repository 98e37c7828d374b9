package testsupport

import (
	"context"
	"fmt"
	"sync"

	"copydesk/internal/actions"
	"copydesk/internal/revision"
)

// FakeGenerator is a scriptable content-generation collaborator.
type FakeGenerator struct {
	mu sync.Mutex

	GenerateText string
	GenerateErr  error
	RewriteText  string
	RewriteErr   error

	// GenerateHook runs before each Generate call, outside the lock; tests
	// use it to hold a job open.
	GenerateHook func()

	GenerateCalls int
	RewriteCalls  int
}

func (f *FakeGenerator) Generate(_ context.Context, _, analysisType string) (string, error) {
	if f.GenerateHook != nil {
		f.GenerateHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GenerateCalls++
	if f.GenerateErr != nil {
		return "", f.GenerateErr
	}
	if f.GenerateText != "" {
		return f.GenerateText, nil
	}
	return fmt.Sprintf("generated %s draft", analysisType), nil
}

func (f *FakeGenerator) Rewrite(_ context.Context, _, previousDraft string, _ revision.JudgeResult) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RewriteCalls++
	if f.RewriteErr != nil {
		return "", f.RewriteErr
	}
	if f.RewriteText != "" {
		return f.RewriteText, nil
	}
	return "rewritten: " + previousDraft, nil
}

// FakeJudge returns a fixed score.
type FakeJudge struct {
	Result revision.JudgeResult
	Err    error

	// ScoreHook runs before each Score call, outside the lock; tests use it
	// to hold an iterate job open.
	ScoreHook func()

	mu    sync.Mutex
	Calls int
}

func (f *FakeJudge) Score(context.Context, string) (revision.JudgeResult, error) {
	if f.ScoreHook != nil {
		f.ScoreHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return revision.JudgeResult{}, f.Err
	}
	result := f.Result
	if result.Overall == 0 {
		result.Overall = 7.0
	}
	return result, nil
}

// FakeClassifier returns a fixed render format.
type FakeClassifier struct {
	Format string
	Err    error
}

func (f *FakeClassifier) Classify(context.Context, string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.Format == "" {
		return actions.FormatCarousel, nil
	}
	return f.Format, nil
}

// FakeRenderer records render requests and returns a fixed result.
type FakeRenderer struct {
	Result actions.RenderResult
	Err    error

	mu       sync.Mutex
	Slides   []actions.Slide
	Template string
	Calls    int
}

func (f *FakeRenderer) Render(_ context.Context, slides []actions.Slide, template string) (actions.RenderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Slides = slides
	f.Template = template
	if f.Err != nil {
		return actions.RenderResult{}, f.Err
	}
	result := f.Result
	if result.PDFPath == "" {
		result.PDFPath = "/tmp/render/" + template + ".pdf"
	}
	return result, nil
}

// Collaborators bundles default fakes for service construction.
func Collaborators(gen *FakeGenerator, judge *FakeJudge, classifier *FakeClassifier, renderer *FakeRenderer) actions.Collaborators {
	if gen == nil {
		gen = &FakeGenerator{}
	}
	if judge == nil {
		judge = &FakeJudge{}
	}
	if classifier == nil {
		classifier = &FakeClassifier{}
	}
	if renderer == nil {
		renderer = &FakeRenderer{}
	}
	return actions.Collaborators{
		Generator:  gen,
		Judge:      judge,
		Classifier: classifier,
		Renderer:   renderer,
	}
}
