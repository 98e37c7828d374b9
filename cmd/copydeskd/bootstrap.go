package main

import (
	"log/slog"
	"path/filepath"

	"copydesk/internal/actions"
	"copydesk/internal/config"
	"copydesk/internal/logging"
	"copydesk/internal/services/generator"
	"copydesk/internal/services/judge"
	"copydesk/internal/services/llm"
	"copydesk/internal/services/visuals"
)

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stdout"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "copydeskd.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

func buildCollaborators(cfg *config.Config) actions.Collaborators {
	generatorClient := llm.NewClient(llmConfig(cfg.Generator))
	judgeClient := llm.NewClient(llmConfig(cfg.JudgeLLM()))

	// The classifier falls back to its paragraph heuristic when no
	// generator credentials are configured.
	var classifierClient *llm.Client
	if cfg.Generator.APIKey != "" {
		classifierClient = generatorClient
	}

	return actions.Collaborators{
		Generator:  generator.New(generatorClient),
		Judge:      judge.New(judgeClient),
		Classifier: visuals.NewClassifier(classifierClient),
		Renderer:   visuals.NewRenderer(cfg),
	}
}

func llmConfig(settings config.LLM) llm.Config {
	return llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		TimeoutSeconds: settings.TimeoutSeconds,
	}
}
