package testsupport

import (
	"path/filepath"
	"testing"

	"copydesk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAnalysisTypes replaces the analysis type registry on the test config.
func WithAnalysisTypes(types ...config.AnalysisType) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AnalysisTypes = types
	}
}

// WithDestinations replaces the destination mapping on the test config.
func WithDestinations(dests map[string]string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Destinations = dests
	}
}
