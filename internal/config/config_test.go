package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.APIBind != defaultAPIBind {
		t.Fatalf("api_bind = %q", cfg.Paths.APIBind)
	}
	if _, ok := cfg.TypeByName("linkedin_v2"); !ok {
		t.Fatal("default registry missing linkedin_v2")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[paths]\napi_bind = \"127.0.0.1:9999\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Fatalf("api_bind = %q", cfg.Paths.APIBind)
	}
	if cfg.Logging.Level != defaultLogLevel {
		t.Fatalf("level = %q, want default", cfg.Logging.Level)
	}
	if len(cfg.Templates) == 0 {
		t.Fatal("default templates should survive a partial file")
	}
}

func TestValidateRejectsSeparatorInTypeName(t *testing.T) {
	cfg := Default()
	cfg.AnalysisTypes = append(cfg.AnalysisTypes, AnalysisType{Name: "bad--name"})
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "separator") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateRejectsUnknownDefaultTemplate(t *testing.T) {
	cfg := Default()
	cfg.Visuals.DefaultTemplate = "sparkle"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown default template")
	}
}

func TestUserFacingTypesExcludesInternal(t *testing.T) {
	cfg := Default()
	for _, at := range cfg.UserFacingTypes() {
		if at.Internal {
			t.Fatalf("internal type %q leaked into user-facing list", at.Name)
		}
	}
}

func TestJudgeLLMFallsBackToGenerator(t *testing.T) {
	cfg := Default()
	cfg.Generator.APIKey = "sk-test"
	j := cfg.JudgeLLM()
	if j.APIKey != "sk-test" {
		t.Fatalf("judge api key = %q", j.APIKey)
	}
	if j.Model != defaultJudgeModel {
		t.Fatalf("judge model = %q", j.Model)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatal(err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
