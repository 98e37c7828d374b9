package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
	APIBind   string `toml:"api_bind"`
}

// Logging controls log verbosity and output format.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LLM holds settings for a chat-completion collaborator.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Visuals configures the classifier and the external render pipeline.
type Visuals struct {
	RendererURL     string `toml:"renderer_url"`
	DefaultTemplate string `toml:"default_template"`
	MaxSlides       int    `toml:"max_slides"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Template describes one registered slide template.
type Template struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// AnalysisType is a registry entry for one kind of transcript analysis.
// AutoJudge marks types eligible for the automated iterate loop; Internal
// types feed other analyses and never surface in user-facing listings.
type AnalysisType struct {
	Name        string `toml:"name"`
	DisplayName string `toml:"display_name"`
	AutoJudge   bool   `toml:"auto_judge"`
	Internal    bool   `toml:"internal"`
}

// Config is the root configuration object, constructed once at startup and
// passed by reference into the components that need it.
type Config struct {
	Paths         Paths             `toml:"paths"`
	Logging       Logging           `toml:"logging"`
	Generator     LLM               `toml:"generator"`
	Judge         LLM               `toml:"judge"`
	Visuals       Visuals           `toml:"visuals"`
	Templates     []Template        `toml:"templates"`
	AnalysisTypes []AnalysisType    `toml:"analysis_types"`
	Destinations  map[string]string `toml:"destinations"`
}

// DefaultConfigPath returns the expected config file location.
func DefaultConfigPath() string {
	return "~/.config/copydesk/config.toml"
}

// Load reads configuration from path (or the default location when empty).
// A missing file yields the built-in defaults. The returned string is the
// resolved path that was consulted.
func Load(path string) (*Config, string, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultConfigPath()
	}
	resolved = ExpandPath(resolved)

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := cfg.normalize(); err != nil {
				return nil, resolved, err
			}
			return &cfg, resolved, nil
		}
		return nil, resolved, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, resolved, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, err
	}
	return &cfg, resolved, nil
}

// WriteSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	resolved := ExpandPath(strings.TrimSpace(path))
	if resolved == "" {
		return errors.New("config path required")
	}
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config already exists at %s", resolved)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || !strings.HasPrefix(trimmed, "~") {
		return trimmed
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return trimmed
	}
	if trimmed == "~" {
		return home
	}
	if strings.HasPrefix(trimmed, "~/") {
		return filepath.Join(home, trimmed[2:])
	}
	return trimmed
}

// StateFilePath is the action state document location.
func (c *Config) StateFilePath() string {
	return filepath.Join(c.Paths.DataDir, "state.json")
}

// RecordsDBPath is the transcript record store location.
func (c *Config) RecordsDBPath() string {
	return filepath.Join(c.Paths.DataDir, "records.db")
}

// LockFilePath is the daemon instance lock location.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.DataDir, "copydesk.lock")
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// TypeByName returns the registry entry for an analysis type.
func (c *Config) TypeByName(name string) (AnalysisType, bool) {
	for _, at := range c.AnalysisTypes {
		if at.Name == name {
			return at, true
		}
	}
	return AnalysisType{}, false
}

// UserFacingTypes returns registry entries excluding internal types.
func (c *Config) UserFacingTypes() []AnalysisType {
	out := make([]AnalysisType, 0, len(c.AnalysisTypes))
	for _, at := range c.AnalysisTypes {
		if at.Internal {
			continue
		}
		out = append(out, at)
	}
	return out
}

// TemplateByName returns the registered template entry.
func (c *Config) TemplateByName(name string) (Template, bool) {
	for _, tpl := range c.Templates {
		if tpl.Name == name {
			return tpl, true
		}
	}
	return Template{}, false
}

// JudgeLLM returns the judge settings with generator credentials as fallback.
func (c *Config) JudgeLLM() LLM {
	j := c.Judge
	if j.APIKey == "" {
		j.APIKey = c.Generator.APIKey
	}
	if j.BaseURL == "" {
		j.BaseURL = c.Generator.BaseURL
	}
	if j.Model == "" {
		j.Model = c.Generator.Model
	}
	if j.TimeoutSeconds == 0 {
		j.TimeoutSeconds = c.Generator.TimeoutSeconds
	}
	return j
}
