package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var typeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validate checks the configuration for contradictions a running daemon
// could not work around.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir is required")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		problems = append(problems, "paths.api_bind is required")
	}

	if len(c.AnalysisTypes) == 0 {
		problems = append(problems, "at least one analysis type must be registered")
	}
	seen := map[string]struct{}{}
	for _, at := range c.AnalysisTypes {
		name := strings.TrimSpace(at.Name)
		if name == "" {
			problems = append(problems, "analysis type with empty name")
			continue
		}
		if !typeNamePattern.MatchString(name) {
			problems = append(problems, fmt.Sprintf("analysis type %q contains invalid characters", name))
		}
		if strings.Contains(name, "--") {
			problems = append(problems, fmt.Sprintf("analysis type %q may not contain the id separator", name))
		}
		if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Sprintf("analysis type %q registered twice", name))
		}
		seen[name] = struct{}{}
	}

	if tpl := strings.TrimSpace(c.Visuals.DefaultTemplate); tpl != "" {
		if _, ok := c.TemplateByName(tpl); !ok {
			problems = append(problems, fmt.Sprintf("visuals.default_template %q is not a registered template", tpl))
		}
	}
	if c.Visuals.MaxSlides < 2 {
		problems = append(problems, "visuals.max_slides must be at least 2")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
