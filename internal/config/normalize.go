package config

import "strings"

// normalize expands paths and fills gaps a partial config file leaves behind.
func (c *Config) normalize() error {
	c.Paths.DataDir = ExpandPath(c.Paths.DataDir)
	c.Paths.LogDir = ExpandPath(c.Paths.LogDir)
	c.Paths.OutputDir = ExpandPath(c.Paths.OutputDir)
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)

	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Generator.BaseURL == "" {
		c.Generator.BaseURL = defaultGeneratorURL
	}
	if c.Generator.TimeoutSeconds <= 0 {
		c.Generator.TimeoutSeconds = defaultLLMTimeout
	}
	if c.Visuals.MaxSlides <= 0 {
		c.Visuals.MaxSlides = defaultMaxSlides
	}
	if c.Visuals.TimeoutSeconds <= 0 {
		c.Visuals.TimeoutSeconds = defaultVisualsTimeout
	}
	if c.Visuals.DefaultTemplate == "" && len(c.Templates) > 0 {
		c.Visuals.DefaultTemplate = c.Templates[0].Name
	}
	if c.Destinations == nil {
		c.Destinations = map[string]string{}
	}

	for i := range c.AnalysisTypes {
		c.AnalysisTypes[i].Name = strings.TrimSpace(c.AnalysisTypes[i].Name)
		if c.AnalysisTypes[i].DisplayName == "" {
			c.AnalysisTypes[i].DisplayName = c.AnalysisTypes[i].Name
		}
	}
	return nil
}
