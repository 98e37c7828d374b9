package config

const (
	defaultDataDir         = "~/.local/share/copydesk"
	defaultLogDir          = "~/.local/share/copydesk/logs"
	defaultOutputDir       = "~/copydesk/approved"
	defaultAPIBind         = "127.0.0.1:7587"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultGeneratorURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultGeneratorModel  = "google/gemini-3-flash-preview"
	defaultLLMTimeout      = 90
	defaultJudgeModel      = "anthropic/claude-sonnet-4.5"
	defaultTemplate        = "gradient"
	defaultMaxSlides       = 8
	defaultVisualsTimeout  = 120
	defaultDestinationGlob = "*"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
			APIBind:   defaultAPIBind,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Generator: LLM{
			BaseURL:        defaultGeneratorURL,
			Model:          defaultGeneratorModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Judge: LLM{
			Model: defaultJudgeModel,
		},
		Visuals: Visuals{
			DefaultTemplate: defaultTemplate,
			MaxSlides:       defaultMaxSlides,
			TimeoutSeconds:  defaultVisualsTimeout,
		},
		Templates: []Template{
			{Name: "gradient", Description: "Dark gradient carousel"},
			{Name: "minimal", Description: "White background, large type"},
			{Name: "mono", Description: "Monospace terminal look"},
		},
		AnalysisTypes: []AnalysisType{
			{Name: "linkedin_v2", DisplayName: "LinkedIn Post", AutoJudge: true},
			{Name: "blog_post", DisplayName: "Blog Post", AutoJudge: true},
			{Name: "quotes", DisplayName: "Pull Quotes"},
			{Name: "title_ideas", DisplayName: "Title Ideas"},
			{Name: "summary", DisplayName: "Summary", Internal: true},
		},
		Destinations: map[string]string{
			"linkedin_v2":          "LinkedIn",
			"blog_post":            "Blog",
			"title*":               "Planning",
			defaultDestinationGlob: "Drafts",
		},
	}
}
