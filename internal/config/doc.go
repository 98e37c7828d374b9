// Package config loads and validates the copydesk TOML configuration,
// including the analysis-type registry, template registry, and queue
// destination mapping. A Config is constructed once at startup and passed
// by reference into the components that consume it.
package config
