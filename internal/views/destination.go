package views

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"copydesk/internal/config"
)

var titleCaser = cases.Title(language.English)

// Destination resolves the posting destination label for an analysis type.
// Precedence: an exact type mapping wins over a glob pattern, which wins over
// the plain "*" catch-all. With no mapping at all the type name itself is
// title-cased into a label.
func Destination(cfg *config.Config, analysisType string) string {
	if dest, ok := cfg.Destinations[analysisType]; ok {
		return dest
	}

	// Longest matching glob wins so overlapping patterns resolve the same
	// way every call.
	var fallback, globDest, globPattern string
	for pattern, dest := range cfg.Destinations {
		if pattern == "*" {
			fallback = dest
			continue
		}
		if !strings.ContainsAny(pattern, "*?[") {
			continue
		}
		matched, err := path.Match(pattern, analysisType)
		if err != nil || !matched {
			continue
		}
		if len(pattern) > len(globPattern) || (len(pattern) == len(globPattern) && pattern < globPattern) {
			globPattern, globDest = pattern, dest
		}
	}
	if globPattern != "" {
		return globDest
	}
	if fallback != "" {
		return fallback
	}
	return titleCaser.String(strings.ReplaceAll(analysisType, "_", " "))
}
