package lifecycle

import (
	"regexp"
	"strings"
)

// Separator joins the transcript ID and analysis type inside an action ID.
// Neither component may contain it, which keeps parsing unambiguous.
const Separator = "--"

var componentPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ID identifies one (transcript, analysis type) pair.
type ID struct {
	TranscriptID string
	AnalysisType string
}

// NewID builds an action ID after validating both components.
func NewID(transcriptID, analysisType string) (ID, error) {
	id := ID{TranscriptID: transcriptID, AnalysisType: analysisType}
	if err := id.validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// ParseID splits a raw action ID into its components.
func ParseID(raw string) (ID, error) {
	trimmed := strings.TrimSpace(raw)
	before, after, found := strings.Cut(trimmed, Separator)
	if !found {
		return ID{}, Validationf("invalid action id %q: missing %q separator", raw, Separator)
	}
	id := ID{TranscriptID: before, AnalysisType: after}
	if err := id.validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

func (id ID) validate() error {
	for _, component := range []string{id.TranscriptID, id.AnalysisType} {
		if !componentPattern.MatchString(component) {
			return Validationf("invalid action id component %q", component)
		}
		if strings.Contains(component, Separator) {
			return Validationf("action id component %q may not contain %q", component, Separator)
		}
	}
	return nil
}

func (id ID) String() string {
	return id.TranscriptID + Separator + id.AnalysisType
}

// ValidTranscriptID reports whether s is acceptable as a bare transcript ID.
func ValidTranscriptID(s string) bool {
	return componentPattern.MatchString(s) && !strings.Contains(s, Separator)
}
