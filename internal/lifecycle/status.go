package lifecycle

import "strings"

// Status represents the lifecycle state of an action.
type Status string

const (
	StatusNew    Status = "new"
	StatusStaged Status = "staged"
	StatusReady  Status = "ready"
	StatusDone   Status = "done"
	StatusSkip   Status = "skip"
)

var allStatuses = []Status{StatusNew, StatusStaged, StatusReady, StatusDone, StatusSkip}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Forward transitions. Skip is handled separately because it is reachable
// from every non-done status; a staged→staged re-stage is idempotent.
var transitions = map[Status]map[Status]struct{}{
	StatusNew:    {StatusStaged: {}, StatusDone: {}},
	StatusStaged: {StatusStaged: {}, StatusReady: {}, StatusDone: {}},
	StatusReady:  {StatusStaged: {}, StatusDone: {}},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether from→to is a legal forward transition.
func CanTransition(from, to Status) bool {
	if to == StatusSkip {
		return from != StatusDone && from != StatusSkip
	}
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusSkip
}

// Active reports whether the action still appears in a work list.
func (s Status) Active() bool {
	return s == StatusNew || s == StatusStaged || s == StatusReady
}

// VisualStatus is the independent sub-state of the visual render pipeline.
type VisualStatus string

const (
	VisualNone       VisualStatus = "none"
	VisualGenerating VisualStatus = "generating"
	VisualReady      VisualStatus = "ready"
	VisualFailed     VisualStatus = "failed"
	VisualTextOnly   VisualStatus = "text_only"
	VisualStale      VisualStatus = "stale"
)
