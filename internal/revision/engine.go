// Package revision is the versioned iteration engine: pure functions over a
// transcript record's analysis key map. Rounds capture automated draft+judge
// cycles, edits capture manual revisions within a round, and the alias key
// always mirrors the highest edit of the highest round.
package revision

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNoContent is returned when an operation targets an analysis type that
// has no alias content at all.
var ErrNoContent = errors.New("analysis has no content")

// Alias decodes the alias entry for an analysis type, or nil when absent.
func Alias(analyses map[string]json.RawMessage, analysisType string) (*Analysis, error) {
	return getAnalysis(analyses, AliasKey(analysisType))
}

// CurrentRound returns the round the alias points at. Content predating the
// engine (no bookkeeping fields) reads as round 0 without any backfill.
func CurrentRound(analyses map[string]json.RawMessage, analysisType string) int {
	alias, err := Alias(analyses, analysisType)
	if err != nil || alias == nil || alias.Round == nil {
		return 0
	}
	return *alias.Round
}

// CurrentEdit returns the latest edit of the current round, or false when
// the round has no edits yet.
func CurrentEdit(analyses map[string]json.RawMessage, analysisType string) (int, bool) {
	alias, err := Alias(analyses, analysisType)
	if err != nil || alias == nil || alias.Edit == nil {
		return 0, false
	}
	return *alias.Edit, true
}

// LatestScore returns the most recent score-history entry.
func LatestScore(analyses map[string]json.RawMessage, analysisType string) (Score, bool) {
	alias, err := Alias(analyses, analysisType)
	if err != nil || alias == nil || alias.History == nil || len(alias.History.Scores) == 0 {
		return Score{}, false
	}
	return alias.History.Scores[len(alias.History.Scores)-1], true
}

// RoundCount returns the number of rounds the analysis has, zero when the
// type has no content.
func RoundCount(analyses map[string]json.RawMessage, analysisType string) int {
	alias, err := Alias(analyses, analysisType)
	if err != nil || alias == nil {
		return 0
	}
	return CurrentRound(analyses, analysisType) + 1
}

// InitAnalysis writes freshly generated content as round 0: the alias with
// bookkeeping fields plus the round-0 draft key, so content born under this
// engine satisfies key contiguity from the start.
func InitAnalysis(analyses map[string]json.RawMessage, analysisType, content string, now time.Time) error {
	now = now.UTC()
	alias := Analysis{
		Content:   content,
		CreatedAt: now,
		Round:     intPtr(0),
		History:   &History{Scores: []Score{}},
	}
	if err := putJSON(analyses, AliasKey(analysisType), alias); err != nil {
		return err
	}
	draft := Analysis{Content: content, Source: "generated", CreatedAt: now}
	return putJSON(analyses, DraftKey(analysisType, 0), draft)
}

// EnsureStaged guarantees the current round has an edit-0 entry, creating it
// as a copy of the round's draft when absent. A missing round draft key
// (pre-versioning content) is materialized from the alias at the same time
// so the draft-before-edit invariant holds. Idempotent.
func EnsureStaged(analyses map[string]json.RawMessage, analysisType string, now time.Time) (round int, created bool, err error) {
	alias, err := Alias(analyses, analysisType)
	if err != nil {
		return 0, false, err
	}
	if alias == nil {
		return 0, false, ErrNoContent
	}
	now = now.UTC()
	round = CurrentRound(analyses, analysisType)

	draftKey := DraftKey(analysisType, round)
	draft, err := getAnalysis(analyses, draftKey)
	if err != nil {
		return 0, false, err
	}
	if draft == nil {
		draft = &Analysis{Content: alias.Content, Source: AliasKey(analysisType), CreatedAt: now}
		if err := putJSON(analyses, draftKey, draft); err != nil {
			return 0, false, err
		}
	}

	editKey := EditKey(analysisType, round, 0)
	if _, exists := analyses[editKey]; exists {
		return round, false, nil
	}

	edit := Analysis{Content: draft.Content, Source: draftKey, CreatedAt: now}
	if err := putJSON(analyses, editKey, edit); err != nil {
		return 0, false, err
	}

	alias.Round = intPtr(round)
	alias.Edit = intPtr(0)
	alias.Content = draft.Content
	if err := putJSON(analyses, AliasKey(analysisType), alias); err != nil {
		return 0, false, err
	}
	return round, true, nil
}

// SaveEdit appends a manual revision to the current round and mirrors it
// into the alias.
func SaveEdit(analyses map[string]json.RawMessage, analysisType, text string, now time.Time) (int, error) {
	alias, err := Alias(analyses, analysisType)
	if err != nil {
		return 0, err
	}
	if alias == nil {
		return 0, ErrNoContent
	}
	now = now.UTC()
	round := CurrentRound(analyses, analysisType)

	next := 0
	source := DraftKey(analysisType, round)
	if current, ok := CurrentEdit(analyses, analysisType); ok {
		next = current + 1
		source = EditKey(analysisType, round, current)
	}

	edit := Analysis{Content: text, Source: source, CreatedAt: now}
	if err := putJSON(analyses, EditKey(analysisType, round, next), edit); err != nil {
		return 0, err
	}

	alias.Content = text
	alias.Round = intPtr(round)
	alias.Edit = intPtr(next)
	if err := putJSON(analyses, AliasKey(analysisType), alias); err != nil {
		return 0, err
	}
	return next, nil
}

// NewRound records one completed draft+judge cycle: the judge result is
// attached to the round whose content it scored, the rewritten draft opens
// the next round, and the overall score is appended to the alias history.
// The new round starts with no edit keys.
func NewRound(analyses map[string]json.RawMessage, analysisType, draftText string, judge JudgeResult, now time.Time) (int, error) {
	alias, err := Alias(analyses, analysisType)
	if err != nil {
		return 0, err
	}
	if alias == nil {
		return 0, ErrNoContent
	}
	now = now.UTC()
	round := CurrentRound(analyses, analysisType)

	// Pre-versioning content has no round draft key; materialize it before
	// the judge key so a judge key never exists without its draft.
	judgedKey := DraftKey(analysisType, round)
	if _, exists := analyses[judgedKey]; !exists {
		backfill := Analysis{Content: alias.Content, Source: AliasKey(analysisType), CreatedAt: now}
		if err := putJSON(analyses, judgedKey, backfill); err != nil {
			return 0, err
		}
	}
	if edit, ok := CurrentEdit(analyses, analysisType); ok {
		judgedKey = EditKey(analysisType, round, edit)
	}

	if judge.JudgedAt.IsZero() {
		judge.JudgedAt = now
	}
	if err := putJSON(analyses, JudgeKey(analysisType, round), judge); err != nil {
		return 0, err
	}

	next := round + 1
	draft := Analysis{Content: draftText, Source: judgedKey, CreatedAt: now}
	if err := putJSON(analyses, DraftKey(analysisType, next), draft); err != nil {
		return 0, err
	}

	if alias.History == nil {
		alias.History = &History{}
	}
	alias.History.Scores = append(alias.History.Scores, Score{
		Round:    round,
		Overall:  judge.Overall,
		JudgedAt: judge.JudgedAt,
	})
	alias.Content = draftText
	alias.Round = intPtr(next)
	alias.Edit = nil
	if err := putJSON(analyses, AliasKey(analysisType), alias); err != nil {
		return 0, err
	}
	return next, nil
}
