package revision

import "encoding/json"

// HistoryView builds the ordered iteration history for an analysis type:
// one entry per round, judge results nullable for unjudged rounds. Content
// predating the engine (no versioned keys) renders as a single round-0
// entry from the alias plus the unversioned judge key when present.
func HistoryView(analyses map[string]json.RawMessage, analysisType string) ([]RoundEntry, error) {
	alias, err := Alias(analyses, analysisType)
	if err != nil {
		return nil, err
	}
	if alias == nil {
		return nil, ErrNoContent
	}

	if _, versioned := analyses[DraftKey(analysisType, 0)]; !versioned && alias.Round == nil {
		judge, err := getJudge(analyses, LegacyJudgeKey(analysisType))
		if err != nil {
			return nil, err
		}
		return []RoundEntry{{Round: 0, Draft: alias.Content, Judge: judge}}, nil
	}

	latest := CurrentRound(analyses, analysisType)
	entries := make([]RoundEntry, 0, latest+1)
	for r := 0; r <= latest; r++ {
		entry := RoundEntry{Round: r}
		draft, err := getAnalysis(analyses, DraftKey(analysisType, r))
		if err != nil {
			return nil, err
		}
		if draft != nil {
			entry.Draft = draft.Content
		} else if r == latest {
			entry.Draft = alias.Content
		}
		judge, err := getJudge(analyses, JudgeKey(analysisType, r))
		if err != nil {
			return nil, err
		}
		entry.Judge = judge
		entries = append(entries, entry)
	}
	return entries, nil
}

// EditHistoryView lists the edits of the current round in order, empty when
// the round has no edits yet.
func EditHistoryView(analyses map[string]json.RawMessage, analysisType string) ([]EditEntry, error) {
	alias, err := Alias(analyses, analysisType)
	if err != nil {
		return nil, err
	}
	if alias == nil {
		return nil, ErrNoContent
	}

	latest, ok := CurrentEdit(analyses, analysisType)
	if !ok {
		return []EditEntry{}, nil
	}
	round := CurrentRound(analyses, analysisType)

	entries := make([]EditEntry, 0, latest+1)
	for e := 0; e <= latest; e++ {
		edit, err := getAnalysis(analyses, EditKey(analysisType, round, e))
		if err != nil {
			return nil, err
		}
		entry := EditEntry{Edit: e}
		if edit != nil {
			entry.Content = edit.Content
			entry.Source = edit.Source
			entry.CreatedAt = edit.CreatedAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
