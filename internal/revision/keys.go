package revision

import (
	"encoding/json"
	"fmt"
)

// Key layout per analysis type:
//
//	{type}                 alias: current content + bookkeeping
//	{type}_{r}             round r draft
//	{type}_judge_{r}       judge result for round r
//	{type}_{r}_{e}         edit e of round r
//	{type}_judge           unversioned judge key (pre-versioning content)

// AliasKey returns the unsuffixed, always-current analysis key.
func AliasKey(analysisType string) string {
	return analysisType
}

// DraftKey returns the draft key for a round.
func DraftKey(analysisType string, round int) string {
	return fmt.Sprintf("%s_%d", analysisType, round)
}

// JudgeKey returns the judge key for a round.
func JudgeKey(analysisType string, round int) string {
	return fmt.Sprintf("%s_judge_%d", analysisType, round)
}

// LegacyJudgeKey returns the unversioned judge key used before rounds existed.
func LegacyJudgeKey(analysisType string) string {
	return analysisType + "_judge"
}

// EditKey returns the edit key within a round.
func EditKey(analysisType string, round, edit int) string {
	return fmt.Sprintf("%s_%d_%d", analysisType, round, edit)
}

func getAnalysis(analyses map[string]json.RawMessage, key string) (*Analysis, error) {
	raw, ok := analyses[key]
	if !ok {
		return nil, nil
	}
	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode analysis key %q: %w", key, err)
	}
	return &a, nil
}

func getJudge(analyses map[string]json.RawMessage, key string) (*JudgeResult, error) {
	raw, ok := analyses[key]
	if !ok {
		return nil, nil
	}
	var j JudgeResult
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode judge key %q: %w", key, err)
	}
	return &j, nil
}

func putJSON(analyses map[string]json.RawMessage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	analyses[key] = raw
	return nil
}

func intPtr(v int) *int { return &v }
