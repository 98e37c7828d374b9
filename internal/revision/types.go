package revision

import "time"

// Analysis is the stored shape of one analysis key: the alias, a round
// draft, or an edit. The alias additionally carries the bookkeeping fields
// (_round, _edit, _history) the engine maintains.
type Analysis struct {
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`

	Round   *int     `json:"_round,omitempty"`
	Edit    *int     `json:"_edit,omitempty"`
	History *History `json:"_history,omitempty"`
}

// History accumulates the judge score of every completed round in order.
type History struct {
	Scores []Score `json:"scores"`
}

// Score is one appended history entry, tagged with the round it judged.
type Score struct {
	Round    int       `json:"round"`
	Overall  float64   `json:"overall"`
	JudgedAt time.Time `json:"judged_at,omitzero"`
}

// JudgeResult is the collaborator-defined judge payload. The shape is
// stable but the contents are opaque to this engine: criteria sub-scores,
// strengths and the rewritten hook are stored and served as-is.
type JudgeResult struct {
	Overall       float64            `json:"overall"`
	Criteria      map[string]float64 `json:"criteria,omitempty"`
	Improvements  []string           `json:"improvements,omitempty"`
	Strengths     []string           `json:"strengths,omitempty"`
	RewrittenHook string             `json:"rewritten_hook,omitempty"`
	JudgedAt      time.Time          `json:"judged_at,omitzero"`
}

// RoundEntry is one row of the iteration history view.
type RoundEntry struct {
	Round int
	Draft string
	Judge *JudgeResult
}

// EditEntry is one row of the edit history view.
type EditEntry struct {
	Edit      int
	Content   string
	Source    string
	CreatedAt time.Time
}
