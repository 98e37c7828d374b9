package lifecycle

import (
	"encoding/json"
	"time"
)

// Action is the per-(transcript, type) lifecycle record stored in the state
// document. Actions are created implicitly the first time an analysis record
// has no state entry and are never deleted, only transitioned to done/skip.
type Action struct {
	Status       Status          `json:"status"`
	VisualStatus VisualStatus    `json:"visual_status,omitempty"`
	StagedRound  int             `json:"staged_round,omitempty"`
	EditCount    int             `json:"edit_count,omitempty"`
	Iterating    bool            `json:"iterating,omitempty"`
	VisualData   json.RawMessage `json:"visual_data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	StagedAt     *time.Time      `json:"staged_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	PostedAt     *time.Time      `json:"posted_at,omitempty"`

	// ApprovedAt only occurs in documents written by the legacy status
	// vocabulary; Migrate folds it into StagedAt.
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// ProcessingEntry tracks an in-flight analyze job for one transcript.
type ProcessingEntry struct {
	Types     []string  `json:"types"`
	StartedAt time.Time `json:"started_at"`
}

// Document is the whole action state document: the single source of truth
// for lifecycle status, mutated only by whole-document read-modify-write.
type Document struct {
	Actions    map[string]*Action          `json:"actions"`
	Processing map[string]*ProcessingEntry `json:"processing"`
}

// NewDocument returns an empty document with initialized maps.
func NewDocument() *Document {
	return &Document{
		Actions:    map[string]*Action{},
		Processing: map[string]*ProcessingEntry{},
	}
}

// EnsureMaps initializes nil maps after JSON decoding.
func (d *Document) EnsureMaps() {
	if d.Actions == nil {
		d.Actions = map[string]*Action{}
	}
	if d.Processing == nil {
		d.Processing = map[string]*ProcessingEntry{}
	}
}

// Get returns the action entry for id, or nil when absent.
func (d *Document) Get(id ID) *Action {
	return d.Actions[id.String()]
}

// Ensure returns the action entry for id, creating a status=new entry when
// the action has never been touched before.
func (d *Document) Ensure(id ID, now time.Time) *Action {
	if existing := d.Actions[id.String()]; existing != nil {
		return existing
	}
	action := &Action{Status: StatusNew, CreatedAt: now.UTC()}
	d.Actions[id.String()] = action
	return action
}
