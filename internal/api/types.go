// Package api defines the wire types shared by the HTTP server and the CLI.
package api

import (
	"encoding/json"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/lifecycle"
	"copydesk/internal/revision"
	"copydesk/internal/views"
)

// ActionResponse is the state of one action after an operation.
type ActionResponse struct {
	ActionID     string          `json:"action_id"`
	Status       string          `json:"status"`
	VisualStatus string          `json:"visual_status,omitempty"`
	StagedRound  int             `json:"staged_round"`
	EditCount    int             `json:"edit_count"`
	Iterating    bool            `json:"iterating,omitempty"`
	VisualData   json.RawMessage `json:"visual_data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	StagedAt     *time.Time      `json:"staged_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	PostedAt     *time.Time      `json:"posted_at,omitempty"`
}

// FromAction converts a lifecycle action into its wire shape.
func FromAction(id string, action lifecycle.Action) ActionResponse {
	return ActionResponse{
		ActionID:     id,
		Status:       string(action.Status),
		VisualStatus: string(action.VisualStatus),
		StagedRound:  action.StagedRound,
		EditCount:    action.EditCount,
		Iterating:    action.Iterating,
		VisualData:   action.VisualData,
		CreatedAt:    action.CreatedAt,
		StagedAt:     action.StagedAt,
		CompletedAt:  action.CompletedAt,
		PostedAt:     action.PostedAt,
	}
}

// JobResponse acknowledges a launched background job.
type JobResponse struct {
	JobID string `json:"job_id"`
}

// QueueResponse wraps the queue projection.
type QueueResponse struct {
	Items []views.QueueItem `json:"items"`
}

// ReviewResponse wraps the review projection.
type ReviewResponse struct {
	Items []views.ReviewItem `json:"items"`
}

// RoundResponse is one row of the iteration history.
type RoundResponse struct {
	Round int                   `json:"round"`
	Draft string                `json:"draft"`
	Judge *revision.JudgeResult `json:"judge,omitempty"`
}

// IterationsResponse wraps the iteration history view.
type IterationsResponse struct {
	ActionID string          `json:"action_id"`
	Rounds   []RoundResponse `json:"rounds"`
}

// FromRounds converts history entries into wire shape.
func FromRounds(actionID string, entries []revision.RoundEntry) IterationsResponse {
	rounds := make([]RoundResponse, 0, len(entries))
	for _, entry := range entries {
		rounds = append(rounds, RoundResponse{Round: entry.Round, Draft: entry.Draft, Judge: entry.Judge})
	}
	return IterationsResponse{ActionID: actionID, Rounds: rounds}
}

// EditResponse is one row of the edit history.
type EditResponse struct {
	Edit      int       `json:"edit"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// EditHistoryResponse wraps the edit history view.
type EditHistoryResponse struct {
	ActionID string         `json:"action_id"`
	Edits    []EditResponse `json:"edits"`
}

// FromEdits converts edit entries into wire shape.
func FromEdits(actionID string, entries []revision.EditEntry) EditHistoryResponse {
	edits := make([]EditResponse, 0, len(entries))
	for _, entry := range entries {
		edits = append(edits, EditResponse{
			Edit:      entry.Edit,
			Content:   entry.Content,
			Source:    entry.Source,
			CreatedAt: entry.CreatedAt,
		})
	}
	return EditHistoryResponse{ActionID: actionID, Edits: edits}
}

// SlideResponse is one slide of the render preview.
type SlideResponse struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// SlidesResponse wraps the slide preview.
type SlidesResponse struct {
	ActionID string          `json:"action_id"`
	Slides   []SlideResponse `json:"slides"`
}

// AnalysisTypeResponse is one registry entry.
type AnalysisTypeResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	AutoJudge   bool   `json:"auto_judge"`
}

// AnalysisTypesResponse lists the user-facing analysis types.
type AnalysisTypesResponse struct {
	Types []AnalysisTypeResponse `json:"types"`
}

// FromAnalysisTypes converts registry entries into wire shape.
func FromAnalysisTypes(entries []config.AnalysisType) AnalysisTypesResponse {
	types := make([]AnalysisTypeResponse, 0, len(entries))
	for _, entry := range entries {
		types = append(types, AnalysisTypeResponse{
			Name:        entry.Name,
			DisplayName: entry.DisplayName,
			AutoJudge:   entry.AutoJudge,
		})
	}
	return AnalysisTypesResponse{Types: types}
}

// TemplateResponse is one registered slide template.
type TemplateResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TemplatesResponse lists the registered templates.
type TemplatesResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// ProcessingResponse lists in-flight analyze jobs keyed by transcript.
type ProcessingResponse struct {
	Processing map[string]ProcessingEntry `json:"processing"`
}

// ProcessingEntry mirrors one in-flight analyze job.
type ProcessingEntry struct {
	Types     []string  `json:"types"`
	StartedAt time.Time `json:"started_at"`
}

// DaemonStatus reports daemon health for the status endpoint.
type DaemonStatus struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	StateFilePath string `json:"state_file_path"`
	RecordsDBPath string `json:"records_db_path"`
	LiveJobs      int    `json:"live_jobs"`
}

// SaveEditRequest is the save-edit request body.
type SaveEditRequest struct {
	Text string `json:"text"`
}

// RenderRequest is the render request body.
type RenderRequest struct {
	Template string `json:"template"`
}

// AnalyzeRequest is the analyze request body.
type AnalyzeRequest struct {
	Types []string `json:"types"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
