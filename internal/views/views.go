// Package views builds the two disjoint work-list projections over action
// status: the queue of newly generated items and the review list of staged
// and ready items.
package views

import (
	"encoding/json"
	"sort"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/lifecycle"
	"copydesk/internal/records"
	"copydesk/internal/revision"
)

// QueueItem is one row of the queue projection (status=new).
type QueueItem struct {
	ActionID     string    `json:"action_id"`
	TranscriptID string    `json:"transcript_id"`
	AnalysisType string    `json:"analysis_type"`
	Destination  string    `json:"destination"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewItem is one row of the review projection (status staged or ready).
type ReviewItem struct {
	ActionID       string                 `json:"action_id"`
	TranscriptID   string                 `json:"transcript_id"`
	AnalysisType   string                 `json:"analysis_type"`
	Status         lifecycle.Status       `json:"status"`
	VisualStatus   lifecycle.VisualStatus `json:"visual_status,omitempty"`
	StagedRound    int                    `json:"staged_round"`
	EditCount      int                    `json:"edit_count"`
	Iterating      bool                   `json:"iterating,omitempty"`
	IterationCount int                    `json:"iteration_count"`
	LatestScore    *float64               `json:"latest_score,omitempty"`
	StagedAt       *time.Time             `json:"staged_at,omitempty"`
}

// AnalysesLookup resolves the analysis key map for a transcript, nil when the
// transcript is unknown.
type AnalysesLookup func(transcriptID string) map[string]json.RawMessage

// PendingAnalysis is one analysis present in the record store. Analyses with
// no state-document entry are implicitly created actions and surface in the
// queue as status=new.
type PendingAnalysis struct {
	TranscriptID string
	AnalysisType string
	CreatedAt    time.Time
}

// PendingAnalyses extracts the user-facing analyses each record carries.
func PendingAnalyses(cfg *config.Config, recs []*records.Record) []PendingAnalysis {
	var out []PendingAnalysis
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		for _, at := range cfg.UserFacingTypes() {
			if _, ok := rec.Analyses[at.Name]; !ok {
				continue
			}
			out = append(out, PendingAnalysis{
				TranscriptID: rec.TranscriptID,
				AnalysisType: at.Name,
				CreatedAt:    rec.CreatedAt,
			})
		}
	}
	return out
}

// Queue projects every status=new action, annotated with its resolved
// posting destination. Record-store analyses the document has never tracked
// are included as implicit new actions; a document entry of any status takes
// precedence over its pending counterpart.
func Queue(cfg *config.Config, doc *lifecycle.Document, pending []PendingAnalysis) []QueueItem {
	items := make([]QueueItem, 0)
	for raw, action := range doc.Actions {
		if action.Status != lifecycle.StatusNew {
			continue
		}
		id, err := lifecycle.ParseID(raw)
		if err != nil {
			continue
		}
		items = append(items, QueueItem{
			ActionID:     raw,
			TranscriptID: id.TranscriptID,
			AnalysisType: id.AnalysisType,
			Destination:  Destination(cfg, id.AnalysisType),
			CreatedAt:    action.CreatedAt,
		})
	}
	for _, p := range pending {
		id := lifecycle.ID{TranscriptID: p.TranscriptID, AnalysisType: p.AnalysisType}
		raw := id.String()
		if _, err := lifecycle.ParseID(raw); err != nil {
			continue
		}
		if _, tracked := doc.Actions[raw]; tracked {
			continue
		}
		items = append(items, QueueItem{
			ActionID:     raw,
			TranscriptID: p.TranscriptID,
			AnalysisType: p.AnalysisType,
			Destination:  Destination(cfg, p.AnalysisType),
			CreatedAt:    p.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ActionID < items[j].ActionID
	})
	return items
}

// Review projects every staged or ready action, annotated with its round
// count and latest judge score read from the transcript record.
func Review(doc *lifecycle.Document, lookup AnalysesLookup) []ReviewItem {
	items := make([]ReviewItem, 0)
	for raw, action := range doc.Actions {
		if action.Status != lifecycle.StatusStaged && action.Status != lifecycle.StatusReady {
			continue
		}
		id, err := lifecycle.ParseID(raw)
		if err != nil {
			continue
		}
		item := ReviewItem{
			ActionID:     raw,
			TranscriptID: id.TranscriptID,
			AnalysisType: id.AnalysisType,
			Status:       action.Status,
			VisualStatus: action.VisualStatus,
			StagedRound:  action.StagedRound,
			EditCount:    action.EditCount,
			Iterating:    action.Iterating,
			StagedAt:     action.StagedAt,
		}
		if analyses := lookup(id.TranscriptID); analyses != nil {
			item.IterationCount = revision.RoundCount(analyses, id.AnalysisType)
			if score, ok := revision.LatestScore(analyses, id.AnalysisType); ok {
				overall := score.Overall
				item.LatestScore = &overall
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		si, sj := items[i].StagedAt, items[j].StagedAt
		switch {
		case si != nil && sj != nil && !si.Equal(*sj):
			return si.Before(*sj)
		case si == nil && sj != nil:
			return false
		case si != nil && sj == nil:
			return true
		}
		return items[i].ActionID < items[j].ActionID
	})
	return items
}
