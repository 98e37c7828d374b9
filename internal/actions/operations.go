package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"copydesk/internal/fileutil"
	"copydesk/internal/lifecycle"
	"copydesk/internal/logging"
	"copydesk/internal/revision"
)

// Stage moves a new action into staging, materializing the current round's
// edit-0 entry. Re-staging an already staged action is idempotent.
func (s *Service) Stage(ctx context.Context, id lifecycle.ID) (lifecycle.Action, error) {
	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return lifecycle.Action{}, err
	}

	var out lifecycle.Action
	err = s.mutate(func(doc *lifecycle.Document) error {
		now := s.now().UTC()
		action := doc.Ensure(id, now)
		if action.Status != lifecycle.StatusNew && action.Status != lifecycle.StatusStaged {
			return lifecycle.Conflictf("cannot stage %s: status is %s, must be new or staged", id, action.Status)
		}

		round, created, err := revision.EnsureStaged(rec.Analyses, id.AnalysisType, now)
		if err != nil {
			return err
		}
		if created {
			if err := s.records.Put(ctx, rec); err != nil {
				return fmt.Errorf("persist staged record: %w", err)
			}
		}

		action.Status = lifecycle.StatusStaged
		action.StagedRound = round
		action.EditCount = 0
		if action.StagedAt == nil {
			action.StagedAt = &now
		}
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	s.logger.Info("action staged",
		logging.String(logging.FieldAction, id.String()),
		logging.Int(logging.FieldRound, out.StagedRound))
	return out, nil
}

// SaveEdit appends a manual revision. Editing a ready action invalidates its
// visuals: status drops back to staged and visual_status becomes stale.
func (s *Service) SaveEdit(ctx context.Context, id lifecycle.ID, text string) (lifecycle.Action, error) {
	if strings.TrimSpace(text) == "" {
		return lifecycle.Action{}, lifecycle.Validationf("edit text is required")
	}
	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return lifecycle.Action{}, err
	}

	var out lifecycle.Action
	err = s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if action.Status != lifecycle.StatusStaged && action.Status != lifecycle.StatusReady {
			return lifecycle.Conflictf("cannot edit %s: status is %s, must be staged or ready", id, action.Status)
		}

		edit, err := revision.SaveEdit(rec.Analyses, id.AnalysisType, text, s.now())
		if err != nil {
			return err
		}
		if err := s.records.Put(ctx, rec); err != nil {
			return fmt.Errorf("persist edited record: %w", err)
		}

		action.EditCount = edit
		if action.Status == lifecycle.StatusReady {
			action.Status = lifecycle.StatusStaged
			action.VisualStatus = lifecycle.VisualStale
		}
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	s.logger.Info("edit saved",
		logging.String(logging.FieldAction, id.String()),
		logging.Int("edit", out.EditCount))
	return out, nil
}

// Ready marks a staged action as reviewed and ready to publish.
func (s *Service) Ready(ctx context.Context, id lifecycle.ID) (lifecycle.Action, error) {
	return s.transition(id, lifecycle.StatusReady, func(action *lifecycle.Action) {})
}

// Posted records publication: the action completes and keeps its posted
// timestamp.
func (s *Service) Posted(ctx context.Context, id lifecycle.ID) (lifecycle.Action, error) {
	if _, err := s.loadRecord(ctx, id); err != nil {
		return lifecycle.Action{}, err
	}
	var out lifecycle.Action
	err := s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if action.Status != lifecycle.StatusStaged && action.Status != lifecycle.StatusReady {
			return lifecycle.Conflictf("cannot post %s: status is %s, must be staged or ready", id, action.Status)
		}
		now := s.now().UTC()
		action.Status = lifecycle.StatusDone
		action.PostedAt = &now
		action.CompletedAt = &now
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	s.logger.Info("action posted", logging.String(logging.FieldAction, id.String()))
	return out, nil
}

// Done completes a new action directly. Only simple (non-auto-judge) types may
// take this shortcut; auto-judge types must be staged or skipped.
func (s *Service) Done(ctx context.Context, id lifecycle.ID) (lifecycle.Action, error) {
	entry, err := s.typeEntry(id)
	if err != nil {
		return lifecycle.Action{}, err
	}
	if entry.AutoJudge {
		return lifecycle.Action{}, lifecycle.Conflictf(
			"%s is an auto-judge type: stage or skip it instead of marking done", id.AnalysisType)
	}
	if _, err := s.loadRecord(ctx, id); err != nil {
		return lifecycle.Action{}, err
	}

	var out lifecycle.Action
	err = s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if action.Status != lifecycle.StatusNew {
			return lifecycle.Conflictf("cannot mark %s done: status is %s, must be new", id, action.Status)
		}
		now := s.now().UTC()
		action.Status = lifecycle.StatusDone
		action.CompletedAt = &now
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	s.logger.Info("action done", logging.String(logging.FieldAction, id.String()))
	return out, nil
}

// Skip dismisses an action. Terminal, reachable from any non-done status.
func (s *Service) Skip(ctx context.Context, id lifecycle.ID) (lifecycle.Action, error) {
	if _, err := s.loadRecord(ctx, id); err != nil {
		return lifecycle.Action{}, err
	}
	var out lifecycle.Action
	err := s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if !lifecycle.CanTransition(action.Status, lifecycle.StatusSkip) {
			return lifecycle.Conflictf("cannot skip %s: status is %s", id, action.Status)
		}
		now := s.now().UTC()
		action.Status = lifecycle.StatusSkip
		action.CompletedAt = &now
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	s.logger.Info("action skipped", logging.String(logging.FieldAction, id.String()))
	return out, nil
}

// Approve completes a simple-type action and copies its content to the
// output directory. Simple types never enter staging, so the queue and
// review projections stay disjoint for them by construction.
func (s *Service) Approve(ctx context.Context, id lifecycle.ID) (lifecycle.Action, error) {
	entry, err := s.typeEntry(id)
	if err != nil {
		return lifecycle.Action{}, err
	}
	if entry.AutoJudge {
		return lifecycle.Action{}, lifecycle.Conflictf(
			"%s is an auto-judge type: stage it for review instead of approving", id.AnalysisType)
	}

	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return lifecycle.Action{}, err
	}
	alias, err := revision.Alias(rec.Analyses, id.AnalysisType)
	if err != nil {
		return lifecycle.Action{}, err
	}

	var out lifecycle.Action
	err = s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Ensure(id, s.now().UTC())
		if action.Status != lifecycle.StatusNew {
			return lifecycle.Conflictf("cannot approve %s: status is %s, must be new", id, action.Status)
		}

		if dir := s.cfg.Paths.OutputDir; dir != "" {
			dest := filepath.Join(dir, id.String()+".md")
			if err := fileutil.WriteFileAtomic(dest, []byte(alias.Content), 0o644); err != nil {
				return fmt.Errorf("copy approved content: %w", err)
			}
		}

		now := s.now().UTC()
		action.Status = lifecycle.StatusDone
		action.CompletedAt = &now
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	s.logger.Info("action approved", logging.String(logging.FieldAction, id.String()))
	return out, nil
}

// transition applies a simple precondition-checked status change.
func (s *Service) transition(id lifecycle.ID, to lifecycle.Status, apply func(*lifecycle.Action)) (lifecycle.Action, error) {
	var out lifecycle.Action
	err := s.mutate(func(doc *lifecycle.Document) error {
		action := doc.Get(id)
		if action == nil {
			return lifecycle.NotFoundf("action %s not found", id)
		}
		if !lifecycle.CanTransition(action.Status, to) {
			return lifecycle.Conflictf("cannot move %s from %s to %s", id, action.Status, to)
		}
		action.Status = to
		apply(action)
		out = cloneAction(action)
		return nil
	})
	if err != nil {
		return lifecycle.Action{}, err
	}
	return out, nil
}
