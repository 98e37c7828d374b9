package lifecycle

// Legacy status vocabulary rewritten by Migrate.
const (
	legacyPending  Status = "pending"
	legacyApproved Status = "approved"
	legacyPosted   Status = "posted"
)

// Migrate rewrites legacy status vocabulary in place and reports whether
// anything changed. It is idempotent: running it over an already-migrated
// document is a no-op.
//
//	pending  → new
//	approved → staged (approved_at carried into staged_at)
//	posted   → done   (posted_at preserved)
func Migrate(doc *Document) bool {
	if doc == nil {
		return false
	}
	doc.EnsureMaps()

	changed := false
	for _, action := range doc.Actions {
		switch action.Status {
		case legacyPending:
			action.Status = StatusNew
			changed = true
		case legacyApproved:
			action.Status = StatusStaged
			if action.StagedAt == nil && action.ApprovedAt != nil {
				action.StagedAt = action.ApprovedAt
			}
			action.ApprovedAt = nil
			changed = true
		case legacyPosted:
			action.Status = StatusDone
			changed = true
		}
	}
	return changed
}
