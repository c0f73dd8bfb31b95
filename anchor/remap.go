package anchor

// RemapComments maps every comment's anchor through the edit that turned
// oldContent into newContent and reclassifies its status. It returns the
// updated comments and the next revision; if the texts are identical both
// are returned unchanged. The function is pure: callers persist the result.
//
// Quote and QuoteHash are preserved as-is; only a manual re-anchor rewrites
// them.
func RemapComments(comments []Comment, oldContent, newContent string, rev int) ([]Comment, int) {
	if len(comments) == 0 {
		return comments, rev
	}
	ops := DeriveEditOps(oldContent, newContent)
	if len(ops) == 0 {
		return comments, rev
	}
	nextRev := rev + 1

	remapped := make([]Comment, len(comments))
	for i, c := range comments {
		from := c.Anchor.From
		to := c.Anchor.To
		status := StatusAttached
		for _, op := range ops {
			// Overlap of the edited span with the original anchor.
			// A pure insertion has an empty span and counts only
			// when it lands strictly inside the anchor.
			if op.At < to && op.At+op.DeleteLen > from {
				status = StatusStale
			}
			from = TransformOffset(from, c.Anchor.StartAffinity, op)
			to = TransformOffset(to, c.Anchor.EndAffinity, op)
		}
		if from == to {
			status = StatusDetached
		}
		// Status never recovers automatically.
		if c.Status.rank() > status.rank() {
			status = c.Status
		}
		c.Anchor.From = from
		c.Anchor.To = to
		c.Anchor.Rev = nextRev
		c.Status = status
		remapped[i] = c
	}
	return remapped, nextRev
}
