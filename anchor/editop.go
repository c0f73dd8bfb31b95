package anchor

// EditOp describes one contiguous replacement: DeleteLen characters removed
// at offset At in the old text, replaced by InsertLen characters of the new
// text.
type EditOp struct {
	At        int `json:"at"`
	DeleteLen int `json:"deleteLen"`
	InsertLen int `json:"insertLen"`
}

// DeriveEditOps infers the single contiguous edit that turned oldText into
// newText, by trimming the common prefix and then the common suffix of the
// remainders. Identical texts yield no ops.
//
// This is deliberately not a minimal diff: two disjoint simultaneous edits
// collapse into one op spanning from the first divergence to the last.
// Callers rely on the single-op shape, so keep it that way.
func DeriveEditOps(oldText, newText string) []EditOp {
	if oldText == newText {
		return nil
	}

	minLen := len(oldText)
	if len(newText) < minLen {
		minLen = len(newText)
	}

	prefix := 0
	for prefix < minLen && oldText[prefix] == newText[prefix] {
		prefix++
	}

	// The suffix must not overlap the prefix.
	maxSuffix := minLen - prefix
	suffix := 0
	for suffix < maxSuffix &&
		oldText[len(oldText)-1-suffix] == newText[len(newText)-1-suffix] {
		suffix++
	}

	op := EditOp{
		At:        prefix,
		DeleteLen: len(oldText) - prefix - suffix,
		InsertLen: len(newText) - prefix - suffix,
	}
	if op.DeleteLen == 0 && op.InsertLen == 0 {
		return nil
	}
	return []EditOp{op}
}

// TransformOffset maps one offset through one edit. Affinity breaks the tie
// when the offset sits exactly at a pure insertion point: an "after" point
// is pushed past the inserted text, a "before" point stays put.
func TransformOffset(offset int, aff Affinity, op EditOp) int {
	if offset <= op.At {
		if offset == op.At && aff == AffinityAfter && op.DeleteLen == 0 {
			return op.At + op.InsertLen
		}
		return offset
	}
	if offset >= op.At+op.DeleteLen {
		return offset + op.InsertLen - op.DeleteLen
	}
	// Strictly inside the deleted span: no stable position remains, pull
	// the offset to the start of the edit.
	return op.At
}
