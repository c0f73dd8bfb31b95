package anchor

import "sort"

// ResolveRange clamps a comment's anchor into the current content and
// reports whether anything is left to highlight. Detached comments resolve
// to nothing. If the content has shrunk below the stored offsets (external
// truncation), both bounds clamp to the content length and an empty result
// reports false even for a nominally attached anchor.
func ResolveRange(content string, c Comment) (Range, bool) {
	if c.Status == StatusDetached {
		return Range{}, false
	}
	from := clamp(c.Anchor.From, 0, len(content))
	to := clamp(c.Anchor.To, 0, len(content))
	if to <= from {
		return Range{}, false
	}
	return Range{From: from, To: to}, true
}

// HighlightRanges resolves every comment and merges the survivors into a
// start-ordered, non-overlapping set of ranges. Overlapping or touching
// ranges are coalesced so shared regions are not rendered twice.
func HighlightRanges(content string, comments []Comment) []Range {
	ranges := make([]Range, 0, len(comments))
	for _, c := range comments {
		if r, ok := ResolveRange(content, c); ok {
			ranges = append(ranges, r)
		}
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].From < ranges[j].From })

	var merged []Range
	for _, r := range ranges {
		if n := len(merged); n > 0 && r.From <= merged[n-1].To {
			if r.To > merged[n-1].To {
				merged[n-1].To = r.To
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
