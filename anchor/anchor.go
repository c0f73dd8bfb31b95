// Package anchor keeps comment anchors pointing at the right text as the
// underlying document is edited. It is a stateless function library: the
// caller owns the content, the comment list, and the revision counter, and
// persists whatever this package returns.
package anchor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Affinity decides which side of an insertion point an anchor boundary
// sticks to when text is inserted exactly at that boundary.
type Affinity string

const (
	AffinityBefore Affinity = "before"
	AffinityAfter  Affinity = "after"
)

// Status classifies how trustworthy a comment's anchor is.
// Automatic remapping only ever degrades status (attached → stale →
// detached); recovery requires a manual re-anchor.
type Status string

const (
	// StatusAttached means the anchor is believed accurate for the
	// current revision.
	StatusAttached Status = "attached"
	// StatusStale means an edit touched the anchored region; offsets are
	// best-effort but the underlying text may have changed.
	StatusStale Status = "stale"
	// StatusDetached means the anchored region was deleted or can no
	// longer be resolved to a non-empty range.
	StatusDetached Status = "detached"
)

// rank orders statuses so that remapping can degrade but never upgrade.
func (s Status) rank() int {
	switch s {
	case StatusStale:
		return 1
	case StatusDetached:
		return 2
	default:
		return 0
	}
}

// Anchor binds a comment to a character range within a document at a
// specific revision. Quote and QuoteHash are a snapshot taken at creation
// time; automatic remapping moves From/To/Rev but never rewrites them.
type Anchor struct {
	From          int      `json:"from"`
	To            int      `json:"to"`
	Rev           int      `json:"rev"`
	StartAffinity Affinity `json:"startAffinity"`
	EndAffinity   Affinity `json:"endAffinity"`
	Quote         string   `json:"quote"`
	QuoteHash     string   `json:"quoteHash"`
}

// Comment is one annotation on a document. Status is derived state owned
// by the remapper, not by the author.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Body      string    `json:"body"`
	Status    Status    `json:"status"`
	Anchor    Anchor    `json:"anchor"`
}

// Range is a half-open [From, To) character range.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ErrInvalidRange is returned when an anchor is built from an out-of-bounds
// or inverted range. Construction fails loudly instead of clamping.
var ErrInvalidRange = errors.New("invalid anchor range")

// New builds a validated anchor for content[from:to] at the given revision.
// The quote and its hash are captured as a consistency pair. Affinities
// default to start=after, end=before, so text inserted exactly at either
// boundary stays outside the anchor.
func New(content string, from, to, rev int) (Anchor, error) {
	if from < 0 || to <= from || to > len(content) {
		return Anchor{}, fmt.Errorf("%w: [%d,%d) in content of length %d",
			ErrInvalidRange, from, to, len(content))
	}
	if rev < 0 {
		rev = 0
	}
	quote := content[from:to]
	return Anchor{
		From:          from,
		To:            to,
		Rev:           rev,
		StartAffinity: AffinityAfter,
		EndAffinity:   AffinityBefore,
		Quote:         quote,
		QuoteHash:     Hash(quote),
	}, nil
}

// UniqueMatchRange returns the range of text within content only if it
// occurs exactly once. Zero or multiple occurrences (and an empty search
// string) report no match: ambiguity is failure, never "first match".
func UniqueMatchRange(content, text string) (Range, bool) {
	if text == "" {
		return Range{}, false
	}
	first := strings.Index(content, text)
	if first < 0 {
		return Range{}, false
	}
	if strings.Index(content[first+1:], text) >= 0 {
		return Range{}, false
	}
	return Range{From: first, To: first + len(text)}, true
}
