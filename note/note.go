// Package note models a single annotated note: markdown content with YAML
// frontmatter, a revision counter, and the comments anchored into it.
package note

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alimasry/marginalia/anchor"
)

var (
	// ErrRevisionMismatch is returned when a mutation was prepared against
	// a revision that is no longer current.
	ErrRevisionMismatch = errors.New("revision mismatch")
	// ErrNoUniqueMatch is returned when a manual re-anchor text occurs
	// zero or multiple times in the note content.
	ErrNoUniqueMatch = errors.New("no unique match")
	// ErrCommentNotFound is returned when a comment ID is unknown.
	ErrCommentNotFound = errors.New("comment not found")
)

// Note is one annotated document.
type Note struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Tags      []string         `json:"tags,omitempty"`
	Content   string           `json:"content"`
	Rev       int              `json:"rev"`
	Comments  []anchor.Comment `json:"comments"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Info is the lightweight listing form of a note.
type Info struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Rev       int       `json:"rev"`
	Comments  int       `json:"comments"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty note. The title falls back to the ID until
// frontmatter provides one.
func New(id, content string) *Note {
	now := time.Now()
	n := &Note{
		ID:        id,
		Title:     id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	n.applyContent(content)
	return n
}

// Info returns the note's listing form.
func (n *Note) Info() Info {
	return Info{
		ID:        n.ID,
		Title:     n.Title,
		Rev:       n.Rev,
		Comments:  len(n.Comments),
		UpdatedAt: n.UpdatedAt,
	}
}

// SetContent replaces the note body, remapping every comment anchor through
// the inferred edit and advancing the revision. A no-op edit changes
// nothing, including the revision.
func (n *Note) SetContent(newContent string) {
	if newContent == n.Content {
		return
	}
	comments, nextRev := anchor.RemapComments(n.Comments, n.Content, newContent, n.Rev)
	if len(n.Comments) == 0 {
		// RemapComments short-circuits on an empty comment list; the
		// revision still has to advance for a real edit.
		nextRev = n.Rev + 1
	}
	n.Comments = comments
	n.Rev = nextRev
	n.applyContent(newContent)
	n.UpdatedAt = time.Now()
}

// Restore overwrites the note's stored state with an already-remapped
// transition, refreshing frontmatter-derived metadata. Stores use it when
// writing back what the engine produced; it performs no remapping itself.
func (n *Note) Restore(content string, comments []anchor.Comment, rev int) {
	n.applyContent(content)
	n.Comments = comments
	n.Rev = rev
	n.UpdatedAt = time.Now()
}

// applyContent stores content and refreshes title/tags from frontmatter.
func (n *Note) applyContent(content string) {
	n.Content = content
	fm := ParseFrontmatter(content)
	if fm.Title != "" {
		n.Title = fm.Title
	} else {
		n.Title = n.ID
	}
	n.Tags = fm.Tags
}

// AddComment anchors a new comment to content[from:to]. The caller states
// the revision its offsets were computed against; anything but the current
// revision is a conflict.
func (n *Note) AddComment(author, body string, from, to, rev int) (anchor.Comment, error) {
	if rev != n.Rev {
		return anchor.Comment{}, fmt.Errorf("%w: comment at rev %d, note at rev %d",
			ErrRevisionMismatch, rev, n.Rev)
	}
	a, err := anchor.New(n.Content, from, to, n.Rev)
	if err != nil {
		return anchor.Comment{}, err
	}
	c := anchor.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		CreatedAt: time.Now(),
		Body:      body,
		Status:    anchor.StatusAttached,
		Anchor:    a,
	}
	n.Comments = append(n.Comments, c)
	n.UpdatedAt = time.Now()
	return c, nil
}

// Reanchor manually relocates a comment to the unique occurrence of text in
// the current content. Unlike automatic remapping this rebuilds the anchor
// wholesale, quote pair included, and restores attached status.
func (n *Note) Reanchor(commentID, text string) (anchor.Comment, error) {
	i := n.commentIndex(commentID)
	if i < 0 {
		return anchor.Comment{}, fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
	}
	r, ok := anchor.UniqueMatchRange(n.Content, text)
	if !ok {
		return anchor.Comment{}, fmt.Errorf("%w: %q", ErrNoUniqueMatch, text)
	}
	a, err := anchor.New(n.Content, r.From, r.To, n.Rev)
	if err != nil {
		return anchor.Comment{}, err
	}
	n.Comments[i].Anchor = a
	n.Comments[i].Status = anchor.StatusAttached
	n.UpdatedAt = time.Now()
	return n.Comments[i], nil
}

// Comment looks up a comment by ID.
func (n *Note) Comment(id string) (anchor.Comment, bool) {
	if i := n.commentIndex(id); i >= 0 {
		return n.Comments[i], true
	}
	return anchor.Comment{}, false
}

// RemoveComment deletes a comment by ID.
func (n *Note) RemoveComment(id string) error {
	i := n.commentIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCommentNotFound, id)
	}
	n.Comments = append(n.Comments[:i], n.Comments[i+1:]...)
	n.UpdatedAt = time.Now()
	return nil
}

// Highlights returns the merged display ranges for the note's comments.
func (n *Note) Highlights() []anchor.Range {
	return anchor.HighlightRanges(n.Content, n.Comments)
}

func (n *Note) commentIndex(id string) int {
	for i, c := range n.Comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}
