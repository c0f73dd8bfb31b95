// Package store persists notes and their comment sidecars. Backends share
// one contract: content, remapped comments, and the revision that binds
// them are written as a single transition.
package store

import (
	"context"
	"errors"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
)

var (
	// ErrNotFound is returned when a note ID is unknown.
	ErrNotFound = errors.New("note not found")
	// ErrExists is returned when creating a note whose ID is taken.
	ErrExists = errors.New("note already exists")
)

// NoteStore abstracts note persistence.
// Implementations: MemoryStore, FileStore, BoltStore, FirestoreStore,
// plus the CachedStore write-behind wrapper.
type NoteStore interface {
	Create(ctx context.Context, id, content string) error
	Get(ctx context.Context, id string) (*note.Note, error)
	List(ctx context.Context) ([]note.Info, error)
	// UpdateNote persists one content transition: the new content, the
	// comments remapped through it, and the revision they belong to.
	UpdateNote(ctx context.Context, id, content string, comments []anchor.Comment, rev int) error
	// SaveComments persists a comment-only mutation (add, remove,
	// manual re-anchor) at an unchanged revision.
	SaveComments(ctx context.Context, id string, comments []anchor.Comment, rev int) error
	Delete(ctx context.Context, id string) error
}
