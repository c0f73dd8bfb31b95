package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
)

// FirestoreStore is a Firestore-backed implementation of NoteStore. Each
// note is a document in the "notes" collection; its comments live in a
// "comments" subcollection keyed by comment ID.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a FirestoreStore using the given client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "notes",
	}
}

func (s *FirestoreStore) noteRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) commentsCollection(id string) *firestore.CollectionRef {
	return s.noteRef(id).Collection("comments")
}

func (s *FirestoreStore) Create(ctx context.Context, id, content string) error {
	now := time.Now()
	_, err := s.noteRef(id).Create(ctx, map[string]interface{}{
		"content":   content,
		"rev":       0,
		"createdAt": now,
		"updatedAt": now,
	})
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %q", ErrExists, id)
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*note.Note, error) {
	snap, err := s.noteRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	n := snapshotToNote(id, snap)

	iter := s.commentsCollection(id).Documents(ctx)
	defer iter.Stop()
	for {
		csnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		c, err := snapshotToComment(csnap)
		if err != nil {
			return nil, err
		}
		n.Comments = append(n.Comments, c)
	}
	return n, nil
}

func snapshotToNote(id string, snap *firestore.DocumentSnapshot) *note.Note {
	data := snap.Data()
	content, _ := data["content"].(string)
	rev, _ := data["rev"].(int64)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)

	n := note.New(id, content)
	n.Rev = int(rev)
	n.CreatedAt = createdAt
	n.UpdatedAt = updatedAt
	return n
}

func snapshotToComment(snap *firestore.DocumentSnapshot) (anchor.Comment, error) {
	var c anchor.Comment
	if err := snap.DataTo(&c); err != nil {
		return anchor.Comment{}, fmt.Errorf("decode comment %s: %w", snap.Ref.ID, err)
	}
	c.ID = snap.Ref.ID
	return c, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]note.Info, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var result []note.Info
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		n := snapshotToNote(snap.Ref.ID, snap)
		info := n.Info()
		// Comment counts come from the subcollection.
		csnaps, err := s.commentsCollection(snap.Ref.ID).Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		info.Comments = len(csnaps)
		result = append(result, info)
	}
	return result, nil
}

func (s *FirestoreStore) UpdateNote(ctx context.Context, id, content string, comments []anchor.Comment, rev int) error {
	_, err := s.noteRef(id).Update(ctx, []firestore.Update{
		{Path: "content", Value: content},
		{Path: "rev", Value: rev},
		{Path: "updatedAt", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	return s.writeComments(ctx, id, comments)
}

func (s *FirestoreStore) SaveComments(ctx context.Context, id string, comments []anchor.Comment, rev int) error {
	_, err := s.noteRef(id).Update(ctx, []firestore.Update{
		{Path: "rev", Value: rev},
		{Path: "updatedAt", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	return s.writeComments(ctx, id, comments)
}

// writeComments replaces the comments subcollection with the given set.
func (s *FirestoreStore) writeComments(ctx context.Context, id string, comments []anchor.Comment) error {
	keep := make(map[string]bool, len(comments))
	for _, c := range comments {
		keep[c.ID] = true
		if _, err := s.commentsCollection(id).Doc(c.ID).Set(ctx, c); err != nil {
			return fmt.Errorf("write comment %s: %w", c.ID, err)
		}
	}
	// Remove comments deleted since the last write.
	iter := s.commentsCollection(id).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		if !keep[snap.Ref.ID] {
			if _, err := snap.Ref.Delete(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	// Delete the comments subcollection first.
	iter := s.commentsCollection(id).Documents(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			break
		}
		snap.Ref.Delete(ctx)
	}
	iter.Stop()

	_, err := s.noteRef(id).Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return err
}
