package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
)

var (
	bucketNotes    = []byte("notes")
	bucketComments = []byte("comments")
)

// boltNote is the stored shape of a note's content record.
type boltNote struct {
	Content   string    `json:"content"`
	Rev       int       `json:"rev"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoltStore persists notes in a single bbolt database file: content records
// in the "notes" bucket, comment sidecars in the "comments" bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketNotes, bucketComments} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Create(_ context.Context, id, content string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		if b.Get([]byte(id)) != nil {
			return fmt.Errorf("%w: %q", ErrExists, id)
		}
		now := time.Now()
		return putJSON(b, id, boltNote{Content: content, CreatedAt: now, UpdatedAt: now})
	})
}

func (s *BoltStore) Get(_ context.Context, id string) (*note.Note, error) {
	var n *note.Note
	err := s.db.View(func(tx *bolt.Tx) error {
		rec, err := getNote(tx, id)
		if err != nil {
			return err
		}
		n = note.New(id, rec.Content)
		n.CreatedAt = rec.CreatedAt
		n.UpdatedAt = rec.UpdatedAt
		n.Rev = rec.Rev

		if data := tx.Bucket(bucketComments).Get([]byte(id)); data != nil {
			var sc sidecar
			if err := json.Unmarshal(data, &sc); err != nil {
				return fmt.Errorf("parse comments for %q: %w", id, err)
			}
			n.Comments = sc.Comments
			n.Rev = sc.Rev
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *BoltStore) List(_ context.Context) ([]note.Info, error) {
	var result []note.Info
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).ForEach(func(k, v []byte) error {
			id := string(k)
			var rec boltNote
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("parse note %q: %w", id, err)
			}
			n := note.New(id, rec.Content)
			n.Rev = rec.Rev
			n.UpdatedAt = rec.UpdatedAt
			if data := tx.Bucket(bucketComments).Get(k); data != nil {
				var sc sidecar
				if err := json.Unmarshal(data, &sc); err != nil {
					return fmt.Errorf("parse comments for %q: %w", id, err)
				}
				n.Comments = sc.Comments
				n.Rev = sc.Rev
			}
			result = append(result, n.Info())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) UpdateNote(_ context.Context, id, content string, comments []anchor.Comment, rev int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rec, err := getNote(tx, id)
		if err != nil {
			return err
		}
		rec.Content = content
		rec.Rev = rev
		rec.UpdatedAt = time.Now()
		if err := putJSON(tx.Bucket(bucketNotes), id, rec); err != nil {
			return err
		}
		return putComments(tx, id, comments, rev)
	})
}

func (s *BoltStore) SaveComments(_ context.Context, id string, comments []anchor.Comment, rev int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := getNote(tx, id); err != nil {
			return err
		}
		return putComments(tx, id, comments, rev)
	})
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := getNote(tx, id); err != nil {
			return err
		}
		if err := tx.Bucket(bucketNotes).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketComments).Delete([]byte(id))
	})
}

func getNote(tx *bolt.Tx, id string) (boltNote, error) {
	data := tx.Bucket(bucketNotes).Get([]byte(id))
	if data == nil {
		return boltNote{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	var rec boltNote
	if err := json.Unmarshal(data, &rec); err != nil {
		return boltNote{}, fmt.Errorf("parse note %q: %w", id, err)
	}
	return rec, nil
}

func putComments(tx *bolt.Tx, id string, comments []anchor.Comment, rev int) error {
	sc := sidecar{Rev: rev, Comments: comments, UpdatedAt: time.Now()}
	return putJSON(tx.Bucket(bucketComments), id, sc)
}

func putJSON(b *bolt.Bucket, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(id), data)
}
