package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
)

// MemoryStore is an in-memory implementation of NoteStore.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[string]*note.Note
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]*note.Note)}
}

func (s *MemoryStore) Create(_ context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[id]; exists {
		return fmt.Errorf("%w: %q", ErrExists, id)
	}
	s.notes[id] = note.New(id, content)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	cp := *n
	cp.Comments = append([]anchor.Comment(nil), n.Comments...)
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context) ([]note.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]note.Info, 0, len(s.notes))
	for _, n := range s.notes {
		result = append(result, n.Info())
	}
	return result, nil
}

func (s *MemoryStore) UpdateNote(_ context.Context, id, content string, comments []anchor.Comment, rev int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	n.Restore(content, append([]anchor.Comment(nil), comments...), rev)
	return nil
}

func (s *MemoryStore) SaveComments(_ context.Context, id string, comments []anchor.Comment, rev int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	n.Comments = append([]anchor.Comment(nil), comments...)
	n.Rev = rev
	n.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.notes, id)
	return nil
}
