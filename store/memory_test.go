package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alimasry/marginalia/anchor"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, "note1", "hello"); err != nil {
		t.Fatal(err)
	}

	n, err := s.Get(ctx, "note1")
	if err != nil {
		t.Fatal(err)
	}
	if n.Content != "hello" || n.Rev != 0 || n.ID != "note1" {
		t.Errorf("unexpected note: %+v", n)
	}
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, "note1", "")
	if err := s.Create(ctx, "note1", ""); !errors.Is(err, ErrExists) {
		t.Errorf("err = %v, want ErrExists", err)
	}
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Create(ctx, "a", "")
	s.Create(ctx, "b", "")
	s.Create(ctx, "c", "")

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 {
		t.Errorf("got %d notes, want 3", len(infos))
	}
}

func TestMemoryStore_UpdateNote(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Create(ctx, "n", "hello world")

	a, err := anchor.New("hello world", 6, 11, 0)
	if err != nil {
		t.Fatal(err)
	}
	comments := []anchor.Comment{{ID: "c1", Status: anchor.StatusAttached, Anchor: a}}
	remapped, rev := anchor.RemapComments(comments, "hello world", "well hello world", 0)

	if err := s.UpdateNote(ctx, "n", "well hello world", remapped, rev); err != nil {
		t.Fatal(err)
	}
	n, err := s.Get(ctx, "n")
	if err != nil {
		t.Fatal(err)
	}
	if n.Content != "well hello world" || n.Rev != 1 {
		t.Errorf("note = %+v", n)
	}
	if len(n.Comments) != 1 || n.Comments[0].Anchor.From != 11 {
		t.Errorf("comments = %+v", n.Comments)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Create(ctx, "n", "hello")
	s.SaveComments(ctx, "n", []anchor.Comment{{ID: "c1"}}, 0)

	n, _ := s.Get(ctx, "n")
	n.Content = "mutated"
	n.Comments[0].ID = "zz"

	again, _ := s.Get(ctx, "n")
	if again.Content != "hello" || again.Comments[0].ID != "c1" {
		t.Errorf("store state leaked through Get: %+v", again)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Create(ctx, "n", "")

	if err := s.Delete(ctx, "n"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "n"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
