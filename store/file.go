package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
)

const (
	noteExt    = ".md"
	sidecarExt = ".comments.json"
)

// sidecar is the on-disk shape of a note's comment metadata. It lives next
// to the markdown file so notes stay editable with any external tool.
type sidecar struct {
	Rev       int              `json:"rev"`
	Comments  []anchor.Comment `json:"comments"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// FileStore keeps each note as <id>.md plus an <id>.comments.json sidecar
// inside a single directory.
type FileStore struct {
	dir string
}

// NewFileStore opens (creating if needed) the notes directory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store reads and writes.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) notePath(id string) string    { return filepath.Join(s.dir, id+noteExt) }
func (s *FileStore) sidecarPath(id string) string { return filepath.Join(s.dir, id+sidecarExt) }

func (s *FileStore) Create(_ context.Context, id, content string) error {
	if _, err := os.Stat(s.notePath(id)); err == nil {
		return fmt.Errorf("%w: %q", ErrExists, id)
	}
	return writeAtomic(s.notePath(id), []byte(content))
}

func (s *FileStore) Get(_ context.Context, id string) (*note.Note, error) {
	content, err := os.ReadFile(s.notePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read note %q: %w", id, err)
	}
	n := note.New(id, string(content))

	sc, err := s.readSidecar(id)
	if err != nil {
		return nil, err
	}
	if sc != nil {
		n.Comments = sc.Comments
		n.Rev = sc.Rev
		n.UpdatedAt = sc.UpdatedAt
	} else if fi, err := os.Stat(s.notePath(id)); err == nil {
		n.UpdatedAt = fi.ModTime()
	}
	return n, nil
}

func (s *FileStore) List(_ context.Context) ([]note.Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read notes dir: %w", err)
	}
	var result []note.Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, noteExt) {
			continue
		}
		id := strings.TrimSuffix(name, noteExt)
		n, err := s.Get(context.Background(), id)
		if err != nil {
			return nil, err
		}
		result = append(result, n.Info())
	}
	return result, nil
}

func (s *FileStore) UpdateNote(ctx context.Context, id, content string, comments []anchor.Comment, rev int) error {
	if _, err := os.Stat(s.notePath(id)); err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err := writeAtomic(s.notePath(id), []byte(content)); err != nil {
		return fmt.Errorf("write note %q: %w", id, err)
	}
	return s.SaveComments(ctx, id, comments, rev)
}

func (s *FileStore) SaveComments(_ context.Context, id string, comments []anchor.Comment, rev int) error {
	if _, err := os.Stat(s.notePath(id)); err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	sc := sidecar{Rev: rev, Comments: comments, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar %q: %w", id, err)
	}
	return writeAtomic(s.sidecarPath(id), data)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.notePath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return fmt.Errorf("delete note %q: %w", id, err)
	}
	// Sidecar is optional; ignore its absence.
	os.Remove(s.sidecarPath(id))
	return nil
}

// readSidecar returns nil without error when no sidecar exists yet.
func (s *FileStore) readSidecar(id string) (*sidecar, error) {
	data, err := os.ReadFile(s.sidecarPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sidecar %q: %w", id, err)
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse sidecar %q: %w", id, err)
	}
	return &sc, nil
}

// writeAtomic writes data via a temp file and rename so a crash never
// leaves a half-written note or sidecar.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".marginalia-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
