package store

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
)

// dirtyState tracks what needs flushing for a single note.
type dirtyState struct {
	content  bool // content/rev needs writing to the backing store
	comments bool // comment sidecar needs writing
	created  bool // note created locally but not yet in the backing store
}

// CachedStore wraps a backing NoteStore with an in-memory cache. All reads
// and writes are served from the cache. Dirty notes are flushed to the
// backing store periodically in the background and once more on Close.
type CachedStore struct {
	cache         *MemoryStore
	backing       NoteStore
	mu            sync.Mutex
	dirty         map[string]*dirtyState
	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
}

// NewCachedStore creates a CachedStore flushing every flushInterval.
func NewCachedStore(backing NoteStore, flushInterval time.Duration) *CachedStore {
	cs := &CachedStore{
		cache:         NewMemoryStore(),
		backing:       backing,
		dirty:         make(map[string]*dirtyState),
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go cs.flushLoop()
	return cs
}

func (cs *CachedStore) Create(ctx context.Context, id, content string) error {
	if err := cs.cache.Create(ctx, id, content); err != nil {
		return err
	}
	cs.markDirty(id, func(ds *dirtyState) { ds.created = true; ds.content = true })
	return nil
}

func (cs *CachedStore) Get(ctx context.Context, id string) (*note.Note, error) {
	n, err := cs.cache.Get(ctx, id)
	if err == nil {
		return n, nil
	}
	// Cache miss — load from the backing store.
	if err := cs.loadFromBacking(ctx, id); err != nil {
		return nil, err
	}
	return cs.cache.Get(ctx, id)
}

func (cs *CachedStore) List(ctx context.Context) ([]note.Info, error) {
	return cs.backing.List(ctx)
}

func (cs *CachedStore) UpdateNote(ctx context.Context, id, content string, comments []anchor.Comment, rev int) error {
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	if err := cs.cache.UpdateNote(ctx, id, content, comments, rev); err != nil {
		return err
	}
	cs.markDirty(id, func(ds *dirtyState) { ds.content = true; ds.comments = true })
	return nil
}

func (cs *CachedStore) SaveComments(ctx context.Context, id string, comments []anchor.Comment, rev int) error {
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	if err := cs.cache.SaveComments(ctx, id, comments, rev); err != nil {
		return err
	}
	cs.markDirty(id, func(ds *dirtyState) { ds.comments = true })
	return nil
}

func (cs *CachedStore) Delete(ctx context.Context, id string) error {
	if err := cs.cache.Delete(ctx, id); err != nil {
		// Not cached; delete straight from the backing store.
		return cs.backing.Delete(ctx, id)
	}
	cs.mu.Lock()
	delete(cs.dirty, id)
	cs.mu.Unlock()
	return cs.backing.Delete(ctx, id)
}

func (cs *CachedStore) markDirty(id string, update func(*dirtyState)) {
	cs.mu.Lock()
	ds := cs.dirty[id]
	if ds == nil {
		ds = &dirtyState{}
		cs.dirty[id] = ds
	}
	update(ds)
	cs.mu.Unlock()
}

// loadFromBacking populates the cache with a note from the backing store.
func (cs *CachedStore) loadFromBacking(ctx context.Context, id string) error {
	n, err := cs.backing.Get(ctx, id)
	if err != nil {
		return err
	}
	cs.cache.mu.Lock()
	if _, exists := cs.cache.notes[id]; !exists {
		cs.cache.notes[id] = n
	}
	cs.cache.mu.Unlock()
	return nil
}

func (cs *CachedStore) flushLoop() {
	ticker := time.NewTicker(cs.flushInterval)
	defer ticker.Stop()
	defer close(cs.done)

	for {
		select {
		case <-ticker.C:
			cs.flush()
		case <-cs.stop:
			cs.flush()
			return
		}
	}
}

// flush writes all dirty notes to the backing store. A failed write keeps
// the note dirty so the next cycle retries it.
func (cs *CachedStore) flush() {
	cs.mu.Lock()
	snapshot := make(map[string]dirtyState, len(cs.dirty))
	for id, ds := range cs.dirty {
		snapshot[id] = *ds
	}
	cs.mu.Unlock()

	ctx := context.Background()

	for id, ds := range snapshot {
		n, err := cs.cache.Get(ctx, id)
		if err != nil {
			continue
		}

		if ds.created {
			if err := cs.backing.Create(ctx, id, n.Content); err != nil {
				log.Printf("cached store: create %q in backing store: %v", id, err)
				continue
			}
		}
		if ds.content {
			if err := cs.backing.UpdateNote(ctx, id, n.Content, n.Comments, n.Rev); err != nil {
				log.Printf("cached store: flush content for %q: %v", id, err)
				continue
			}
		} else if ds.comments {
			if err := cs.backing.SaveComments(ctx, id, n.Comments, n.Rev); err != nil {
				log.Printf("cached store: flush comments for %q: %v", id, err)
				continue
			}
		}

		// Clear only flags still matching the snapshot; new writes since
		// then stay dirty for the next cycle.
		cs.mu.Lock()
		cur := cs.dirty[id]
		if cur != nil {
			if ds.created {
				cur.created = false
			}
			if ds.content {
				cur.content = false
				cur.comments = false
			} else if ds.comments {
				cur.comments = false
			}
			if !cur.created && !cur.content && !cur.comments {
				delete(cs.dirty, id)
			}
		}
		cs.mu.Unlock()
	}
}

// Close performs a final flush and waits for the loop to exit.
func (cs *CachedStore) Close() {
	close(cs.stop)
	<-cs.done
}
