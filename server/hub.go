package server

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/alimasry/marginalia/store"
)

type joinRequest struct {
	client *Client
	noteID string
}

// Hub manages note sessions and routes clients to the right session. It
// also consumes watcher notifications so anchors survive edits made by
// external tools.
type Hub struct {
	store    store.NoteStore
	sessions map[string]*Session
	mu       sync.RWMutex

	joinNote chan joinRequest
	changed  <-chan string // nil when no watcher is attached
}

func NewHub(st store.NoteStore) *Hub {
	return &Hub{
		store:    st,
		sessions: make(map[string]*Session),
		joinNote: make(chan joinRequest, 64),
	}
}

// WatchChanges attaches a stream of externally-changed note IDs, typically
// a store.Watcher's Changes channel. Must be called before Run.
func (h *Hub) WatchChanges(changes <-chan string) {
	h.changed = changes
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case req, ok := <-h.joinNote:
			if !ok {
				return
			}
			h.handleJoin(req)
		case id, ok := <-h.changed:
			if !ok {
				h.changed = nil
				continue
			}
			h.handleExternalChange(id)
		}
	}
}

func (h *Hub) handleJoin(req joinRequest) {
	h.mu.Lock()
	s, ok := h.sessions[req.noteID]
	if !ok {
		ctx := context.Background()
		n, err := h.store.Get(ctx, req.noteID)
		if errors.Is(err, store.ErrNotFound) {
			if err := h.store.Create(ctx, req.noteID, ""); err != nil {
				log.Printf("hub: create note %q: %v", req.noteID, err)
				h.mu.Unlock()
				req.client.sendError("failed to create note")
				return
			}
			n, err = h.store.Get(ctx, req.noteID)
		}
		if err != nil {
			log.Printf("hub: load note %q: %v", req.noteID, err)
			h.mu.Unlock()
			req.client.sendError("failed to load note")
			return
		}

		s = newSession(n, h.store)
		h.sessions[req.noteID] = s
		go s.Run()
	}
	h.mu.Unlock()

	s.join <- req.client
}

// handleExternalChange reroutes a changed note into its live session,
// which still holds the pre-edit content and can remap anchors through
// the external edit. Without a session there is no old snapshot to diff
// against; anchors stay put and range resolution clamps them at render
// time.
func (h *Hub) handleExternalChange(id string) {
	h.mu.RLock()
	s := h.sessions[id]
	h.mu.RUnlock()
	if s == nil {
		return
	}

	n, err := h.store.Get(context.Background(), id)
	if err != nil {
		log.Printf("hub: reload changed note %q: %v", id, err)
		return
	}
	s.external <- externalEdit{content: n.Content}
}

// GetSession returns the session for a note, if active.
func (h *Hub) GetSession(noteID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[noteID]
}
