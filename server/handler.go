package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/alimasry/marginalia/anchor"
	"github.com/alimasry/marginalia/note"
	"github.com/alimasry/marginalia/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHandler creates the HTTP handler with all routes.
func NewHandler(hub *Hub) http.Handler {
	mux := http.NewServeMux()

	// Serve static files.
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/", fs)

	mux.HandleFunc("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
		infos, err := hub.store.List(r.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		q := r.URL.Query().Get("q")
		if q != "" {
			infos = filterInfos(r, hub, infos, q)
		}
		writeJSON(w, infos)
	})

	mux.HandleFunc("GET /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		n, err := hub.store.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, n)
	})

	mux.HandleFunc("GET /api/notes/{id}/highlights", func(w http.ResponseWriter, r *http.Request) {
		n, err := hub.store.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			httpError(w, err)
			return
		}
		ranges := anchor.HighlightRanges(n.Content, n.Comments)
		if ranges == nil {
			ranges = []anchor.Range{}
		}
		writeJSON(w, ranges)
	})

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}

// filterInfos runs the search query against the full notes, since Info
// alone has no body or comments to match on.
func filterInfos(r *http.Request, hub *Hub, infos []note.Info, q string) []note.Info {
	notes := make([]*note.Note, 0, len(infos))
	for _, info := range infos {
		n, err := hub.store.Get(r.Context(), info.ID)
		if err != nil {
			continue
		}
		notes = append(notes, n)
	}
	matched := note.Filter(notes, q)
	out := make([]note.Info, 0, len(matched))
	for _, n := range matched {
		out = append(out, n.Info())
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func httpError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
