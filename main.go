package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/alimasry/marginalia/server"
	"github.com/alimasry/marginalia/store"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	backend := flag.String("store", "file", "storage backend: memory, file, bolt, or firestore")
	dir := flag.String("dir", "notes", "notes directory (file backend)")
	db := flag.String("db", "marginalia.db", "database path (bolt backend)")
	project := flag.String("project", "", "GCP project ID (firestore backend)")
	flush := flag.Duration("flush", 5*time.Second, "write-behind flush interval (firestore backend)")
	watch := flag.Bool("watch", true, "watch the notes directory for external edits (file backend)")
	flag.Parse()

	st, cleanup, watcher := openStore(*backend, *dir, *db, *project, *flush, *watch)
	defer cleanup()

	hub := server.NewHub(st)
	if watcher != nil {
		hub.WatchChanges(watcher.Changes())
		defer watcher.Close()
	}
	go hub.Run()

	handler := server.NewHandler(hub)

	log.Printf("Starting server on %s (store=%s)", *addr, *backend)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal(err)
	}
}

func openStore(backend, dir, db, project string, flush time.Duration, watch bool) (store.NoteStore, func(), *store.Watcher) {
	switch backend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil

	case "file":
		fs, err := store.NewFileStore(dir)
		if err != nil {
			log.Fatalf("open file store: %v", err)
		}
		var w *store.Watcher
		if watch {
			w, err = store.NewWatcher(fs, 250*time.Millisecond)
			if err != nil {
				log.Fatalf("watch notes dir: %v", err)
			}
		}
		return fs, func() {}, w

	case "bolt":
		bs, err := store.NewBoltStore(db)
		if err != nil {
			log.Fatalf("open bolt store: %v", err)
		}
		return bs, func() { bs.Close() }, nil

	case "firestore":
		if project == "" {
			log.Fatal("-project is required with the firestore backend")
		}
		client, err := firestore.NewClient(context.Background(), project)
		if err != nil {
			log.Fatalf("create firestore client: %v", err)
		}
		cached := store.NewCachedStore(store.NewFirestoreStore(client), flush)
		return cached, func() {
			cached.Close()
			client.Close()
		}, nil

	default:
		log.Fatalf("unknown store backend %q", backend)
		return nil, nil, nil
	}
}
