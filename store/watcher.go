package store

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports external edits to a FileStore directory as note IDs.
// Events are debounced so an editor's save (often a temp-write plus a
// rename) produces a single notification per note.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	changes  chan string
	stop     chan struct{}
}

// NewWatcher starts watching the store's directory. Changed note IDs are
// delivered on Changes until Close is called.
func NewWatcher(fs *FileStore, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(fs.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", fs.Dir(), err)
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		changes:  make(chan string, 64),
		stop:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes is the stream of note IDs whose files changed on disk.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Close stops the watcher and closes the Changes channel.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	defer close(w.changes)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			id, relevant := noteIDForPath(ev.Name)
			if !relevant || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending[id] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			for id := range pending {
				select {
				case w.changes <- id:
				default:
					log.Printf("watcher: dropping change for %q, consumer too slow", id)
				}
				delete(pending, id)
			}
			fire = nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		case <-w.stop:
			return
		}
	}
}

// noteIDForPath maps a changed path to a note ID. Sidecar writes and temp
// files are not external edits and are ignored.
func noteIDForPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, noteExt) {
		return "", false
	}
	return strings.TrimSuffix(name, noteExt), true
}
