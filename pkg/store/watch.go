package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/model"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventKindChanged indicates records of Kind were written or erased.
	EventKindChanged EventType = iota

	// EventInvalidated means the change could not be attributed to a kind and
	// callers should reload everything.
	EventInvalidated
)

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	Kind model.Kind
}

// settle is how long the directory must stay quiet before a burst of writes
// is reported.
const settle = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. A burst of writes is
// reported once per kind after it settles. Events are dropped when the
// consumer falls behind.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	w := &dirWatcher{
		base:    p.basePath,
		fw:      fw,
		watched: make(map[string]bool),
		pending: make(map[model.Kind]bool),
		out:     make(chan Event, 64),
	}
	if err := w.addTree(p.basePath); err != nil {
		_ = fw.Close()
		return nil, err
	}

	go w.run(ctx)
	return w.out, nil
}

type dirWatcher struct {
	base    string
	fw      *fsnotify.Watcher
	watched map[string]bool

	pending map[model.Kind]bool
	reload  bool
	out     chan Event
}

// addTree watches root and every directory below it.
func (w *dirWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() || w.watched[path] {
			return nil
		}
		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("store: watch %s: %w", path, err)
		}
		w.watched[path] = true
		return nil
	})
}

func (w *dirWatcher) run(ctx context.Context) {
	logger := log.L().Named("store")
	defer close(w.out)
	defer func() {
		if err := w.fw.Close(); err != nil {
			logger.Warnw("watcher close", "error", err)
		}
	}()

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Debugw("watcher error", "error", err)
			w.reload = true
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.note(ev)
		case <-timer.C:
			w.flush()
			continue
		}
		timer.Reset(settle)
	}
}

// note records what ev touched. New directories are watched so the records
// written into them are seen too.
func (w *dirWatcher) note(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(filepath.Clean(ev.Name)); err != nil {
				log.L().Named("store").Warnw("watch directory", "dir", ev.Name, "error", err)
			}
		}
	}
	if kind := w.kindOf(ev.Name); kind != "" {
		w.pending[kind] = true
	} else {
		w.reload = true
	}
}

func (w *dirWatcher) flush() {
	if w.reload {
		w.send(Event{Type: EventInvalidated})
	}
	for kind := range w.pending {
		w.send(Event{Type: EventKindChanged, Kind: kind})
	}
	w.reload = false
	w.pending = make(map[model.Kind]bool)
}

func (w *dirWatcher) send(ev Event) {
	select {
	case w.out <- ev:
	default:
	}
}

// kindOf maps a path under base to the kind directory it belongs to.
func (w *dirWatcher) kindOf(path string) model.Kind {
	rel, err := filepath.Rel(w.base, path)
	if err != nil || rel == "." {
		return ""
	}
	first, _, _ := strings.Cut(rel, string(os.PathSeparator))
	kind, err := model.ParseKind(first)
	if err != nil {
		return ""
	}
	return kind
}
