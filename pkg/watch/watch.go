// Package watch reruns a handler on markdown notes as they are saved.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/vault"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called once per settled markdown file.
type Handler func(ctx context.Context, doc vault.Document) error

// Watcher monitors a vault directory tree using fsnotify. Directories created
// while watching are picked up automatically.
type Watcher struct {
	Root string

	debounce time.Duration
	skip     func(rel string) bool
	onEvent  func()
	fw       *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is handled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithSkip excludes vault-relative paths for which skip returns true. Hidden
// directories are always excluded.
func WithSkip(skip func(rel string) bool) Option {
	return func(w *Watcher) { w.skip = skip }
}

// WithEventHook is called for every file handed to the Handler.
func WithEventHook(fn func()) Option {
	return func(w *Watcher) { w.onEvent = fn }
}

// New creates a watcher and registers every directory under root.
func New(root string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		Root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		fw:       fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(w.Root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watcher. Run closes it on return.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.Root && w.skipped(p) {
			return filepath.SkipDir
		}
		return w.fw.Add(p)
	})
}

func (w *Watcher) rel(p string) (string, bool) {
	rel, err := filepath.Rel(w.Root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) skipped(p string) bool {
	rel, ok := w.rel(p)
	if !ok {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return w.skip != nil && w.skip(rel)
}

// Run delivers settled markdown files to handle until ctx is done. Handler
// errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fw.Close()
	lg := log.FromContext(ctx).With("root", w.Root)

	pending := make(map[string]time.Time)
	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if isDir(event.Name) {
					if !w.skipped(event.Name) {
						if err := w.addTree(event.Name); err != nil {
							lg.Warn("watch new folder", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(event.Name) != "."+vault.MarkdownExt || w.skipped(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) < w.debounce {
					continue
				}
				delete(pending, file)
				rel, ok := w.rel(file)
				if !ok {
					continue
				}
				if w.onEvent != nil {
					w.onEvent()
				}
				doc := vault.NewDocument(rel)
				if err := handle(ctx, doc); err != nil {
					lg.Warn("watch handler failed", "path", rel, "error", err)
					continue
				}
				lg.Debug("handled change", "path", rel)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			lg.Warn("watch error", "error", err)
		}
	}
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
