package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/f3rmion/furi/internal/reading"
	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// Files are re-processed whenever they change.
	Files []string
	// DictPath, when set, is reloaded into Store whenever it changes.
	DictPath string
	Store    *reading.Store
	// Load reads a dictionary file. Defaults to reading.LoadFile.
	Load func(path string) (*reading.Dictionary, error)
	// Process annotates one changed file. Required when Files is set.
	Process func(path string) error
	// Delay is the debounce window. Defaults to DefaultDelay.
	Delay time.Duration
}

// Watcher watches files and the dictionary for changes.
type Watcher struct {
	opts  Options
	files map[string]bool
	dict  string
	log   *slog.Logger
}

// New creates a watcher. Paths are made absolute so events match them.
func New(opts Options, log *slog.Logger) (*Watcher, error) {
	if opts.Process == nil && len(opts.Files) > 0 {
		return nil, errors.New("watch: Process is required")
	}
	if len(opts.Files) == 0 && opts.DictPath == "" {
		return nil, errors.New("watch: nothing to watch")
	}
	if opts.Load == nil {
		opts.Load = reading.LoadFile
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{opts: opts, files: make(map[string]bool), log: log}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
	}
	if opts.DictPath != "" {
		if opts.Store == nil {
			return nil, errors.New("watch: Store is required with DictPath")
		}
		abs, err := filepath.Abs(opts.DictPath)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", opts.DictPath, err)
		}
		w.dict = abs
	}
	return w, nil
}

// Run processes every file once, then blocks handling change events until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	// Watch directories rather than files so editors that replace the
	// file on save keep being observed.
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	if w.dict != "" {
		dirs[filepath.Dir(w.dict)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	for f := range w.files {
		w.process(f)
	}

	batches := make(chan []string, 1)
	done := make(chan struct{})
	defer close(done)
	deb := NewDebouncer(w.opts.Delay, func(keys []string) {
		select {
		case batches <- keys:
		case <-done:
		}
	})
	defer deb.Stop()

	w.log.Info("watching for changes", "files", len(w.files), "dirs", len(dirs))
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if w.files[name] || name == w.dict {
				deb.Trigger(name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "error", err)

		case keys := <-batches:
			w.handle(keys)
		}
	}
}

func (w *Watcher) handle(keys []string) {
	reloaded := false
	for _, k := range keys {
		if k == w.dict {
			reloaded = w.reload()
		}
	}

	for _, k := range keys {
		if w.files[k] {
			w.process(k)
		}
	}

	// A new dictionary changes the output of every file.
	if reloaded {
		for f := range w.files {
			if !slices.Contains(keys, f) {
				w.process(f)
			}
		}
	}
}

func (w *Watcher) reload() bool {
	d, err := w.opts.Load(w.dict)
	if err != nil {
		w.log.Warn("keeping previous dictionary", "path", w.dict, "error", err)
		return false
	}
	w.opts.Store.Swap(d)
	w.log.Info("dictionary reloaded", "path", w.dict, "entries", d.Size())
	return true
}

func (w *Watcher) process(path string) {
	if err := w.opts.Process(path); err != nil {
		w.log.Error("processing file", "path", path, "error", err)
		return
	}
	w.log.Debug("processed file", "path", path)
}
