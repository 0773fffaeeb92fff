// Package watch reloads server projects when project configuration files
// change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/dmora/tsclient/internal/log"
)

// Reloader is told to reload projects. *tsclient.Client satisfies it.
type Reloader interface {
	ReloadProjects() error
}

// Default watcher settings.
var (
	DefaultPatterns = []string{"**/tsconfig*.json", "**/jsconfig*.json", "**/package.json"}
	DefaultDebounce = 250 * time.Millisecond
)

// Options configures a Watcher.
type Options struct {
	// Patterns are doublestar globs matched against slash-separated paths
	// relative to the watched root.
	Patterns []string

	// Debounce is how long the watcher waits after the last matching change
	// before reloading.
	Debounce time.Duration

	// OnReload, if set, is called after each reload with the changed paths
	// (sorted, relative to the root) and the reload error.
	OnReload func(changed []string, err error)
}

// Option configures a Watcher.
type Option func(*Options)

// WithPatterns replaces the watched glob patterns. An empty list is ignored.
func WithPatterns(patterns ...string) Option {
	return func(o *Options) {
		if len(patterns) > 0 {
			o.Patterns = patterns
		}
	}
}

// WithDebounce sets the quiet period before a reload. Values <= 0 are ignored.
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Debounce = d
		}
	}
}

// WithReloadHook sets Options.OnReload.
func WithReloadHook(fn func(changed []string, err error)) Option {
	return func(o *Options) {
		o.OnReload = fn
	}
}

// Watcher watches a directory tree and calls a Reloader when a file
// matching one of its patterns is created, written, removed or renamed.
// node_modules and dot-directories below the root are not watched.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	reloader Reloader
	opts     Options
	reloads  atomic.Int64
}

// New creates a Watcher rooted at root and registers every directory below
// it. Changes are processed once Run is called.
func New(root string, r Reloader, opts ...Option) (*Watcher, error) {
	o := Options{
		Patterns: slices.Clone(DefaultPatterns),
		Debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	for _, p := range o.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("watch: invalid pattern %q", p)
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{root: abs, fsw: fsw, reloader: r, opts: o}
	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched root.
func (w *Watcher) Root() string { return w.root }

// Reloads returns how many reloads have been triggered.
func (w *Watcher) Reloads() int64 { return w.reloads.Load() }

// Match reports whether path, absolute or relative to the root, matches
// one of the watch patterns.
func (w *Watcher) Match(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(w.root, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.opts.Patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Run processes file system events until ctx is cancelled, then closes the
// watcher. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	changed := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(ev.Name, w.root) {
					if err := w.addTree(ev.Name); err != nil {
						log.Entry(ctx).Warnf("watch: %v", err)
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			rel, _ := filepath.Rel(w.root, ev.Name)
			changed[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Entry(ctx).Warnf("watch: %v", err)

		case <-timer.C:
			w.reload(ctx, changed)
			clear(changed)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.Match(ev.Name)
}

func (w *Watcher) reload(ctx context.Context, changed map[string]struct{}) {
	paths := make([]string, 0, len(changed))
	for p := range changed {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	w.reloads.Add(1)
	err := w.reloader.ReloadProjects()
	if err != nil {
		log.Entry(ctx).Warnf("watch: reload projects: %v", err)
	} else {
		log.Entry(ctx).Debugf("watch: reloaded projects after changes to %s", strings.Join(paths, ", "))
	}
	if w.opts.OnReload != nil {
		w.opts.OnReload(paths, err)
	}
}

// addTree registers dir and every directory below it that is not skipped.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil // removed during the walk
			}
			return fmt.Errorf("watch: %w", err)
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(p, w.root) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch: add %s: %w", p, err)
		}
		return nil
	})
}

// skipDir reports whether dir is node_modules or a dot-directory below root.
func skipDir(dir, root string) bool {
	if dir == root {
		return false
	}
	name := filepath.Base(dir)
	return name == "node_modules" || strings.HasPrefix(name, ".")
}
