package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches for markdown changes and triggers reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rootDir  string
	ignored  func(relPath string) bool
	onReload func(filePath string) error
	done     chan struct{}
	debug    bool
}

// NewWatcher creates a new file watcher for the given directory. Paths for
// which ignored returns true are neither watched nor reported.
func NewWatcher(rootDir string, ignored func(string) bool, onReload func(string) error, debug bool) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if ignored == nil {
		ignored = func(string) bool { return false }
	}

	w := &Watcher{
		watcher:  fsWatcher,
		rootDir:  rootDir,
		ignored:  ignored,
		onReload: onReload,
		done:     make(chan struct{}),
		debug:    debug,
	}

	if err := w.addDirectoryRecursive(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// addDirectoryRecursive adds a directory and all its subdirectories to the watcher.
func (w *Watcher) addDirectoryRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		// Skip hidden dirs like .git and ignored trees
		if path != w.rootDir {
			if strings.HasPrefix(info.Name(), ".") || w.ignored(w.rel(path)) {
				return filepath.SkipDir
			}
		}

		if err := w.watcher.Add(path); err != nil {
			return err
		}
		if w.debug {
			log.Printf("[Watch] Added directory: %s", path)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	relPath, err := filepath.Rel(w.rootDir, path)
	if err != nil {
		return path
	}
	return relPath
}

// Start begins watching for file changes.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handle(event)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Watch] Error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) handle(event fsnotify.Event) {
	relPath := w.rel(event.Name)

	// New directories are watched too
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectoryRecursive(event.Name); err != nil {
				log.Printf("[Watch] Failed to watch %s: %v", relPath, err)
			}
			return
		}
	}

	if filepath.Ext(event.Name) != ".md" || w.ignored(relPath) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	if w.debug {
		log.Printf("[Watch] %s: %s", event.Op, relPath)
	}

	if err := w.onReload(relPath); err != nil {
		log.Printf("[Watch] Reload failed for %s: %v", relPath, err)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
