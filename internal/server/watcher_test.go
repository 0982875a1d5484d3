package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsMarkdownChanges(t *testing.T) {
	rootDir := writeSite(t, map[string]string{
		"index.md":        "# Home",
		"drafts/wip.md":   "# WIP",
		".git/HEAD":       "ref",
		"notes/readme.md": "# Notes",
	})

	changed := make(chan string, 32)
	ignored := func(rel string) bool {
		rel = filepath.ToSlash(rel)
		return rel == "drafts" || strings.HasPrefix(rel, "drafts/")
	}
	w, err := NewWatcher(rootDir, ignored, func(rel string) error {
		changed <- filepath.ToSlash(rel)
		return nil
	}, false)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	// Neither of these may reach the callback
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, "drafts", "wip.md"), []byte("# changed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, "notes.txt"), []byte("x"), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(rootDir, "notes", "readme.md"), []byte("# Changed"), 0644))

	select {
	case rel := <-changed:
		assert.Equal(t, "notes/readme.md", rel)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload for notes/readme.md")
	}
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	rootDir := writeSite(t, map[string]string{"index.md": "# Home"})

	changed := make(chan string, 32)
	w, err := NewWatcher(rootDir, nil, func(rel string) error {
		changed <- filepath.ToSlash(rel)
		return nil
	}, false)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.Mkdir(filepath.Join(rootDir, "guides"), 0755))

	// The directory is added asynchronously; retry the write until it is seen
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case rel := <-changed:
			if rel == "guides/intro.md" {
				return
			}
		case <-tick.C:
			_ = os.WriteFile(filepath.Join(rootDir, "guides", "intro.md"), []byte("# Intro"), 0644)
		case <-deadline:
			t.Fatal("no reload for a file in a new directory")
		}
	}
}
