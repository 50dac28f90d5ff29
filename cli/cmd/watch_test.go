package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatch(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"app.cfg":    "include inc.cfg\nname = app\n",
		"inc.cfg":    "level = 1\n",
		"ignore.cfg": "unrelated = 1\n",
	})

	var out syncBuffer

	ctx, cancel := context.WithCancel(WithOutput(t.Context(), &out))
	defer cancel()

	w := Watch{
		output:   output{Format: formatNative},
		Debounce: 20 * time.Millisecond,
		Source:   filepath.Join(dir, "app.cfg"),
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, "initial dump", func() bool {
		return strings.Contains(out.String(), "level = 1\nname = app\n---\n")
	})

	// Changes to files outside the include set are ignored.
	if err := os.WriteFile(filepath.Join(dir, "ignore.cfg"), []byte("unrelated = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "inc.cfg"), []byte("level = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "dump after include changed", func() bool {
		return strings.Contains(out.String(), "level = 2\nname = app\n---\n")
	})

	if n := strings.Count(out.String(), "level = 1\n"); n != 1 {
		t.Errorf("unrelated change triggered a reload:\n%s", out.String())
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatchSet_Affects(t *testing.T) {
	dir := t.TempDir()
	file := canonical(filepath.Join(dir, "a.cfg"))

	s := watchSet{files: map[string]struct{}{file: {}}}

	tests := []struct {
		evt  fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: filepath.Join(dir, "a.cfg"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "a.cfg"), Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "a.cfg"), Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "b.cfg"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		if got := s.affects(tt.evt); got != tt.want {
			t.Errorf("affects(%v) = %v, want %v", tt.evt, got, tt.want)
		}
	}
}
