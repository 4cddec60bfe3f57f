package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRefreshesOnHeaderChange(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "list.c")
	header := filepath.Join(dir, "list.h")
	other := filepath.Join(dir, "other.c")
	for _, path := range []string{source, header, other} {
		if err := os.WriteFile(path, []byte("\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	analyzed := map[string]int{}
	ls := newTestServer(t, func(ctx context.Context, path string) (*Analysis, error) {
		analyzed[path]++
		files := []string{path}
		if path == source {
			files = append(files, header)
		}
		return &Analysis{Table: sampleTable(), Files: files}, nil
	})
	openDocument(t, ls, "file://"+source, "")
	openDocument(t, ls, "file://"+other, "")

	w := newWatcher(ls, time.Hour)
	if stale := w.scan(); len(stale) != 0 {
		t.Fatalf("first scan refreshed %v, want nothing", stale)
	}
	if stale := w.scan(); len(stale) != 0 {
		t.Fatalf("unchanged scan refreshed %v, want nothing", stale)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(header, later, later); err != nil {
		t.Fatal(err)
	}
	stale := w.scan()
	if len(stale) != 1 || stale[0] != "file://"+source {
		t.Fatalf("scan() = %v, want [file://%s]", stale, source)
	}
	if analyzed[source] != 2 {
		t.Errorf("source analyzed %d times, want 2", analyzed[source])
	}
	if analyzed[other] != 1 {
		t.Errorf("other analyzed %d times, want 1", analyzed[other])
	}

	if stale := w.scan(); len(stale) != 0 {
		t.Errorf("scan after refresh = %v, want nothing", stale)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	ls := newTestServer(t, nil)
	w := newWatcher(ls, time.Millisecond)
	w.Start()
	w.Stop()
	w.Stop()
}
