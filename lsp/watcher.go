package lsp

import (
	"os"
	"sync"
	"time"
)

// watcher polls the files cached documents were built from, headers
// included, and re-analyzes a document when one of them changes on disk.
type watcher struct {
	ls       *Server
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	modTimes map[string]time.Time
}

func newWatcher(ls *Server, interval time.Duration) *watcher {
	return &watcher{
		ls:       ls,
		interval: interval,
		stopCh:   make(chan struct{}),
		modTimes: make(map[string]time.Time),
	}
}

func (w *watcher) Start() {
	go w.run()
}

func (w *watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *watcher) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan refreshes every document with a changed input and returns their
// URIs. A file seen for the first time only records its modification time.
func (w *watcher) scan() []string {
	uris := w.ls.docs.Keys()
	files := make(map[string][]string, len(uris))
	current := make(map[string]time.Time)
	for _, uri := range uris {
		doc, ok := w.ls.docs.Peek(uri)
		if !ok {
			continue
		}
		files[uri] = doc.Files
		for _, path := range doc.Files {
			if _, seen := current[path]; seen {
				continue
			}
			if info, err := os.Stat(path); err == nil {
				current[path] = info.ModTime()
			}
		}
	}

	changed := make(map[string]bool)
	for path, mod := range current {
		if last, known := w.modTimes[path]; known && mod.After(last) {
			changed[path] = true
		}
	}
	w.modTimes = current

	var stale []string
	for _, uri := range uris {
		for _, path := range files[uri] {
			if changed[path] {
				stale = append(stale, uri)
				break
			}
		}
	}

	for _, uri := range stale {
		log.Info("inputs changed on disk", "uri", uri)
		w.ls.refresh(uri, nil)
	}
	return stale
}
