// Package lsp serves hover information for C definitions over the Language
// Server Protocol. Saved documents are run through castxml and resolved; the
// resulting tables are cached per document.
package lsp

import (
	"context"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/camgunz/cdump/castxml"
	"github.com/camgunz/cdump/cdef"
	"github.com/camgunz/cdump/resolve"
)

const lsName = "cdump"

var log = commonlog.GetLogger("cdump.lsp")

// Analysis is the result of running one C file through the front-end.
type Analysis struct {
	Table *cdef.Table
	// Files lists every file the front-end read, headers included.
	Files []string
}

// AnalyzeFunc analyzes the C file at path.
type AnalyzeFunc func(ctx context.Context, path string) (*Analysis, error)

type Options struct {
	CastXML  castxml.Options
	Resolve  resolve.Options
	MainOnly bool
	// CacheSize bounds the number of documents whose tables are kept.
	CacheSize int
	// PollInterval is how often the files behind cached documents are
	// checked for changes. Zero disables polling.
	PollInterval time.Duration
	// Analyze replaces the castxml pipeline, mainly for tests.
	Analyze AnalyzeFunc
}

type Document struct {
	URI   string
	Path  string
	Text  string
	Table *cdef.Table
	Files []string
}

type Server struct {
	version string
	opts    Options
	analyze AnalyzeFunc

	handler protocol.Handler
	server  *server.Server

	mu      sync.Mutex
	docs    *lru.Cache[string, *Document]
	watcher *watcher
}

func NewServer(version string, opts Options) (*Server, error) {
	if opts.CacheSize < 1 {
		opts.CacheSize = 64
	}
	docs, err := lru.New[string, *Document](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	ls := &Server{version: version, opts: opts, docs: docs, analyze: opts.Analyze}
	if ls.analyze == nil {
		ls.analyze = ls.runCastXML
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}
	ls.server = server.NewServer(&ls.handler, lsName, false)
	if opts.PollInterval > 0 {
		ls.watcher = newWatcher(ls, opts.PollInterval)
	}
	return ls, nil
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) runCastXML(ctx context.Context, path string) (*Analysis, error) {
	doc, err := castxml.Run(ctx, ls.opts.CastXML, path)
	if err != nil {
		return nil, err
	}
	opts := ls.opts.Resolve
	if ls.opts.MainOnly {
		if id, ok := doc.FileID(path); ok {
			opts.FileID = id
		}
	}
	w := resolve.NewWalker(nil, opts)
	if err := w.Walk(doc); err != nil {
		return nil, err
	}
	for _, f := range w.Failures() {
		log.Info("skipped declaration", "path", path, "node", f.Node, "error", f.Err.Error())
	}
	return &Analysis{Table: w.Table(), Files: doc.Files()}, nil
}

// Document returns the cached state of uri.
func (ls *Server) Document(uri string) (*Document, bool) {
	return ls.docs.Get(uri)
}

// refresh records text for uri and rebuilds its table from the file on disk.
func (ls *Server) refresh(uri string, text *string) {
	path, err := uriToPath(uri)
	if err != nil {
		log.Warning("bad document uri", "uri", uri, "error", err.Error())
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	doc := &Document{URI: uri, Path: path, Files: []string{path}}
	if old, ok := ls.docs.Peek(uri); ok {
		doc.Text = old.Text
		doc.Table = old.Table
		doc.Files = old.Files
	}
	if text != nil {
		doc.Text = *text
	}

	analysis, err := ls.analyze(context.Background(), path)
	if err != nil {
		log.Warning("analysis failed", "path", path, "error", err.Error())
	}
	if analysis != nil {
		doc.Table = analysis.Table
		if len(analysis.Files) > 0 {
			doc.Files = analysis.Files
		}
	}
	ls.docs.Add(uri, doc)
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if ls.watcher != nil {
		ls.watcher.Start()
	}
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	ls.docs.Purge()
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.refresh(params.TextDocument.URI, &params.TextDocument.Text)
	return nil
}

// Unsaved edits only update the text; castxml reads the file from disk.
func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if doc, ok := ls.docs.Get(params.TextDocument.URI); ok {
		updated := *doc
		updated.Text = change.Text
		ls.docs.Add(params.TextDocument.URI, &updated)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.docs.Remove(params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	ls.refresh(params.TextDocument.URI, params.Text)
	return nil
}

func (ls *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := ls.docs.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prev, word := WordAt(doc.Text, int(params.Position.Line), int(params.Position.Character))
	def, ok := Find(doc.Table, prev, word)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: HoverText(def),
		},
	}, nil
}

// textDocumentCompletion offers every definition name known for the
// document.
func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := ls.docs.Get(params.TextDocument.URI)
	if !ok || doc.Table == nil {
		return nil, nil
	}
	_, word := WordAt(doc.Text, int(params.Position.Line), int(params.Position.Character))

	var items []protocol.CompletionItem
	for _, def := range doc.Table.Definitions() {
		name := def.DefinitionName()
		if !strings.HasPrefix(name, word) {
			continue
		}
		kind := completionKind(def.Kind())
		detail := cdef.Key(def)
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items, nil
}

func completionKind(kind cdef.Kind) protocol.CompletionItemKind {
	switch kind {
	case cdef.KindStruct, cdef.KindUnion:
		return protocol.CompletionItemKindStruct
	case cdef.KindEnum:
		return protocol.CompletionItemKindEnum
	case cdef.KindFunction:
		return protocol.CompletionItemKindFunction
	default:
		return protocol.CompletionItemKindTypeParameter
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
