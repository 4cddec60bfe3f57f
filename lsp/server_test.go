package lsp

import (
	"context"
	"errors"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/camgunz/cdump/cdef"
)

const source = `typedef unsigned long size_t;
struct Node { struct Node *next; };
size_t count(struct Node *head);
`

func sampleTable() *cdef.Table {
	size := cdef.Builtin{Class: cdef.KindInteger, Name: "long unsigned int", Size: cdef.Int(8), Align: cdef.Int(8)}
	table := cdef.NewTable()
	table.Add(cdef.Typedef{Name: "size_t", Type: size})
	table.Add(cdef.Record{Name: "Node", Fields: []cdef.Member{
		{Name: "next", Type: cdef.Pointer{Base: cdef.SelfReference{}, CanAlias: true}},
	}})
	table.Add(cdef.Function{
		Name:       "count",
		Return:     cdef.Reference{Target: cdef.KindTypedef, Name: "size_t"},
		Parameters: []cdef.Member{
			{Name: "head", Type: cdef.Pointer{Base: cdef.Reference{Target: cdef.KindStruct, Name: "Node"}, CanAlias: true}},
		},
	})
	return table
}

func TestWordAt(t *testing.T) {
	tests := []struct {
		line, col  int
		prev, word string
	}{
		{0, 8, "typedef", "unsigned"},
		{0, 24, "long", "size_t"},
		{0, 28, "long", "size_t"},
		{1, 8, "struct", "Node"},
		{1, 7, "struct", "Node"},
		{2, 2, "", "size_t"},
		{2, 9, "size_t", "count"},
		{2, 13, "", "struct"},
		{2, 25, "", ""},
		{9, 0, "", ""},
		{0, 500, "", ""},
	}
	for _, tt := range tests {
		prev, word := WordAt(source, tt.line, tt.col)
		if prev != tt.prev || word != tt.word {
			t.Errorf("WordAt(%d, %d) = %q, %q, want %q, %q", tt.line, tt.col, prev, word, tt.prev, tt.word)
		}
	}
}

func TestFind(t *testing.T) {
	table := sampleTable()
	table.Add(cdef.Typedef{Name: "Node", Type: cdef.Reference{Target: cdef.KindStruct, Name: "Node"}})

	tests := []struct {
		prev, word string
		want       string
		found      bool
	}{
		{"", "size_t", "size_t", true},
		{"struct", "Node", "struct Node", true},
		{"", "Node", "Node", true},
		{"enum", "Node", "", false},
		{"", "count", "count", true},
		{"", "missing", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		def, ok := Find(table, tt.prev, tt.word)
		if ok != tt.found {
			t.Errorf("Find(%q, %q) found = %v, want %v", tt.prev, tt.word, ok, tt.found)
			continue
		}
		if ok && cdef.Key(def) != tt.want {
			t.Errorf("Find(%q, %q) = %q, want %q", tt.prev, tt.word, cdef.Key(def), tt.want)
		}
	}

	if _, ok := Find(nil, "", "size_t"); ok {
		t.Error("Find(nil) should find nothing")
	}
}

func TestHoverText(t *testing.T) {
	def, _ := sampleTable().Get("struct Node")
	text := HoverText(def)
	for _, want := range []string{
		"**struct Node**",
		"struct\tNode\t-\n",
		"field\tnext\tself *\t-\n",
		"```json",
		`"obj_type": "struct"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("HoverText() missing %q in:\n%s", want, text)
		}
	}
}

func newTestServer(t *testing.T, analyze AnalyzeFunc) *Server {
	t.Helper()
	ls, err := NewServer("test", Options{CacheSize: 2, Analyze: analyze})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return ls
}

func openDocument(t *testing.T, ls *Server, uri, text string) {
	t.Helper()
	err := ls.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "c", Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen error = %v", err)
	}
}

func hoverAt(t *testing.T, ls *Server, uri string, line, col int) *protocol.Hover {
	t.Helper()
	hover, err := ls.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)},
		},
	})
	if err != nil {
		t.Fatalf("hover error = %v", err)
	}
	return hover
}

func TestServerHover(t *testing.T) {
	var analyzed []string
	ls := newTestServer(t, func(ctx context.Context, path string) (*Analysis, error) {
		analyzed = append(analyzed, path)
		return &Analysis{Table: sampleTable()}, nil
	})
	uri := "file:///src/list.c"
	openDocument(t, ls, uri, source)

	if len(analyzed) != 1 || analyzed[0] != "/src/list.c" {
		t.Fatalf("analyzed = %v, want [/src/list.c]", analyzed)
	}

	hover := hoverAt(t, ls, uri, 1, 9)
	if hover == nil {
		t.Fatal("hover over Node returned nil")
	}
	content, ok := hover.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("hover contents = %T, want MarkupContent", hover.Contents)
	}
	if content.Kind != protocol.MarkupKindMarkdown {
		t.Errorf("hover kind = %q, want markdown", content.Kind)
	}
	if !strings.Contains(content.Value, "**struct Node**") {
		t.Errorf("hover value = %q", content.Value)
	}

	if hover := hoverAt(t, ls, uri, 2, 25); hover != nil {
		t.Errorf("hover over whitespace = %v, want nil", hover)
	}
	if hover := hoverAt(t, ls, "file:///src/other.c", 0, 0); hover != nil {
		t.Errorf("hover on unknown document = %v, want nil", hover)
	}
}

func TestServerKeepsTableOnFailure(t *testing.T) {
	fail := false
	ls := newTestServer(t, func(ctx context.Context, path string) (*Analysis, error) {
		if fail {
			return nil, errors.New("castxml: syntax error")
		}
		return &Analysis{Table: sampleTable()}, nil
	})
	uri := "file:///src/list.c"
	openDocument(t, ls, uri, source)

	fail = true
	edited := "size_t count(struct Node *head)\n"
	err := ls.textDocumentDidSave(nil, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Text:         &edited,
	})
	if err != nil {
		t.Fatalf("didSave error = %v", err)
	}

	doc, ok := ls.Document(uri)
	if !ok {
		t.Fatal("document dropped after failed analysis")
	}
	if doc.Text != edited {
		t.Errorf("doc.Text = %q, want %q", doc.Text, edited)
	}
	if doc.Table == nil || doc.Table.Len() != 3 {
		t.Errorf("previous table not kept: %v", doc.Table)
	}
}

func TestServerChangeAndClose(t *testing.T) {
	ls := newTestServer(t, func(ctx context.Context, path string) (*Analysis, error) {
		return &Analysis{Table: sampleTable()}, nil
	})
	uri := "file:///src/list.c"
	openDocument(t, ls, uri, source)

	err := ls.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "count"}},
	})
	if err != nil {
		t.Fatalf("didChange error = %v", err)
	}
	if hover := hoverAt(t, ls, uri, 0, 2); hover == nil {
		t.Error("hover over count after change returned nil")
	}

	if err := ls.textDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}); err != nil {
		t.Fatalf("didClose error = %v", err)
	}
	if _, ok := ls.Document(uri); ok {
		t.Error("document still cached after close")
	}
}

func TestServerCacheEvicts(t *testing.T) {
	ls := newTestServer(t, func(ctx context.Context, path string) (*Analysis, error) {
		return &Analysis{Table: sampleTable()}, nil
	})
	for _, name := range []string{"a.c", "b.c", "c.c"} {
		openDocument(t, ls, "file:///src/"+name, source)
	}
	if _, ok := ls.Document("file:///src/a.c"); ok {
		t.Error("oldest document should have been evicted")
	}
	if _, ok := ls.Document("file:///src/c.c"); !ok {
		t.Error("newest document missing")
	}
}

func TestServerCompletion(t *testing.T) {
	ls := newTestServer(t, func(ctx context.Context, path string) (*Analysis, error) {
		return &Analysis{Table: sampleTable()}, nil
	})
	uri := "file:///src/list.c"
	openDocument(t, ls, uri, "co\n")

	result, err := ls.textDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 2},
		},
	})
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	items, ok := result.([]protocol.CompletionItem)
	if !ok || len(items) != 1 {
		t.Fatalf("completion = %#v, want one item", result)
	}
	if items[0].Label != "count" || *items[0].Kind != protocol.CompletionItemKindFunction {
		t.Errorf("completion item = %q kind %v", items[0].Label, *items[0].Kind)
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct{ uri, want string }{
		{"file:///src/list.c", "/src/list.c"},
		{"file:///src/with%20space.c", "/src/with space.c"},
		{"/plain/path.c", "/plain/path.c"},
	}
	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if err != nil {
			t.Errorf("uriToPath(%q) error = %v", tt.uri, err)
			continue
		}
		if got != tt.want {
			t.Errorf("uriToPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
