package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/camgunz/cdump/castxml"
	"github.com/camgunz/cdump/cdef"
	"github.com/camgunz/cdump/format"
	"github.com/camgunz/cdump/resolve"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	doc, err := castxml.ParseFile("../castxml/testdata/sample.xml")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	table, err := resolve.Resolve(resolve.Options{}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	s, err := NewServer(table)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestIndexRedirects(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("GET / status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/d/" {
		t.Errorf("Location = %q, want /d/", loc)
	}
	if rec := get(t, s, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", rec.Code)
	}
}

func TestDefinitionPage(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/d/struct%20Node", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<h1><span class=\"kind\">struct</span> Node</h1>",
		"self *",
		`&#34;obj_type&#34;: &#34;struct&#34;`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDefinitionLinksReferences(t *testing.T) {
	s := newTestServer(t)
	body := get(t, s, "/d/qsort_r", "").Body.String()
	if !strings.Contains(body, `<td>n</td><td><a href="/d/size_t">size_t</a></td>`) {
		t.Errorf("expected a link to size_t in:\n%s", body)
	}

	body = get(t, s, "/d/size_t", "").Body.String()
	idx := strings.Index(body, "Referenced by")
	if idx < 0 {
		t.Fatal("size_t page has no referrers section")
	}
	if !strings.Contains(body[idx:], `href="/d/qsort_r"`) {
		t.Errorf("qsort_r missing from referrers of size_t")
	}
}

func TestDefinitionJSON(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/d/enum%20Color", "application/json")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	d := format.NewDict()
	if err := d.UnmarshalJSON(rec.Body.Bytes()); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	got, err := format.FromDict(d)
	if err != nil {
		t.Fatalf("FromDict() error = %v", err)
	}
	if got.Kind() != cdef.KindEnum {
		t.Errorf("Kind() = %v, want enum", got.Kind())
	}
}

// The binary must render without the on-disk overlay.
func TestEmbeddedTemplates(t *testing.T) {
	s := newTestServer(t)
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(mustSub(embeddedFS, "templates"), "*.html")
	if err != nil {
		t.Fatalf("ParseFS() error = %v", err)
	}
	def, _ := s.table.Get("struct Node")
	defs, total := s.search("")
	view := DefinitionView{Definitions: defs, Active: def, ActiveKey: "struct Node", TotalMatches: total}

	for _, name := range []string{"definition.html", "sidebar.html"} {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, view); err != nil {
			t.Fatalf("ExecuteTemplate(%s) error = %v", name, err)
		}
		if !strings.Contains(buf.String(), `href="/d/struct%20Node"`) {
			t.Errorf("%s missing the sidebar entry for struct Node:\n%s", name, buf.String())
		}
	}
}

func TestDefinitionNotFound(t *testing.T) {
	s := newTestServer(t)
	if rec := get(t, s, "/d/struct%20Missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSidebarFilters(t *testing.T) {
	s := newTestServer(t)
	body := get(t, s, "/sidebar?q=COLOR", "").Body.String()
	if !strings.Contains(body, "enum Color") {
		t.Errorf("sidebar missing enum Color:\n%s", body)
	}
	if strings.Contains(body, "size_t") {
		t.Errorf("sidebar should not list size_t:\n%s", body)
	}
}

func TestTableAPI(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/table", "")
	table, err := format.DecodeJSON(rec.Body)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if table.Len() != s.table.Len() {
		t.Errorf("Len() = %d, want %d", table.Len(), s.table.Len())
	}
}

func TestReferences(t *testing.T) {
	fn := cdef.Function{
		Name:   "f",
		Return: cdef.Pointer{Base: cdef.Reference{Target: cdef.KindStruct, Name: "Node"}},
		Parameters: []cdef.Member{
			{Name: "n", Type: cdef.Reference{Target: cdef.KindTypedef, Name: "size_t"}},
			{Name: "m", Type: cdef.Const{Type: cdef.Reference{Target: cdef.KindTypedef, Name: "size_t"}}},
			{Name: "s", Type: cdef.Pointer{Base: cdef.SelfReference{}}},
		},
	}
	got := References(fn)
	want := []string{"size_t", "struct Node"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("References() = %v, want %v", got, want)
	}
}
