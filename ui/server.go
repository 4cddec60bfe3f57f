// Package ui serves a browsable view of a definition table over HTTP.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/camgunz/cdump/cdef"
	"github.com/camgunz/cdump/format"
)

//go:embed static templates
var embeddedFS embed.FS

const maxResults = 50

type Server struct {
	table      *cdef.Table
	staticFS   fs.FS
	templateFS fs.FS
	mux        *http.ServeMux
	funcMap    template.FuncMap
}

func NewServer(table *cdef.Table) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	s := &Server{
		table:      table,
		staticFS:   staticFS,
		templateFS: templateFS,
		mux:        http.NewServeMux(),
	}
	s.funcMap = template.FuncMap{
		"key":   cdef.Key,
		"spell": format.Spell,
		"lines": format.Lines,
		"link":  s.link,
		"kind": func(t cdef.Type) string {
			return t.Kind().String()
		},
		"members": func(d cdef.Definition) []cdef.Member {
			switch v := d.(type) {
			case cdef.Record:
				return v.Fields
			case cdef.Function:
				return v.Parameters
			}
			return nil
		},
		"values": func(d cdef.Definition) []cdef.Enumerator {
			if e, ok := d.(cdef.Enum); ok {
				return e.Values
			}
			return nil
		},
	}

	// Fail early on template errors; pages are re-parsed per request so the
	// on-disk overlay can be edited while the server runs.
	if _, err := s.parse(); err != nil {
		return nil, err
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("GET /d/{key...}", s.handleDefinition)
	s.mux.HandleFunc("GET /sidebar", s.handleSidebar)
	s.mux.HandleFunc("GET /api/table", s.handleTable)
	s.mux.HandleFunc("GET /", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) parse() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := s.parse()
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Warning("render failed", "template", name, "error", err.Error())
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// link spells t, turning a referenced definition into a link to its page.
func (s *Server) link(t cdef.Type) template.HTML {
	spelled := template.HTMLEscapeString(format.Spell(t))
	for _, key := range References(t) {
		if _, ok := s.table.Get(key); !ok {
			continue
		}
		escaped := template.HTMLEscapeString(key)
		anchor := fmt.Sprintf(`<a href="/d/%s">%s</a>`, url.PathEscape(key), escaped)
		spelled = strings.Replace(spelled, escaped, anchor, 1)
	}
	return template.HTML(spelled)
}

type DefinitionView struct {
	Definitions  []cdef.Definition
	Active       cdef.Definition
	ActiveKey    string
	JSON         string
	Referrers    []cdef.Definition
	Query        string
	TotalMatches int
	HasMore      bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/d/", http.StatusSeeOther)
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	defs, total := s.search("")
	data := DefinitionView{
		Definitions:  defs,
		TotalMatches: total,
		HasMore:      total > len(defs),
	}

	if key != "" {
		def, ok := s.table.Get(key)
		if !ok {
			http.Error(w, "definition not found", http.StatusNotFound)
			return
		}

		if r.Header.Get("Accept") == "application/json" {
			writeJSON(w, format.ToDict(def))
			return
		}

		encoded, err := json.MarshalIndent(format.ToDict(def), "", "  ")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Active = def
		data.ActiveKey = key
		data.JSON = string(encoded)
		data.Referrers = Referrers(s.table, key)
	}

	s.render(w, "definition.html", data)
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	defs, total := s.search(query)
	s.render(w, "sidebar.html", DefinitionView{
		Definitions:  defs,
		ActiveKey:    r.URL.Query().Get("active"),
		Query:        query,
		TotalMatches: total,
		HasMore:      total > len(defs),
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, format.TableDict(s.table))
}

// search returns up to maxResults definitions whose key contains query,
// ignoring case, and the total number of matches.
func (s *Server) search(query string) ([]cdef.Definition, int) {
	query = strings.ToLower(query)
	var matches []cdef.Definition
	total := 0
	for _, def := range s.table.Definitions() {
		if query != "" && !strings.Contains(strings.ToLower(cdef.Key(def)), query) {
			continue
		}
		total++
		if len(matches) < maxResults {
			matches = append(matches, def)
		}
	}
	return matches, total
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Warning("encode response", "error", err.Error())
	}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from primaryPath on disk when present, falling back
// to secondary.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)
	for _, fsys := range []fs.FS{o.secondary, o.primary} {
		if list, err := fs.ReadDir(fsys, name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}
