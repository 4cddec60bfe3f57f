// Package castxml reads the XML tree produced by castxml and exposes it as an
// ast.Provider.
package castxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/camgunz/cdump/ast"
)

type element struct {
	tag      string
	kind     ast.Kind
	attrs    map[string]string
	children []ast.Node
}

func (e *element) Kind() ast.Kind { return e.kind }

func (e *element) ID() string { return e.attrs[ast.AttrID] }

func (e *element) Attr(name string) string { return e.attrs[name] }

func (e *element) Children() []ast.Node { return e.children }

// Tag returns the XML tag, which differs from Kind().String() for tags cdump
// does not know about.
func (e *element) Tag() string { return e.tag }

type Document struct {
	Format string
	roots  []ast.Node
	byID   map[string]ast.Node
	files  map[string]string
}

func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open castxml document: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{
		byID:  make(map[string]ast.Node),
		files: make(map[string]string),
	}

	var stack []*element
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode castxml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !sawRoot {
				if t.Name.Local != "CastXML" && t.Name.Local != "GCC_XML" {
					return nil, fmt.Errorf("decode castxml: unexpected root element <%s>", t.Name.Local)
				}
				sawRoot = true
				doc.Format = t.Name.Local
				for _, a := range t.Attr {
					if a.Name.Local == "format" || a.Name.Local == "cvs_revision" {
						doc.Format += " " + a.Value
					}
				}
				stack = append(stack, nil)
				continue
			}
			el := &element{
				tag:   t.Name.Local,
				kind:  ast.KindFromName(t.Name.Local),
				attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if id := el.attrs[ast.AttrID]; id != "" {
				doc.byID[id] = el
			}
			if el.kind == ast.KindFile {
				doc.files[el.attrs[ast.AttrID]] = el.attrs[ast.AttrName]
			}
			parent := stack[len(stack)-1]
			if parent == nil {
				doc.roots = append(doc.roots, el)
			} else {
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("decode castxml: empty document")
	}
	return doc, nil
}

func (d *Document) Roots() []ast.Node {
	return d.roots
}

func (d *Document) Lookup(id string) (ast.Node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

// Len returns the number of nodes with an id.
func (d *Document) Len() int {
	return len(d.byID)
}

// FileID returns the id of the File node whose name is path.
func (d *Document) FileID(path string) (string, bool) {
	for id, name := range d.files {
		if name == path {
			return id, true
		}
	}
	return "", false
}

// FileName returns the path recorded for a File node id.
func (d *Document) FileName(id string) string {
	return d.files[id]
}

// Files returns the paths of every File node, sorted.
func (d *Document) Files() []string {
	out := make([]string, 0, len(d.files))
	for _, name := range d.files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
