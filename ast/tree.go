package ast

import "strconv"

// Tree is an in-memory provider. Nodes link to the nodes they reference
// directly; lookup identifiers are synthesized from the linked node objects
// the first time a node joins the tree, so a live front-end can hand its
// cursor objects over without keeping a separate index.
type Tree struct {
	roots []Node
	byID  map[string]*Elem
	next  int
}

func NewTree() *Tree {
	return &Tree{byID: make(map[string]*Elem)}
}

// Elem is a node of a Tree.
type Elem struct {
	tree     *Tree
	kind     Kind
	id       string
	attrs    map[string]string
	refs     map[string][]*Elem
	children []Node
}

// New creates a node owned by the tree. It is not a root until Add is
// called on it.
func (t *Tree) New(kind Kind, attrs ...string) *Elem {
	e := &Elem{
		tree:  t,
		kind:  kind,
		attrs: make(map[string]string, len(attrs)/2),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.attrs[attrs[i]] = attrs[i+1]
	}
	t.register(e)
	return e
}

// Add appends nodes to the root list.
func (t *Tree) Add(elems ...*Elem) *Tree {
	for _, e := range elems {
		t.roots = append(t.roots, e)
	}
	return t
}

func (t *Tree) register(e *Elem) {
	if e.id != "" {
		return
	}
	if id := e.attrs[AttrID]; id != "" {
		e.id = id
	} else {
		t.next++
		e.id = "m" + strconv.Itoa(t.next)
	}
	t.byID[e.id] = e
}

func (t *Tree) Roots() []Node {
	return t.roots
}

func (t *Tree) Lookup(id string) (Node, bool) {
	e, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// Ref links attr to target, e.g. a PointerType's "type".
func (e *Elem) Ref(attr string, target *Elem) *Elem {
	if e.refs == nil {
		e.refs = make(map[string][]*Elem)
	}
	e.refs[attr] = []*Elem{target}
	return e
}

// Members links a Struct or Union to its member nodes in order.
func (e *Elem) Members(members ...*Elem) *Elem {
	if e.refs == nil {
		e.refs = make(map[string][]*Elem)
	}
	e.refs[AttrMembers] = append(e.refs[AttrMembers], members...)
	return e
}

// Append adds child nodes such as Arguments or EnumValues.
func (e *Elem) Append(children ...*Elem) *Elem {
	for _, c := range children {
		e.children = append(e.children, c)
	}
	return e
}

// Set assigns a plain attribute.
func (e *Elem) Set(name, value string) *Elem {
	e.attrs[name] = value
	return e
}

func (e *Elem) Kind() Kind { return e.kind }

func (e *Elem) ID() string { return e.id }

func (e *Elem) Attr(name string) string {
	if name == AttrID {
		return e.id
	}
	if targets, ok := e.refs[name]; ok {
		s := ""
		for i, target := range targets {
			if i > 0 {
				s += " "
			}
			s += target.id
		}
		return s
	}
	return e.attrs[name]
}

func (e *Elem) Children() []Node {
	return e.children
}
