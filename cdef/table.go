package cdef

// Table is the ordered collection of top-level definitions. Struct, union
// and enum definitions are keyed in the C tag namespace ("struct Point"),
// typedefs and functions by their bare name. The first definition offered
// for a key is kept.
//
// A Table is not safe for concurrent mutation.
type Table struct {
	keys []string
	defs map[string]Definition
}

func NewTable() *Table {
	return &Table{defs: make(map[string]Definition)}
}

// KeyFor returns the table key for a definition of kind named name.
func KeyFor(kind Kind, name string) string {
	if name == "" {
		return ""
	}
	if kind.InTagNamespace() {
		return kind.String() + " " + name
	}
	return name
}

// Key returns the table key of d, or "" if d is anonymous.
func Key(d Definition) string {
	return KeyFor(d.Kind(), d.DefinitionName())
}

// Add inserts d unless its key is taken. It returns the definition already
// stored under the key and false when d was not added. Anonymous
// definitions are never added.
func (t *Table) Add(d Definition) (Definition, bool) {
	key := Key(d)
	if key == "" {
		return nil, false
	}
	if existing, ok := t.defs[key]; ok {
		return existing, false
	}
	t.keys = append(t.keys, key)
	t.defs[key] = d
	return nil, true
}

func (t *Table) Get(key string) (Definition, bool) {
	d, ok := t.defs[key]
	return d, ok
}

func (t *Table) Lookup(kind Kind, name string) (Definition, bool) {
	return t.Get(KeyFor(kind, name))
}

// Resolve returns the definition a Reference stands for.
func (t *Table) Resolve(ref Reference) (Definition, bool) {
	return t.Get(ref.Key())
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Definitions returns the definitions in insertion order.
func (t *Table) Definitions() []Definition {
	out := make([]Definition, len(t.keys))
	for i, key := range t.keys {
		out[i] = t.defs[key]
	}
	return out
}

func (t *Table) Len() int {
	return len(t.keys)
}
