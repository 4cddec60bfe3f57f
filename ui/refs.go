package ui

import (
	"github.com/camgunz/cdump/cdef"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cdump.ui")

// References returns the table keys t refers to, in attribute order and
// without repeats. Inline entities are searched; referenced definitions are
// not followed.
func References(t cdef.Type) []string {
	var keys []string
	seen := make(map[string]bool)
	var visit func(t cdef.Type)
	visit = func(t cdef.Type) {
		if t == nil {
			return
		}
		if ref, ok := t.(cdef.Reference); ok {
			if key := ref.Key(); !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
			return
		}
		for _, a := range t.Attrs() {
			switch v := a.Value.(type) {
			case cdef.Type:
				visit(v)
			case []cdef.Member:
				for _, m := range v {
					visit(m.Type)
				}
			}
		}
	}
	visit(t)
	return keys
}

// Referrers lists the definitions of table that refer to key.
func Referrers(table *cdef.Table, key string) []cdef.Definition {
	var out []cdef.Definition
	for _, def := range table.Definitions() {
		for _, k := range References(def) {
			if k == key {
				out = append(out, def)
				break
			}
		}
	}
	return out
}
