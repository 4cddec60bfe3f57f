package format

import (
	"fmt"

	"github.com/camgunz/cdump/cdef"
)

// ToDict renders t as {"obj_type": kind, attr: value, ...} in attribute
// order. Nested types become nested dictionaries, member lists map names to
// type dictionaries and enumerator lists map names to integers.
func ToDict(t cdef.Type) *Dict {
	d := NewDict()
	d.Set("obj_type", t.Kind().String())
	for _, a := range t.Attrs() {
		d.Set(a.Name, attrValue(a))
	}
	return d
}

func attrValue(a cdef.Attr) any {
	if a.Value == nil {
		return nil
	}
	switch a.Kind {
	case cdef.AttrType:
		return ToDict(a.Value.(cdef.Type))
	case cdef.AttrMembers:
		members := NewDict()
		for _, m := range a.Value.([]cdef.Member) {
			members.Set(m.Name, ToDict(m.Type))
		}
		return members
	case cdef.AttrEnumerators:
		values := NewDict()
		for _, e := range a.Value.([]cdef.Enumerator) {
			values.Set(e.Name, e.Value)
		}
		return values
	}
	return a.Value
}

// TableDict renders every definition of table keyed by its table key.
func TableDict(table *cdef.Table) *Dict {
	d := NewDict()
	for _, def := range table.Definitions() {
		d.Set(cdef.Key(def), ToDict(def))
	}
	return d
}

// TableFromDict rebuilds a table rendered by TableDict.
func TableFromDict(d *Dict) (*cdef.Table, error) {
	table := cdef.NewTable()
	for _, key := range d.Keys() {
		v, _ := d.Get(key)
		sub, ok := v.(*Dict)
		if !ok {
			return nil, fmt.Errorf("%s: expected a definition, got %T", key, v)
		}
		t, err := FromDict(sub)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		def, ok := t.(cdef.Definition)
		if !ok || cdef.Key(def) != key {
			return nil, fmt.Errorf("%s: holds %s", key, t.Kind())
		}
		if _, added := table.Add(def); !added {
			return nil, fmt.Errorf("%s: duplicate key", key)
		}
	}
	return table, nil
}

// FromDict decodes a dictionary produced by ToDict.
func FromDict(d *Dict) (cdef.Type, error) {
	r := dictReader{d: d}
	kind, ok := cdef.ParseKind(r.str("obj_type"))
	if !ok {
		return nil, fmt.Errorf("unknown obj_type %q", r.str("obj_type"))
	}

	var t cdef.Type
	switch kind {
	case cdef.KindVoid, cdef.KindBool, cdef.KindInteger, cdef.KindFloatingPoint, cdef.KindComplex:
		t = cdef.Builtin{
			Class:    kind,
			Name:     r.str("name"),
			Size:     r.num("size"),
			Align:    r.num("alignment"),
			Signed:   r.flag("is_signed"),
			Const:    r.flag("is_const"),
			Volatile: r.flag("is_volatile"),
			Bits:     r.num("bits"),
		}
	case cdef.KindArray:
		t = cdef.Array{Element: r.typ("element_type"), Count: r.num("element_count"), Name: r.str("name")}
	case cdef.KindPointer, cdef.KindBlockPointer:
		t = cdef.Pointer{
			Base:     r.typ("base_type"),
			Block:    kind == cdef.KindBlockPointer,
			Const:    r.flag("is_const"),
			Volatile: r.flag("is_volatile"),
			CanAlias: r.flag("can_alias"),
		}
	case cdef.KindFunctionPointer, cdef.KindBlockFunctionPointer, cdef.KindFunctionType:
		t = cdef.Signature{
			Form:       kind,
			Parameters: r.members("parameters"),
			Return:     r.typ("return_type"),
			Variadic:   r.flag("is_variadic"),
		}
	case cdef.KindEnum:
		t = cdef.Enum{Name: r.str("name"), Underlying: r.typ("type"), Values: r.enumerators("values")}
	case cdef.KindStruct, cdef.KindUnion:
		t = cdef.Record{
			Union:  kind == cdef.KindUnion,
			Name:   r.str("name"),
			Fields: r.members("fields"),
			Opaque: r.flag("is_opaque"),
		}
	case cdef.KindTypedef:
		t = cdef.Typedef{Name: r.str("name"), Type: r.typ("type")}
	case cdef.KindFunction:
		t = cdef.Function{
			Name:       r.str("name"),
			Parameters: r.members("parameters"),
			Return:     r.typ("return_type"),
			Variadic:   r.flag("is_variadic"),
		}
	case cdef.KindReference:
		target, ok := cdef.ParseKind(r.str("type"))
		if !ok && r.err == nil {
			r.err = fmt.Errorf("reference to unknown kind %q", r.str("type"))
		}
		t = cdef.Reference{Target: target, Name: r.str("name")}
	case cdef.KindSelfReference:
		t = cdef.SelfReference{}
	case cdef.KindConst:
		t = cdef.Const{Type: r.typ("type")}
	case cdef.KindVolatile:
		t = cdef.Volatile{Type: r.typ("type")}
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", kind, r.err)
	}
	return t, nil
}

// dictReader reads typed attributes and keeps the first error.
type dictReader struct {
	d   *Dict
	err error
}

func (r *dictReader) fail(key string, want string, got any) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: expected %s, got %T", key, want, got)
	}
}

func (r *dictReader) str(key string) string {
	v, _ := r.d.Get(key)
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	r.fail(key, "string", v)
	return ""
}

func (r *dictReader) num(key string) *int64 {
	v, _ := r.d.Get(key)
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return cdef.Int(n)
	case int:
		return cdef.Int(int64(n))
	}
	r.fail(key, "integer", v)
	return nil
}

func (r *dictReader) flag(key string) bool {
	v, _ := r.d.Get(key)
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	}
	r.fail(key, "bool", v)
	return false
}

func (r *dictReader) dict(key string) *Dict {
	v, _ := r.d.Get(key)
	switch sub := v.(type) {
	case nil:
		return nil
	case *Dict:
		return sub
	}
	r.fail(key, "mapping", v)
	return nil
}

func (r *dictReader) typ(key string) cdef.Type {
	sub := r.dict(key)
	if sub == nil {
		return nil
	}
	t, err := FromDict(sub)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
	return t
}

func (r *dictReader) members(key string) []cdef.Member {
	sub := r.dict(key)
	if sub == nil {
		return nil
	}
	var out []cdef.Member
	nested := dictReader{d: sub}
	for _, name := range sub.Keys() {
		out = append(out, cdef.Member{Name: name, Type: nested.typ(name)})
	}
	if nested.err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, nested.err)
	}
	return out
}

func (r *dictReader) enumerators(key string) []cdef.Enumerator {
	sub := r.dict(key)
	if sub == nil {
		return nil
	}
	var out []cdef.Enumerator
	nested := dictReader{d: sub}
	for _, name := range sub.Keys() {
		if v := nested.num(name); v != nil {
			out = append(out, cdef.Enumerator{Name: name, Value: *v})
		}
	}
	if nested.err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, nested.err)
	}
	return out
}
