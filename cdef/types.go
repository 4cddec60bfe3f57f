package cdef

// Type is implemented by every model entity. Entities are values and are not
// modified after construction.
type Type interface {
	Kind() Kind
	Attrs() []Attr
	String() string
}

// Definition is a Type that can be stored in a Table.
type Definition interface {
	Type
	DefinitionName() string
}

// Builtin is a void, bool, integer, floating-point or complex type. Class
// selects which.
type Builtin struct {
	Class    Kind
	Name     string
	Size     *int64
	Align    *int64
	Signed   bool
	Const    bool
	Volatile bool
	// Bits is the bit-field width of an integer field, nil otherwise.
	Bits *int64
}

func (b Builtin) Kind() Kind { return b.Class }

func (b Builtin) Attrs() []Attr {
	return []Attr{
		stringAttr("name", b.Name),
		intAttr("size", b.Size),
		intAttr("alignment", b.Align),
		boolAttr("is_signed", b.Signed),
		boolAttr("is_const", b.Const),
		boolAttr("is_volatile", b.Volatile),
		intAttr("bits", b.Bits),
	}
}

func (b Builtin) String() string { return display(b) }

type Array struct {
	Element Type
	// Count is nil for incomplete arrays.
	Count *int64
	Name  string
}

func (a Array) Kind() Kind { return KindArray }

func (a Array) Attrs() []Attr {
	return []Attr{
		typeAttr("element_type", a.Element),
		intAttr("element_count", a.Count),
		stringAttr("name", a.Name),
	}
}

func (a Array) String() string { return display(a) }

// Pointer is a data pointer, or a block (closure) pointer when Block is set.
type Pointer struct {
	Base     Type
	Block    bool
	Const    bool
	Volatile bool
	CanAlias bool
}

func (p Pointer) Kind() Kind {
	if p.Block {
		return KindBlockPointer
	}
	return KindPointer
}

func (p Pointer) Attrs() []Attr {
	return []Attr{
		typeAttr("base_type", p.Base),
		boolAttr("is_const", p.Const),
		boolAttr("is_volatile", p.Volatile),
		boolAttr("can_alias", p.CanAlias),
	}
}

func (p Pointer) String() string { return display(p) }

// Signature is a function type without an owning declaration. Form is
// KindFunctionPointer, KindBlockFunctionPointer or KindFunctionType.
type Signature struct {
	Form       Kind
	Parameters []Member
	Return     Type
	Variadic   bool
}

func (s Signature) Kind() Kind { return s.Form }

func (s Signature) Attrs() []Attr {
	return []Attr{
		membersAttr("parameters", s.Parameters),
		typeAttr("return_type", s.Return),
		boolAttr("is_variadic", s.Variadic),
	}
}

func (s Signature) String() string { return display(s) }

type Enum struct {
	Name       string
	Underlying Type
	Values     []Enumerator
}

func (e Enum) Kind() Kind { return KindEnum }

func (e Enum) Attrs() []Attr {
	return []Attr{
		stringAttr("name", e.Name),
		typeAttr("type", e.Underlying),
		enumeratorsAttr("values", e.Values),
	}
}

func (e Enum) String() string { return display(e) }

func (e Enum) DefinitionName() string { return e.Name }

// Record is a struct, or a union when Union is set. An empty Name means the
// record is anonymous.
type Record struct {
	Union  bool
	Name   string
	Fields []Member
	// Opaque is set for declarations the front-end reported as incomplete.
	Opaque bool
}

func (r Record) Kind() Kind {
	if r.Union {
		return KindUnion
	}
	return KindStruct
}

func (r Record) Attrs() []Attr {
	return []Attr{
		stringAttr("name", r.Name),
		membersAttr("fields", r.Fields),
		boolAttr("is_opaque", r.Opaque),
	}
}

func (r Record) String() string { return display(r) }

func (r Record) DefinitionName() string { return r.Name }

// Field returns the named field.
func (r Record) Field(name string) (Type, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

type Typedef struct {
	Name string
	Type Type
}

func (t Typedef) Kind() Kind { return KindTypedef }

func (t Typedef) Attrs() []Attr {
	return []Attr{
		stringAttr("name", t.Name),
		typeAttr("type", t.Type),
	}
}

func (t Typedef) String() string { return display(t) }

func (t Typedef) DefinitionName() string { return t.Name }

type Function struct {
	Name       string
	Parameters []Member
	Return     Type
	Variadic   bool
}

func (f Function) Kind() Kind { return KindFunction }

func (f Function) Attrs() []Attr {
	return []Attr{
		stringAttr("name", f.Name),
		membersAttr("parameters", f.Parameters),
		typeAttr("return_type", f.Return),
		boolAttr("is_variadic", f.Variadic),
	}
}

func (f Function) String() string { return display(f) }

func (f Function) DefinitionName() string { return f.Name }

// Reference stands in for a named definition held by a Table.
type Reference struct {
	Target Kind
	Name   string
}

func (r Reference) Kind() Kind { return KindReference }

func (r Reference) Attrs() []Attr {
	return []Attr{
		stringAttr("type", r.Target.String()),
		stringAttr("name", r.Name),
	}
}

func (r Reference) String() string { return display(r) }

// Key returns the table key of the referenced definition.
func (r Reference) Key() string { return KeyFor(r.Target, r.Name) }

// SelfReference means the aggregate that encloses it.
type SelfReference struct{}

func (SelfReference) Kind() Kind { return KindSelfReference }

func (SelfReference) Attrs() []Attr { return nil }

func (s SelfReference) String() string { return display(s) }

type Const struct {
	Type Type
}

func (c Const) Kind() Kind { return KindConst }

func (c Const) Attrs() []Attr { return []Attr{typeAttr("type", c.Type)} }

func (c Const) String() string { return display(c) }

type Volatile struct {
	Type Type
}

func (v Volatile) Kind() Kind { return KindVolatile }

func (v Volatile) Attrs() []Attr { return []Attr{typeAttr("type", v.Type)} }

func (v Volatile) String() string { return display(v) }

// Unwrap strips Const and Volatile wrappers.
func Unwrap(t Type) Type {
	for {
		switch w := t.(type) {
		case Const:
			t = w.Type
		case Volatile:
			t = w.Type
		default:
			return t
		}
	}
}
