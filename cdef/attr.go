package cdef

import (
	"strconv"
	"strings"
)

type AttrKind int

const (
	AttrString AttrKind = iota
	AttrInt
	AttrBool
	AttrType
	AttrMembers
	AttrEnumerators
)

// Attr is one named attribute of an entity. Value holds string, int64, bool,
// Type, []Member or []Enumerator according to Kind, or nil when the
// attribute is absent.
type Attr struct {
	Name  string
	Kind  AttrKind
	Value any
}

type Member struct {
	Name string
	Type Type
}

type Enumerator struct {
	Name  string
	Value int64
}

func stringAttr(name, value string) Attr {
	a := Attr{Name: name, Kind: AttrString}
	if value != "" {
		a.Value = value
	}
	return a
}

func intAttr(name string, value *int64) Attr {
	a := Attr{Name: name, Kind: AttrInt}
	if value != nil {
		a.Value = *value
	}
	return a
}

func boolAttr(name string, value bool) Attr {
	return Attr{Name: name, Kind: AttrBool, Value: value}
}

func typeAttr(name string, value Type) Attr {
	a := Attr{Name: name, Kind: AttrType}
	if value != nil {
		a.Value = value
	}
	return a
}

func membersAttr(name string, value []Member) Attr {
	return Attr{Name: name, Kind: AttrMembers, Value: value}
}

func enumeratorsAttr(name string, value []Enumerator) Attr {
	return Attr{Name: name, Kind: AttrEnumerators, Value: value}
}

// Int returns a pointer to v, for optional integer attributes.
func Int(v int64) *int64 {
	return &v
}

// display renders kind(attr=value, ...).
func display(t Type) string {
	var sb strings.Builder
	sb.WriteString(t.Kind().String())
	sb.WriteByte('(')
	for i, a := range t.Attrs() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name)
		sb.WriteByte('=')
		writeValue(&sb, a)
	}
	sb.WriteByte(')')
	return sb.String()
}

func writeValue(sb *strings.Builder, a Attr) {
	if a.Value == nil {
		sb.WriteString("none")
		return
	}
	switch a.Kind {
	case AttrString:
		sb.WriteString(strconv.Quote(a.Value.(string)))
	case AttrInt:
		sb.WriteString(strconv.FormatInt(a.Value.(int64), 10))
	case AttrBool:
		sb.WriteString(strconv.FormatBool(a.Value.(bool)))
	case AttrType:
		sb.WriteString(a.Value.(Type).String())
	case AttrMembers:
		sb.WriteByte('{')
		for i, m := range a.Value.([]Member) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.Name)
			sb.WriteString(": ")
			sb.WriteString(m.Type.String())
		}
		sb.WriteByte('}')
	case AttrEnumerators:
		sb.WriteByte('{')
		for i, e := range a.Value.([]Enumerator) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Name)
			sb.WriteString(": ")
			sb.WriteString(strconv.FormatInt(e.Value, 10))
		}
		sb.WriteByte('}')
	}
}
