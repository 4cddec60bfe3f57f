package format

import (
	"strconv"
	"strings"

	"github.com/camgunz/cdump/cdef"
)

// Spell renders t roughly the way C would name it: "const char *",
// "struct Node", "int (*)(int, int)". SelfReference spells as "self".
func Spell(t cdef.Type) string {
	switch v := t.(type) {
	case nil:
		return "?"
	case cdef.Builtin:
		s := v.Name
		if v.Volatile {
			s = "volatile " + s
		}
		if v.Const {
			s = "const " + s
		}
		return s
	case cdef.Reference:
		if v.Target.InTagNamespace() {
			return v.Target.String() + " " + v.Name
		}
		return v.Name
	case cdef.SelfReference:
		return "self"
	case cdef.Pointer:
		star := "*"
		if v.Block {
			star = "^"
		}
		if v.Const {
			star += " const"
		}
		if v.Volatile {
			star += " volatile"
		}
		if !v.CanAlias {
			star += " restrict"
		}
		return Spell(v.Base) + " " + star
	case cdef.Const:
		if cdef.IsConst(v.Type) {
			return Spell(v.Type)
		}
		return qualify("const", v.Type)
	case cdef.Volatile:
		if cdef.IsVolatile(v.Type) {
			return Spell(v.Type)
		}
		return qualify("volatile", v.Type)
	case cdef.Array:
		count := ""
		if v.Count != nil {
			count = strconv.FormatInt(*v.Count, 10)
		}
		return Spell(v.Element) + "[" + count + "]"
	case cdef.Signature:
		var declarator string
		switch v.Form {
		case cdef.KindFunctionPointer:
			declarator = " (*)"
		case cdef.KindBlockFunctionPointer:
			declarator = " (^)"
		}
		return Spell(v.Return) + declarator + "(" + spellParams(v.Parameters, v.Variadic) + ")"
	case cdef.Record:
		if v.Name == "" {
			return v.Kind().String() + " {...}"
		}
		return v.Kind().String() + " " + v.Name
	case cdef.Enum:
		if v.Name == "" {
			return "enum {...}"
		}
		return "enum " + v.Name
	case cdef.Typedef:
		return v.Name
	case cdef.Function:
		return Spell(v.Return) + " " + v.Name + "(" + spellParams(v.Parameters, v.Variadic) + ")"
	}
	return t.Kind().String()
}

// Qualifiers on pointers follow the star.
func qualify(q string, t cdef.Type) string {
	if t != nil && (t.Kind() == cdef.KindPointer || t.Kind() == cdef.KindBlockPointer) {
		return Spell(t) + " " + q
	}
	return q + " " + Spell(t)
}

func spellParams(params []cdef.Member, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, Spell(p.Type))
	}
	if variadic {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, ", ")
}
