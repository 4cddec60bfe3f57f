package cdef

import (
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cdump.cdef")

type Modifier int

const (
	ModPointer Modifier = iota
	ModBlock
	ModConst
	ModVolatile
	ModRestrict
)

var modifierNames = map[Modifier]string{
	ModPointer:  "pointer",
	ModBlock:    "block",
	ModConst:    "const",
	ModVolatile: "volatile",
	ModRestrict: "restrict",
}

func (m Modifier) String() string {
	return modifierNames[m]
}

// Modifiers is a modifier stack recorded outermost-first, in the order the
// qualifier layers were unwrapped.
type Modifiers []Modifier

func (m Modifiers) String() string {
	parts := make([]string, len(m))
	for i, mod := range m {
		parts[i] = mod.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Apply wraps t with the stack. The innermost (last recorded) modifier wraps
// t first, so the first recorded modifier ends up outermost and the result
// reads like the declarator: const int * is Pointer(Const(int)).
//
// Const and Volatile layers also set the qualifier flag of the Pointer or
// Builtin they wrap. Restrict adds no layer; it clears CanAlias on the
// pointer it qualifies.
func (m Modifiers) Apply(t Type) Type {
	for i := len(m) - 1; i >= 0; i-- {
		switch m[i] {
		case ModPointer:
			t = Pointer{Base: t, CanAlias: true}
		case ModBlock:
			t = Pointer{Base: t, Block: true, CanAlias: true}
		case ModConst:
			t = Const{Type: setQualifier(t, ModConst)}
		case ModVolatile:
			t = Volatile{Type: setQualifier(t, ModVolatile)}
		case ModRestrict:
			if p, ok := t.(Pointer); ok {
				p.CanAlias = false
				t = p
			} else {
				log.Debug("restrict dropped", "type", t.Kind().String())
			}
		}
	}
	return t
}

// setQualifier sets the const or volatile flag on the entity under any
// qualifier wrappers of t.
func setQualifier(t Type, mod Modifier) Type {
	switch v := t.(type) {
	case Pointer:
		if mod == ModConst {
			v.Const = true
		} else {
			v.Volatile = true
		}
		return v
	case Builtin:
		if mod == ModConst {
			v.Const = true
		} else {
			v.Volatile = true
		}
		return v
	case Const:
		v.Type = setQualifier(v.Type, mod)
		return v
	case Volatile:
		v.Type = setQualifier(v.Type, mod)
		return v
	}
	return t
}

// IsConst reports whether the Pointer or Builtin under t's qualifier
// wrappers is const.
func IsConst(t Type) bool {
	switch v := Unwrap(t).(type) {
	case Pointer:
		return v.Const
	case Builtin:
		return v.Const
	}
	return false
}

// IsVolatile is IsConst for volatile.
func IsVolatile(t Type) bool {
	switch v := Unwrap(t).(type) {
	case Pointer:
		return v.Volatile
	case Builtin:
		return v.Volatile
	}
	return false
}

// Layers counts the wrapper layers Apply adds.
func (m Modifiers) Layers() int {
	n := 0
	for _, mod := range m {
		if mod != ModRestrict {
			n++
		}
	}
	return n
}

// Innermost returns the last recorded modifier that adds a layer, skipping
// restrict qualifiers recorded after it.
func (m Modifiers) Innermost() (Modifier, int, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i] != ModRestrict {
			return m[i], i, true
		}
	}
	return 0, -1, false
}

// Without returns a copy of the stack with the modifier at index i removed.
func (m Modifiers) Without(i int) Modifiers {
	out := make(Modifiers, 0, len(m)-1)
	out = append(out, m[:i]...)
	return append(out, m[i+1:]...)
}
