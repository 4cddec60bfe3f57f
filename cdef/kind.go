// Package cdef is the normalized C type model: a closed set of entity kinds,
// each with an ordered attribute list, and the name-keyed table that holds
// top-level definitions.
package cdef

type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindInteger
	KindFloatingPoint
	KindComplex
	KindArray
	KindPointer
	KindBlockPointer
	KindFunctionPointer
	KindBlockFunctionPointer
	KindFunctionType
	KindEnum
	KindStruct
	KindUnion
	KindTypedef
	KindFunction
	KindReference
	KindSelfReference
	KindConst
	KindVolatile
)

var kindNames = map[Kind]string{
	KindVoid:                 "void",
	KindBool:                 "bool",
	KindInteger:              "integer",
	KindFloatingPoint:        "floating_point",
	KindComplex:              "complex",
	KindArray:                "array",
	KindPointer:              "pointer",
	KindBlockPointer:         "block_pointer",
	KindFunctionPointer:      "function_pointer",
	KindBlockFunctionPointer: "block_function_pointer",
	KindFunctionType:         "function_type",
	KindEnum:                 "enum",
	KindStruct:               "struct",
	KindUnion:                "union",
	KindTypedef:              "typedef",
	KindFunction:             "function",
	KindReference:            "reference",
	KindSelfReference:        "self_reference",
	KindConst:                "const",
	KindVolatile:             "volatile",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the obj_type tag.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps an obj_type tag back to its Kind.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindsByName[s]
	return k, ok
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindVoid; k <= KindVolatile; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) IsBuiltin() bool {
	return k <= KindComplex
}

// InTagNamespace reports whether definitions of this kind are named by a C
// tag (struct, union, enum) rather than an ordinary identifier.
func (k Kind) InTagNamespace() bool {
	switch k {
	case KindStruct, KindUnion, KindEnum:
		return true
	}
	return false
}
