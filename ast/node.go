// Package ast describes the node tree cdump consumes from a C front-end.
//
// A provider exposes top-level declarations in document order and a lookup
// by identifier that is independent of tree position, so forward and
// cross-scope type references can be followed. Attribute names follow the
// castxml vocabulary.
package ast

type Kind int

const (
	KindUnknown Kind = iota

	// Types
	KindFundamentalType
	KindPointerType
	KindBlockPointerType
	KindCvQualifiedType
	KindElaboratedType
	KindArrayType
	KindFunctionType

	// Declarations
	KindTypedef
	KindStruct
	KindUnion
	KindClass
	KindEnumeration
	KindFunction
	KindVariable
	KindField

	// Children
	KindEnumValue
	KindArgument
	KindEllipsis

	// Bookkeeping
	KindNamespace
	KindFile
	KindUnimplemented
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindFundamentalType:  "FundamentalType",
	KindPointerType:      "PointerType",
	KindBlockPointerType: "BlockPointerType",
	KindCvQualifiedType:  "CvQualifiedType",
	KindElaboratedType:   "ElaboratedType",
	KindArrayType:        "ArrayType",
	KindFunctionType:     "FunctionType",
	KindTypedef:          "Typedef",
	KindStruct:           "Struct",
	KindUnion:            "Union",
	KindClass:            "Class",
	KindEnumeration:      "Enumeration",
	KindFunction:         "Function",
	KindVariable:         "Variable",
	KindField:            "Field",
	KindEnumValue:        "EnumValue",
	KindArgument:         "Argument",
	KindEllipsis:         "Ellipsis",
	KindNamespace:        "Namespace",
	KindFile:             "File",
	KindUnimplemented:    "Unimplemented",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// KindFromName maps a front-end tag such as "PointerType" to its Kind.
// Unrecognized tags map to KindUnknown.
func KindFromName(name string) Kind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

// IsQualifier reports whether nodes of this kind only wrap another type.
func (k Kind) IsQualifier() bool {
	switch k {
	case KindPointerType, KindBlockPointerType, KindCvQualifiedType, KindElaboratedType:
		return true
	}
	return false
}

// Attribute names.
const (
	AttrID         = "id"
	AttrName       = "name"
	AttrType       = "type"
	AttrReturns    = "returns"
	AttrMembers    = "members"
	AttrSize       = "size"
	AttrAlign      = "align"
	AttrConst      = "const"
	AttrVolatile   = "volatile"
	AttrRestrict   = "restrict"
	AttrMin        = "min"
	AttrMax        = "max"
	AttrBits       = "bits"
	AttrInit       = "init"
	AttrIncomplete = "incomplete"
	AttrFile       = "file"
	AttrLine       = "line"
	AttrContext    = "context"
)

type Node interface {
	Kind() Kind
	ID() string
	// Attr returns the attribute value, or "" when the attribute is absent.
	Attr(name string) string
	Children() []Node
}

type Provider interface {
	// Roots returns the top-level nodes in document order.
	Roots() []Node
	Lookup(id string) (Node, bool)
}

// Flag reports whether a boolean attribute such as const="1" is set.
func Flag(n Node, name string) bool {
	v := n.Attr(name)
	return v != "" && v != "0"
}

// ChildrenOf returns the children of n with the given kind, in order.
func ChildrenOf(n Node, kind Kind) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// Describe renders a node the way error messages show it:
// <Kind id="_1" name="foo">.
func Describe(n Node) string {
	s := "<" + n.Kind().String()
	if id := n.ID(); id != "" {
		s += ` id="` + id + `"`
	}
	if name := n.Attr(AttrName); name != "" {
		s += ` name="` + name + `"`
	}
	return s + ">"
}
