package resolve

import (
	"strconv"
	"strings"

	"github.com/camgunz/cdump/ast"
	"github.com/camgunz/cdump/cdef"
)

var builtinClasses = map[string]cdef.Kind{
	"void":        cdef.KindVoid,
	"_Bool":       cdef.KindBool,
	"bool":        cdef.KindBool,
	"float":       cdef.KindFloatingPoint,
	"double":      cdef.KindFloatingPoint,
	"long double": cdef.KindFloatingPoint,
	"_Float16":    cdef.KindFloatingPoint,
	"__fp16":      cdef.KindFloatingPoint,
	"__bf16":      cdef.KindFloatingPoint,
	"_Float32":    cdef.KindFloatingPoint,
	"_Float64":    cdef.KindFloatingPoint,
	"_Float128":   cdef.KindFloatingPoint,
	"__float128":  cdef.KindFloatingPoint,
	"__ibm128":    cdef.KindFloatingPoint,
}

// Character types the C standard makes unsigned regardless of spelling.
var unsignedIntegers = map[string]bool{
	"char8_t":  true,
	"char16_t": true,
	"char32_t": true,
}

func classifyBuiltin(name string) cdef.Kind {
	if k, ok := builtinClasses[name]; ok {
		return k
	}
	if strings.Contains(name, "_Complex") || strings.Contains(name, "complex") {
		return cdef.KindComplex
	}
	return cdef.KindInteger
}

func builtinSigned(class cdef.Kind, name string) bool {
	switch class {
	case cdef.KindInteger:
		return !strings.Contains(name, "unsigned") && !unsignedIntegers[name]
	case cdef.KindFloatingPoint, cdef.KindComplex:
		return true
	}
	return false
}

func (b *Builder) builtin(node ast.Node) (cdef.Type, error) {
	name := node.Attr(ast.AttrName)
	class := classifyBuiltin(name)
	t := cdef.Builtin{
		Class:  class,
		Name:   name,
		Signed: builtinSigned(class, name),
	}
	if class == cdef.KindVoid {
		return t, nil
	}

	var err error
	if t.Size, err = byteAttr(node, ast.AttrSize); err != nil {
		return nil, err
	}
	if t.Align, err = byteAttr(node, ast.AttrAlign); err != nil {
		return nil, err
	}
	return t, nil
}

// byteAttr reads a size reported in bits and returns it in bytes.
func byteAttr(node ast.Node, name string) (*int64, error) {
	v, err := intAttr(node, name)
	if err != nil || v == nil {
		return nil, err
	}
	return cdef.Int(*v / 8), nil
}

func intAttr(node ast.Node, name string) (*int64, error) {
	raw := node.Attr(name)
	if raw == "" {
		return nil, nil
	}
	// gccxml writes array bounds as C literals ("15u").
	digits := strings.TrimRight(raw, "uUlL")
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(digits, 10, 64)
		if uerr != nil {
			return nil, &attrError{node: ast.Describe(node), attr: name, value: raw, err: err}
		}
		v = int64(u)
	}
	return &v, nil
}

type attrError struct {
	node  string
	attr  string
	value string
	err   error
}

func (e *attrError) Error() string {
	return "bad " + e.attr + "=" + strconv.Quote(e.value) + " on " + e.node + ": " + e.err.Error()
}

func (e *attrError) Unwrap() error { return e.err }
