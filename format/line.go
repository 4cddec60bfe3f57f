package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/camgunz/cdump/cdef"
)

// LineEncoder writes one tab-separated header line per definition, followed
// by one line per field, parameter or enumerator:
//
//	struct	Node	-
//	field	next	self *	-
//	function	printf	int	variadic
//	param	arg0	const char *
type LineEncoder struct {
	w     io.Writer
	table *cdef.Table
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(table *cdef.Table) error {
	e.table = table
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, def := range e.table.Definitions() {
		writeLines(&sb, def)
	}
	return []byte(sb.String()), nil
}

// Lines renders a single definition the way LineEncoder does.
func Lines(def cdef.Definition) string {
	var sb strings.Builder
	writeLines(&sb, def)
	return sb.String()
}

func writeLines(sb *strings.Builder, def cdef.Definition) {
	switch d := def.(type) {
	case cdef.Record:
		fmt.Fprintf(sb, "%s\t%s\t%s\n", d.Kind(), d.Name, opaqueStr(d.Opaque))
		for _, f := range d.Fields {
			fmt.Fprintf(sb, "field\t%s\t%s\t%s\n", f.Name, Spell(f.Type), bitsStr(f.Type))
		}
	case cdef.Enum:
		fmt.Fprintf(sb, "enum\t%s\t%s\n", d.Name, Spell(d.Underlying))
		for _, v := range d.Values {
			fmt.Fprintf(sb, "value\t%s\t%d\n", v.Name, v.Value)
		}
	case cdef.Typedef:
		fmt.Fprintf(sb, "typedef\t%s\t%s\n", d.Name, Spell(d.Type))
	case cdef.Function:
		fmt.Fprintf(sb, "function\t%s\t%s\t%s\n", d.Name, Spell(d.Return), variadicStr(d.Variadic))
		for _, p := range d.Parameters {
			fmt.Fprintf(sb, "param\t%s\t%s\n", p.Name, Spell(p.Type))
		}
	default:
		fmt.Fprintf(sb, "%s\t%s\t%s\n", def.Kind(), def.DefinitionName(), Spell(def))
	}
}

func opaqueStr(opaque bool) string {
	if opaque {
		return "opaque"
	}
	return "-"
}

func variadicStr(variadic bool) string {
	if variadic {
		return "variadic"
	}
	return "-"
}

func bitsStr(t cdef.Type) string {
	if b, ok := cdef.Unwrap(t).(cdef.Builtin); ok && b.Bits != nil {
		return fmt.Sprintf("%d", *b.Bits)
	}
	return "-"
}
