// Package format renders definition tables as JSON, YAML or tab-separated
// lines, and reads the dictionary form back.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/camgunz/cdump/cdef"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(table *cdef.Table) error
}

// Formats lists the names accepted by NewEncoder.
var Formats = []string{"json", "yaml", "line"}

func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json", "":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}
