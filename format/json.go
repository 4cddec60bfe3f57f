package format

import (
	"encoding/json"
	"io"

	"github.com/camgunz/cdump/cdef"
)

type JSONEncoder struct {
	w     io.Writer
	table *cdef.Table
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(table *cdef.Table) error {
	e.table = table
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(TableDict(e.table), "", "  ")
}

// DecodeJSON reads a table written by JSONEncoder.
func DecodeJSON(r io.Reader) (*cdef.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := NewDict()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return TableFromDict(d)
}
