package format

import (
	"bytes"
	"io"

	"github.com/camgunz/cdump/cdef"
	"gopkg.in/yaml.v3"
)

type YAMLEncoder struct {
	w     io.Writer
	table *cdef.Table
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(table *cdef.Table) error {
	e.table = table
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(TableDict(e.table)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeYAML reads a table written by YAMLEncoder.
func DecodeYAML(r io.Reader) (*cdef.Table, error) {
	d := NewDict()
	if err := yaml.NewDecoder(r).Decode(d); err != nil {
		return nil, err
	}
	return TableFromDict(d)
}
