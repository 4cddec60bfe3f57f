package format

import (
	"bytes"
	"testing"

	"github.com/camgunz/cdump/castxml"
	"github.com/camgunz/cdump/cdef"
	"github.com/camgunz/cdump/resolve"
)

var (
	intType  = cdef.Builtin{Class: cdef.KindInteger, Name: "int", Size: cdef.Int(4), Align: cdef.Int(4), Signed: true}
	charType = cdef.Builtin{Class: cdef.KindInteger, Name: "char", Size: cdef.Int(1), Align: cdef.Int(1), Signed: true}
)

func roundTripEntities() []cdef.Type {
	return []cdef.Type{
		intType,
		cdef.Builtin{Class: cdef.KindVoid, Name: "void"},
		cdef.Builtin{Class: cdef.KindInteger, Name: "unsigned int", Size: cdef.Int(4), Align: cdef.Int(4), Bits: cdef.Int(3)},
		cdef.Builtin{Class: cdef.KindComplex, Name: "complex double", Size: cdef.Int(16), Signed: true, Const: true},
		cdef.Array{Element: charType, Count: cdef.Int(16), Name: "name"},
		cdef.Array{Element: intType},
		cdef.Pointer{Base: cdef.Const{Type: charType}, CanAlias: true},
		cdef.Pointer{Base: intType, Block: true},
		cdef.Signature{Form: cdef.KindFunctionPointer, Parameters: []cdef.Member{{Name: "arg0", Type: intType}}, Return: intType, Variadic: true},
		cdef.Signature{Form: cdef.KindBlockFunctionPointer, Return: intType},
		cdef.Signature{Form: cdef.KindFunctionType, Return: cdef.Volatile{Type: intType}},
		cdef.Enum{Name: "Color", Underlying: intType, Values: []cdef.Enumerator{{Name: "RED", Value: 0}, {Name: "GREEN", Value: -5}}},
		cdef.Record{Name: "S", Fields: []cdef.Member{
			{Name: "a", Type: intType},
			{Name: "next", Type: cdef.Pointer{Base: cdef.SelfReference{}, CanAlias: true}},
		}},
		cdef.Record{Union: true, Name: "U", Opaque: true},
		cdef.Typedef{Name: "Pair", Type: cdef.Record{Fields: []cdef.Member{{Name: "x", Type: intType}}}},
		cdef.Function{Name: "printf", Parameters: []cdef.Member{{Name: "fmt", Type: cdef.Pointer{Base: charType}}}, Return: intType, Variadic: true},
		cdef.Reference{Target: cdef.KindStruct, Name: "Node"},
		cdef.SelfReference{},
		cdef.Const{Type: cdef.Pointer{Base: intType, CanAlias: true}},
	}
}

func TestDictRoundTrip(t *testing.T) {
	for _, want := range roundTripEntities() {
		t.Run(want.Kind().String(), func(t *testing.T) {
			got, err := FromDict(ToDict(want))
			if err != nil {
				t.Fatalf("FromDict() error = %v", err)
			}
			if got.String() != want.String() {
				t.Errorf("FromDict(ToDict(t)) =\n  %s\nwant\n  %s", got, want)
			}
		})
	}
}

func sampleTable(t *testing.T) *cdef.Table {
	t.Helper()
	doc, err := castxml.ParseFile("../castxml/testdata/sample.xml")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	table, err := resolve.Resolve(resolve.Options{}, doc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return table
}

func assertSameTable(t *testing.T, got, want *cdef.Table) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), want.Len())
	}
	wantDefs := want.Definitions()
	for i, def := range got.Definitions() {
		if def.String() != wantDefs[i].String() {
			t.Errorf("definition %d =\n  %s\nwant\n  %s", i, def, wantDefs[i])
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	table := sampleTable(t)
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(table); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	assertSameTable(t, got, table)
}

func TestYAMLRoundTrip(t *testing.T) {
	table := sampleTable(t)
	var buf bytes.Buffer
	if err := NewYAMLEncoder(&buf).Encode(table); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := DecodeYAML(&buf)
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v\n%s", err, buf.String())
	}
	assertSameTable(t, got, table)
}

func TestFromDictErrors(t *testing.T) {
	tests := []struct {
		name string
		dict *Dict
	}{
		{"unknown kind", NewDict().Set("obj_type", "class")},
		{"missing kind", NewDict()},
		{"bad size", NewDict().Set("obj_type", "integer").Set("size", "four")},
		{"bad reference", NewDict().Set("obj_type", "reference").Set("type", "class").Set("name", "X")},
		{"bad nested", NewDict().Set("obj_type", "typedef").Set("name", "T").Set("type", NewDict().Set("obj_type", "bogus"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromDict(tt.dict); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestTableFromDictRejectsMisplacedKeys(t *testing.T) {
	d := NewDict().Set("Point", ToDict(cdef.Record{Name: "Point"}))
	if _, err := TableFromDict(d); err == nil {
		t.Error("Expected struct Point under key Point to be rejected")
	}
}
