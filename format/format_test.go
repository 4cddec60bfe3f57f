package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/camgunz/cdump/cdef"
)

func TestDictKeepsOrder(t *testing.T) {
	d := NewDict().Set("z", int64(1)).Set("a", "x").Set("m", nil).Set("z", int64(2))
	got, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"z":2,"a":"x","m":null}`; string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	back := NewDict()
	if err := json.Unmarshal(got, back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if keys := strings.Join(back.Keys(), ","); keys != "z,a,m" {
		t.Errorf("Keys() = %s", keys)
	}
	if v, _ := back.Get("z"); v != int64(2) {
		t.Errorf("z = %#v, want int64(2)", v)
	}
}

func TestToDictReference(t *testing.T) {
	got, err := json.Marshal(ToDict(cdef.Reference{Target: cdef.KindStruct, Name: "Node"}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"obj_type":"reference","type":"struct","name":"Node"}`; string(got) != want {
		t.Errorf("ToDict() = %s, want %s", got, want)
	}
	self, _ := json.Marshal(ToDict(cdef.SelfReference{}))
	if string(self) != `{"obj_type":"self_reference"}` {
		t.Errorf("ToDict(self) = %s", self)
	}
}

func TestSpell(t *testing.T) {
	tests := []struct {
		typ  cdef.Type
		want string
	}{
		{intType, "int"},
		{cdef.Pointer{Base: cdef.Const{Type: charType}, CanAlias: true}, "const char *"},
		{cdef.Const{Type: cdef.Pointer{Base: intType, CanAlias: true}}, "int * const"},
		{cdef.Pointer{Base: intType}, "int * restrict"},
		{cdef.Modifiers{cdef.ModPointer, cdef.ModConst}.Apply(charType), "const char *"},
		{cdef.Modifiers{cdef.ModConst, cdef.ModPointer}.Apply(intType), "int * const"},
		{cdef.Modifiers{cdef.ModConst, cdef.ModVolatile}.Apply(intType), "const volatile int"},
		{cdef.Modifiers{cdef.ModVolatile, cdef.ModConst, cdef.ModRestrict, cdef.ModPointer}.Apply(intType), "int * const volatile restrict"},
		{cdef.Pointer{Base: cdef.SelfReference{}, CanAlias: true}, "self *"},
		{cdef.Reference{Target: cdef.KindStruct, Name: "Node"}, "struct Node"},
		{cdef.Reference{Target: cdef.KindTypedef, Name: "size_t"}, "size_t"},
		{cdef.Array{Element: charType, Count: cdef.Int(16)}, "char[16]"},
		{cdef.Array{Element: intType}, "int[]"},
		{cdef.Signature{Form: cdef.KindFunctionPointer, Parameters: []cdef.Member{{Name: "a", Type: intType}}, Return: intType}, "int (*)(int)"},
		{cdef.Signature{Form: cdef.KindBlockFunctionPointer, Return: intType, Variadic: true}, "int (^)(...)"},
		{cdef.Signature{Form: cdef.KindFunctionType, Return: intType}, "int(void)"},
		{cdef.Record{Fields: []cdef.Member{{Name: "x", Type: intType}}}, "struct {...}"},
	}
	for _, tt := range tests {
		if got := Spell(tt.typ); got != tt.want {
			t.Errorf("Spell(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestLineEncoder(t *testing.T) {
	table := cdef.NewTable()
	table.Add(cdef.Record{Name: "Flags", Fields: []cdef.Member{
		{Name: "a", Type: cdef.Builtin{Class: cdef.KindInteger, Name: "unsigned int", Bits: cdef.Int(1)}},
		{Name: "next", Type: cdef.Pointer{Base: cdef.SelfReference{}, CanAlias: true}},
	}})
	table.Add(cdef.Enum{Name: "Color", Underlying: intType, Values: []cdef.Enumerator{{Name: "RED", Value: 0}}})
	table.Add(cdef.Typedef{Name: "size_t", Type: cdef.Builtin{Class: cdef.KindInteger, Name: "long unsigned int"}})
	table.Add(cdef.Function{Name: "puts", Parameters: []cdef.Member{{Name: "s", Type: cdef.Pointer{Base: cdef.Const{Type: charType}, CanAlias: true}}}, Return: intType})

	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(table); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := strings.Join([]string{
		"struct\tFlags\t-",
		"field\ta\tunsigned int\t1",
		"field\tnext\tself *\t-",
		"enum\tColor\tint",
		"value\tRED\t0",
		"typedef\tsize_t\tlong unsigned int",
		"function\tputs\tint\t-",
		"param\ts\tconst char *",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestNewEncoder(t *testing.T) {
	for _, name := range Formats {
		if _, err := NewEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewEncoder(%q) error = %v", name, err)
		}
	}
	if _, err := NewEncoder("xml", &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestJSONEncoderShape(t *testing.T) {
	table := cdef.NewTable()
	table.Add(cdef.Typedef{Name: "T", Type: cdef.Reference{Target: cdef.KindStruct, Name: "S"}})
	text, err := (&JSONEncoder{table: table}).MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	want := `{
  "T": {
    "obj_type": "typedef",
    "name": "T",
    "type": {
      "obj_type": "reference",
      "type": "struct",
      "name": "S"
    }
  }
}`
	if string(text) != want {
		t.Errorf("MarshalText() =\n%s\nwant\n%s", text, want)
	}
}
