package lsp

import (
	"encoding/json"
	"strings"

	"github.com/camgunz/cdump/cdef"
	"github.com/camgunz/cdump/format"
)

// WordAt returns the identifier under the cursor and the identifier before
// it on the same line, if any. line and col are zero-based.
func WordAt(text string, line, col int) (prev, word string) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return "", ""
	}
	l := strings.TrimSuffix(lines[line], "\r")
	if col < 0 || col > len(l) {
		return "", ""
	}

	start, end := col, col
	for start > 0 && isIdent(l[start-1]) {
		start--
	}
	for end < len(l) && isIdent(l[end]) {
		end++
	}
	if start == end {
		return "", ""
	}
	word = l[start:end]

	i := start
	for i > 0 && (l[i-1] == ' ' || l[i-1] == '\t') {
		i--
	}
	j := i
	for j > 0 && isIdent(l[j-1]) {
		j--
	}
	return l[j:i], word
}

func isIdent(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Find looks word up in table. After struct, union or enum only the tag
// namespace is searched; otherwise ordinary names come first.
func Find(table *cdef.Table, prev, word string) (cdef.Definition, bool) {
	if table == nil || word == "" {
		return nil, false
	}
	if kind, ok := cdef.ParseKind(prev); ok && kind.InTagNamespace() {
		return table.Lookup(kind, word)
	}
	if def, ok := table.Get(word); ok {
		return def, true
	}
	for _, kind := range []cdef.Kind{cdef.KindStruct, cdef.KindUnion, cdef.KindEnum} {
		if def, ok := table.Lookup(kind, word); ok {
			return def, true
		}
	}
	return nil, false
}

// HoverText renders def as markdown: its line form, then its dictionary.
func HoverText(def cdef.Definition) string {
	var sb strings.Builder
	sb.WriteString("**")
	sb.WriteString(cdef.Key(def))
	sb.WriteString("**\n\n```\n")
	sb.WriteString(format.Lines(def))
	sb.WriteString("```\n")

	if data, err := json.MarshalIndent(format.ToDict(def), "", "  "); err == nil {
		sb.WriteString("\n```json\n")
		sb.Write(data)
		sb.WriteString("\n```\n")
	}
	return sb.String()
}
