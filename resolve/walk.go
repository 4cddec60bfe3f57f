// Package resolve turns a front-end node tree into cdef model entities.
//
// A Walker visits the top-level declarations of one or more translation
// units, builds every struct, union, enum, typedef and function it finds and
// merges them first-seen-wins into a single cdef.Table. Qualifier chains are
// collapsed into wrapper layers by the Resolver; named aggregates met along
// the way are registered and replaced by references.
package resolve

import (
	"errors"
	"fmt"

	"github.com/camgunz/cdump/ast"
	"github.com/camgunz/cdump/cdef"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cdump.resolve")

type Options struct {
	// Strict stops at the first failing definition.
	Strict    bool
	Conflicts ConflictPolicy
	// FileID restricts top-level declarations to those whose file attribute
	// matches. Types they use are still built and registered.
	FileID string
}

// Failure records a top-level declaration skipped in best-effort mode.
type Failure struct {
	Node string
	Err  error
}

func (f Failure) Error() string {
	return f.Node + ": " + f.Err.Error()
}

type Walker struct {
	opts     Options
	sink     *registry
	stats    Stats
	failures []Failure
}

// NewWalker returns a Walker merging into table. A nil table starts empty.
func NewWalker(table *cdef.Table, opts Options) *Walker {
	if table == nil {
		table = cdef.NewTable()
	}
	if opts.Conflicts == "" {
		opts.Conflicts = PolicyFirst
	}
	w := &Walker{opts: opts}
	w.sink = &registry{table: table, policy: opts.Conflicts, stats: &w.stats}
	return w
}

// Walk builds the top-level declarations of one translation unit. In
// best-effort mode failing declarations are logged and skipped; a conflict
// under PolicyError always ends the walk.
func (w *Walker) Walk(p ast.Provider) error {
	return w.walk(p, w.opts.FileID)
}

// WalkFile is Walk with a per-unit file filter, for callers merging several
// documents whose main file ids differ.
func (w *Walker) WalkFile(p ast.Provider, fileID string) error {
	return w.walk(p, fileID)
}

func (w *Walker) walk(p ast.Provider, fileID string) error {
	b := newBuilder(p, w.sink)

	for _, node := range p.Roots() {
		if !topLevel(node) {
			continue
		}
		if fileID != "" && node.Attr(ast.AttrFile) != fileID {
			w.stats.Skipped++
			continue
		}

		if _, err := b.Definition(node); err != nil {
			if w.opts.Strict || errors.Is(err, ErrConflict) {
				return fmt.Errorf("resolve %s: %w", ast.Describe(node), err)
			}
			w.stats.Failed++
			w.failures = append(w.failures, Failure{Node: ast.Describe(node), Err: err})
			log.Warning("skipping declaration", "node", ast.Describe(node), "error", err.Error())
		}
	}
	return nil
}

// topLevel reports whether node is a declaration the walk builds on its own.
// Anonymous aggregates are only reachable through the declaration using them.
func topLevel(node ast.Node) bool {
	switch node.Kind() {
	case ast.KindTypedef, ast.KindFunction:
		return true
	case ast.KindStruct, ast.KindUnion, ast.KindEnumeration:
		return node.Attr(ast.AttrName) != ""
	}
	return false
}

func (w *Walker) Table() *cdef.Table { return w.sink.table }

func (w *Walker) Failures() []Failure {
	out := make([]Failure, len(w.failures))
	copy(out, w.failures)
	return out
}

func (w *Walker) Stats() Stats { return w.stats }

// Resolve builds a fresh table from the given translation units.
func Resolve(opts Options, units ...ast.Provider) (*cdef.Table, error) {
	w := NewWalker(nil, opts)
	for _, unit := range units {
		if err := w.Walk(unit); err != nil {
			return w.Table(), err
		}
	}
	return w.Table(), nil
}
