package resolve

import (
	"fmt"

	"github.com/camgunz/cdump/ast"
	"github.com/camgunz/cdump/cdef"
)

// maxQualifierDepth bounds qualifier chains so malformed input that loops
// through PointerType nodes cannot hang the walk.
const maxQualifierDepth = 512

// Resolution is the outcome of unwrapping qualifier nodes. Either Node is
// the terminal node, or Self is set and the chain ended at the aggregate
// under construction.
type Resolution struct {
	Node      ast.Node
	Modifiers cdef.Modifiers
	Self      bool
}

type Resolver struct {
	provider ast.Provider
}

func NewResolver(p ast.Provider) *Resolver {
	return &Resolver{provider: p}
}

// Node looks up id.
func (r *Resolver) Node(id string) (ast.Node, error) {
	node, ok := r.provider.Lookup(id)
	if !ok {
		return nil, &NodeNotFoundError{ID: id}
	}
	return node, nil
}

// Resolve walks from id through pointer, block pointer, cv-qualifier and
// elaborated nodes, recording modifiers outermost-first. enclosing is the id
// of the aggregate under construction, or "".
func (r *Resolver) Resolve(id, enclosing string) (Resolution, error) {
	var res Resolution
	var referrer ast.Node

	for depth := 0; ; depth++ {
		if depth > maxQualifierDepth {
			return res, fmt.Errorf("qualifier chain from %s deeper than %d", ast.Describe(referrer), maxQualifierDepth)
		}

		node, ok := r.provider.Lookup(id)
		if !ok {
			err := &NodeNotFoundError{ID: id}
			if referrer != nil {
				err.Referrer = ast.Describe(referrer)
			}
			return res, err
		}

		switch node.Kind() {
		case ast.KindPointerType:
			res.Modifiers = append(res.Modifiers, cdef.ModPointer)
		case ast.KindBlockPointerType:
			res.Modifiers = append(res.Modifiers, cdef.ModBlock)
		case ast.KindCvQualifiedType:
			if ast.Flag(node, ast.AttrConst) {
				res.Modifiers = append(res.Modifiers, cdef.ModConst)
			}
			if ast.Flag(node, ast.AttrVolatile) {
				res.Modifiers = append(res.Modifiers, cdef.ModVolatile)
			}
			if ast.Flag(node, ast.AttrRestrict) {
				res.Modifiers = append(res.Modifiers, cdef.ModRestrict)
			}
		case ast.KindElaboratedType:
			if enclosing != "" && node.Attr(ast.AttrType) == enclosing {
				res.Self = true
				return res, nil
			}
		default:
			if enclosing != "" && node.ID() == enclosing {
				res.Self = true
				return res, nil
			}
			res.Node = node
			return res, nil
		}

		referrer = node
		id = node.Attr(ast.AttrType)
	}
}
