package resolve

import (
	"errors"
	"fmt"

	"github.com/camgunz/cdump/ast"
	"github.com/camgunz/cdump/cdef"
)

var (
	ErrNodeNotFound        = errors.New("node not found")
	ErrUnsupportedNodeKind = errors.New("unsupported node kind")
	ErrConflict            = errors.New("conflicting definition")
)

// NodeNotFoundError reports an identifier with no node. Referrer describes
// the node that named it, when known.
type NodeNotFoundError struct {
	ID       string
	Referrer string
}

func (e *NodeNotFoundError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("no node for %q (referenced by %s)", e.ID, e.Referrer)
	}
	return fmt.Sprintf("no node for %q", e.ID)
}

func (e *NodeNotFoundError) Unwrap() error { return ErrNodeNotFound }

type UnsupportedNodeKindError struct {
	Kind ast.Kind
	Node string
	// Detail carries front-end specific information, such as castxml's
	// type_class for Unimplemented nodes.
	Detail string
}

func (e *UnsupportedNodeKindError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("no model for %s (%s)", e.Node, e.Detail)
	}
	return fmt.Sprintf("no model for %s", e.Node)
}

func (e *UnsupportedNodeKindError) Unwrap() error { return ErrUnsupportedNodeKind }

// ConflictError reports a redefinition whose body differs from the kept one.
type ConflictError struct {
	Key     string
	Kept    cdef.Definition
	Offered cdef.Definition
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s redefined: kept %s, offered %s", e.Key, e.Kept, e.Offered)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
