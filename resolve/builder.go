package resolve

import (
	"strconv"
	"strings"

	"github.com/camgunz/cdump/ast"
	"github.com/camgunz/cdump/cdef"
)

// Builder turns terminal nodes of one translation unit into model entities.
// Named structs, unions, enums, typedefs and functions met while building are
// registered with the sink and replaced by references.
type Builder struct {
	resolver *Resolver
	sink     *registry

	built      map[string]cdef.Type
	building   map[string]bool
	registered map[string]bool
}

func newBuilder(p ast.Provider, sink *registry) *Builder {
	return &Builder{
		resolver:   NewResolver(p),
		sink:       sink,
		built:      make(map[string]cdef.Type),
		building:   make(map[string]bool),
		registered: make(map[string]bool),
	}
}

// Definition builds a top-level declaration and registers it. Anonymous
// results are returned but not registered.
func (b *Builder) Definition(node ast.Node) (cdef.Type, error) {
	t, err := b.entity(node, "")
	if err != nil {
		return nil, err
	}
	if d, ok := t.(cdef.Definition); ok && d.DefinitionName() != "" {
		if err := b.register(node.ID(), d); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// resolveType produces the entity a type-referencing attribute stands for.
// declName is the declared name of the field or variable being typed.
func (b *Builder) resolveType(id, enclosing, declName string) (cdef.Type, error) {
	res, err := b.resolver.Resolve(id, enclosing)
	if err != nil {
		return nil, err
	}
	if res.Self {
		return res.Modifiers.Apply(cdef.SelfReference{}), nil
	}

	mods := res.Modifiers
	node := res.Node

	if node.Kind() == ast.KindFunctionType {
		if mod, i, ok := mods.Innermost(); ok && (mod == cdef.ModPointer || mod == cdef.ModBlock) {
			form := cdef.KindFunctionPointer
			if mod == cdef.ModBlock {
				form = cdef.KindBlockFunctionPointer
			}
			sig, err := b.signature(node, form, enclosing)
			if err != nil {
				return nil, err
			}
			return mods.Without(i).Apply(sig), nil
		}
	}

	t, err := b.entity(node, enclosing)
	if err != nil {
		return nil, err
	}
	if t, err = b.reference(node.ID(), t); err != nil {
		return nil, err
	}
	if arr, ok := t.(cdef.Array); ok && len(mods) == 0 && declName != "" {
		arr.Name = declName
		t = arr
	}
	return mods.Apply(t), nil
}

// reference registers named definitions and returns a Reference in their
// place. Everything else is returned unchanged.
func (b *Builder) reference(id string, t cdef.Type) (cdef.Type, error) {
	d, ok := t.(cdef.Definition)
	if !ok || d.DefinitionName() == "" {
		return t, nil
	}
	if err := b.register(id, d); err != nil {
		return nil, err
	}
	return cdef.Reference{Target: d.Kind(), Name: d.DefinitionName()}, nil
}

func (b *Builder) register(id string, d cdef.Definition) error {
	if id != "" && b.registered[id] {
		return nil
	}
	if err := b.sink.offer(d); err != nil {
		return err
	}
	if id != "" {
		b.registered[id] = true
	}
	return nil
}

func (b *Builder) entity(node ast.Node, enclosing string) (cdef.Type, error) {
	id := node.ID()
	if t, ok := b.built[id]; ok {
		return t, nil
	}
	if id != "" && b.building[id] {
		if kind, ok := definitionKind(node.Kind()); ok {
			if name := node.Attr(ast.AttrName); name != "" {
				return cdef.Reference{Target: kind, Name: name}, nil
			}
		}
		return cdef.SelfReference{}, nil
	}

	if id != "" {
		b.building[id] = true
		defer delete(b.building, id)
	}

	t, err := b.build(node, enclosing)
	if err != nil {
		return nil, err
	}
	if id != "" && memoizable(node) {
		b.built[id] = t
	}
	return t, nil
}

func (b *Builder) build(node ast.Node, enclosing string) (cdef.Type, error) {
	switch node.Kind() {
	case ast.KindFundamentalType:
		return b.builtin(node)
	case ast.KindStruct, ast.KindUnion:
		return b.record(node)
	case ast.KindEnumeration:
		return b.enum(node)
	case ast.KindTypedef:
		return b.typedef(node)
	case ast.KindFunction:
		return b.function(node)
	case ast.KindFunctionType:
		return b.signature(node, cdef.KindFunctionType, enclosing)
	case ast.KindArrayType:
		return b.array(node, enclosing)
	}
	return nil, &UnsupportedNodeKindError{
		Kind:   node.Kind(),
		Node:   ast.Describe(node),
		Detail: node.Attr("type_class"),
	}
}

// definitionKind maps nodes that become table definitions to their model kind.
func definitionKind(k ast.Kind) (cdef.Kind, bool) {
	switch k {
	case ast.KindStruct:
		return cdef.KindStruct, true
	case ast.KindUnion:
		return cdef.KindUnion, true
	case ast.KindEnumeration:
		return cdef.KindEnum, true
	case ast.KindTypedef:
		return cdef.KindTypedef, true
	case ast.KindFunction:
		return cdef.KindFunction, true
	}
	return cdef.KindVoid, false
}

// Arrays and function types may hold a SelfReference that only holds for the
// enclosing aggregate, and anonymous aggregates are rebuilt for every use.
func memoizable(node ast.Node) bool {
	switch node.Kind() {
	case ast.KindFundamentalType, ast.KindTypedef, ast.KindFunction:
		return true
	case ast.KindStruct, ast.KindUnion, ast.KindEnumeration:
		return node.Attr(ast.AttrName) != ""
	}
	return false
}

func (b *Builder) record(node ast.Node) (cdef.Type, error) {
	rec := cdef.Record{
		Union:  node.Kind() == ast.KindUnion,
		Name:   node.Attr(ast.AttrName),
		Opaque: ast.Flag(node, ast.AttrIncomplete),
	}

	var fields []ast.Node
	for _, id := range strings.Fields(node.Attr(ast.AttrMembers)) {
		member, err := b.resolver.Node(id)
		if err != nil {
			return nil, withReferrer(err, node)
		}
		if member.Kind() == ast.KindField {
			fields = append(fields, member)
		}
	}

	names := newNamer("anon", fields)
	for _, field := range fields {
		t, err := b.resolveType(field.Attr(ast.AttrType), node.ID(), field.Attr(ast.AttrName))
		if err != nil {
			return nil, withReferrer(err, field)
		}
		if field.Attr(ast.AttrBits) != "" {
			bits, err := intAttr(field, ast.AttrBits)
			if err != nil {
				return nil, err
			}
			t = withBits(t, *bits)
		}
		rec.Fields = append(rec.Fields, cdef.Member{Name: names.name(field.Attr(ast.AttrName)), Type: t})
	}
	return rec, nil
}

// withBits records a bit-field width on an integer builtin, looking through
// const and volatile wrappers. Other types cannot carry a width.
func withBits(t cdef.Type, bits int64) cdef.Type {
	switch v := t.(type) {
	case cdef.Builtin:
		if v.Class == cdef.KindInteger || v.Class == cdef.KindBool {
			v.Bits = cdef.Int(bits)
		}
		return v
	case cdef.Const:
		return cdef.Const{Type: withBits(v.Type, bits)}
	case cdef.Volatile:
		return cdef.Volatile{Type: withBits(v.Type, bits)}
	}
	log.Debugf("dropping bit-field width %d on %s", bits, t.Kind())
	return t
}

func (b *Builder) enum(node ast.Node) (cdef.Type, error) {
	e := cdef.Enum{Name: node.Attr(ast.AttrName)}

	if id := node.Attr(ast.AttrType); id != "" {
		t, err := b.resolveType(id, "", "")
		if err != nil {
			return nil, withReferrer(err, node)
		}
		e.Underlying = t
	} else {
		size, err := byteAttr(node, ast.AttrSize)
		if err != nil {
			return nil, err
		}
		align, err := byteAttr(node, ast.AttrAlign)
		if err != nil {
			return nil, err
		}
		e.Underlying = cdef.Builtin{Class: cdef.KindInteger, Name: "int", Size: size, Align: align, Signed: true}
	}

	var next int64
	for _, child := range ast.ChildrenOf(node, ast.KindEnumValue) {
		v := next
		if child.Attr(ast.AttrInit) != "" {
			init, err := intAttr(child, ast.AttrInit)
			if err != nil {
				return nil, err
			}
			v = *init
		}
		e.Values = append(e.Values, cdef.Enumerator{Name: child.Attr(ast.AttrName), Value: v})
		next = v + 1
	}
	return e, nil
}

func (b *Builder) typedef(node ast.Node) (cdef.Type, error) {
	t, err := b.resolveType(node.Attr(ast.AttrType), "", "")
	if err != nil {
		return nil, withReferrer(err, node)
	}
	return cdef.Typedef{Name: node.Attr(ast.AttrName), Type: t}, nil
}

func (b *Builder) function(node ast.Node) (cdef.Type, error) {
	params, variadic, err := b.parameters(node, "")
	if err != nil {
		return nil, err
	}
	ret, err := b.resolveType(node.Attr(ast.AttrReturns), "", "")
	if err != nil {
		return nil, withReferrer(err, node)
	}
	return cdef.Function{
		Name:       node.Attr(ast.AttrName),
		Parameters: params,
		Return:     ret,
		Variadic:   variadic,
	}, nil
}

func (b *Builder) signature(node ast.Node, form cdef.Kind, enclosing string) (cdef.Type, error) {
	params, variadic, err := b.parameters(node, enclosing)
	if err != nil {
		return nil, err
	}
	ret, err := b.resolveType(node.Attr(ast.AttrReturns), enclosing, "")
	if err != nil {
		return nil, withReferrer(err, node)
	}
	return cdef.Signature{Form: form, Parameters: params, Return: ret, Variadic: variadic}, nil
}

func (b *Builder) parameters(node ast.Node, enclosing string) ([]cdef.Member, bool, error) {
	args := ast.ChildrenOf(node, ast.KindArgument)
	names := newNamer("arg", args)

	var params []cdef.Member
	for _, arg := range args {
		t, err := b.resolveType(arg.Attr(ast.AttrType), enclosing, "")
		if err != nil {
			return nil, false, withReferrer(err, node)
		}
		params = append(params, cdef.Member{Name: names.name(arg.Attr(ast.AttrName)), Type: t})
	}
	return params, len(ast.ChildrenOf(node, ast.KindEllipsis)) > 0, nil
}

func (b *Builder) array(node ast.Node, enclosing string) (cdef.Type, error) {
	elem, err := b.resolveType(node.Attr(ast.AttrType), enclosing, "")
	if err != nil {
		return nil, withReferrer(err, node)
	}
	arr := cdef.Array{Element: elem}
	if node.Attr(ast.AttrMax) == "" {
		return arr, nil
	}

	max, err := intAttr(node, ast.AttrMax)
	if err != nil {
		return nil, err
	}
	min, err := intAttr(node, ast.AttrMin)
	if err != nil {
		return nil, err
	}
	lo := int64(0)
	if min != nil {
		lo = *min
	}
	arr.Count = cdef.Int(*max - lo + 1)
	return arr, nil
}

// namer hands out argN/anonN names to unnamed entries, skipping names
// already used by named entries of the same list.
type namer struct {
	prefix string
	next   int
	taken  map[string]bool
}

func newNamer(prefix string, nodes []ast.Node) *namer {
	n := &namer{prefix: prefix, taken: make(map[string]bool)}
	for _, node := range nodes {
		if name := node.Attr(ast.AttrName); name != "" {
			n.taken[name] = true
		}
	}
	return n
}

func (n *namer) name(given string) string {
	if given != "" {
		return given
	}
	for {
		candidate := n.prefix + strconv.Itoa(n.next)
		n.next++
		if !n.taken[candidate] {
			n.taken[candidate] = true
			return candidate
		}
	}
}

// withReferrer fills in the referring node of a NodeNotFoundError.
func withReferrer(err error, node ast.Node) error {
	if nf, ok := err.(*NodeNotFoundError); ok && nf.Referrer == "" {
		nf.Referrer = ast.Describe(node)
	}
	return err
}
