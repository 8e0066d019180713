// Package analyzer reflects TypeScript declarations into canonical type
// descriptors using the typescript-go checker.
package analyzer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/metadata"
)

// maxMapDepth is the maximum number of nested types entered on one descent.
// Generics that instantiate a new type at every level never revisit a type
// id, so the visit path alone cannot stop them.
const maxMapDepth = 20

var (
	// errUnhandledGeneric is raised for generic wrappers the mapper has no rule for.
	errUnhandledGeneric = errors.New("unhandled generic wrapper type")
	// errDepthExceeded is raised when a descent goes deeper than maxMapDepth.
	errDepthExceeded = errors.New("type nesting depth exceeded")
)

// visitPath is the chain of types entered on the current descent. It is
// immutable: extending it never changes what sibling branches observe.
type visitPath struct {
	id     shimchecker.TypeId
	depth  int
	parent *visitPath
}

func (p *visitPath) contains(id shimchecker.TypeId) bool {
	for n := p; n != nil; n = n.parent {
		if n.id == id {
			return true
		}
	}
	return false
}

func (p *visitPath) push(id shimchecker.TypeId) *visitPath {
	return &visitPath{id: id, depth: p.len() + 1, parent: p}
}

func (p *visitPath) len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// TypeMapper converts checker types into canonical descriptors.
type TypeMapper struct {
	checker *shimchecker.Checker
	known   *WellKnownTypes
	aliases *AliasResolver
	logger  *slog.Logger
}

// NewTypeMapper creates a mapper for one checker session.
func NewTypeMapper(checker *shimchecker.Checker, known *WellKnownTypes, logger *slog.Logger) *TypeMapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &TypeMapper{
		checker: checker,
		known:   known,
		aliases: NewAliasResolver(checker),
		logger:  logger,
	}
}

// Aliases returns the mapper's alias resolver.
func (m *TypeMapper) Aliases() *AliasResolver {
	return m.aliases
}

// Map converts t into a descriptor. It never fails: any error or panic raised
// while classifying t is reported as an unresolved descriptor.
func (m *TypeMapper) Map(t *shimchecker.Type, optional bool) metadata.Descriptor {
	return m.mapGuarded(t, optional, nil)
}

// MapTypeNode converts the type written at node into a descriptor.
func (m *TypeMapper) MapTypeNode(node *ast.Node, optional bool) metadata.Descriptor {
	t, err := m.typeFromNode(node)
	if err != nil {
		return metadata.Unresolved(nodeText(node), optional, fmt.Sprintf("%+v", err))
	}
	return m.Map(t, optional)
}

func (m *TypeMapper) typeFromNode(node *ast.Node) (t *shimchecker.Type, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("resolve type node: %v", r)
		}
	}()
	t = shimchecker.Checker_getTypeFromTypeNode(m.checker, node)
	if t == nil {
		return nil, errors.New("type node did not resolve")
	}
	return t, nil
}

// mapGuarded is the failure boundary around mapType.
func (m *TypeMapper) mapGuarded(t *shimchecker.Type, optional bool, path *visitPath) (d metadata.Descriptor) {
	defer func() {
		if r := recover(); r != nil {
			d = m.unresolved(t, optional, errors.Errorf("panic while mapping type: %v", r))
		}
	}()
	d, err := m.mapType(t, optional, path)
	if err != nil {
		return m.unresolved(t, optional, err)
	}
	return d
}

func (m *TypeMapper) unresolved(t *shimchecker.Type, optional bool, err error) metadata.Descriptor {
	text := m.aliases.TypeText(t)
	m.logger.Debug("type unresolved", "type", text, "error", err.Error())
	return metadata.Unresolved(text, optional, fmt.Sprintf("%+v", err))
}

// mapType classifies t. Rules are tried in order and the first match wins.
func (m *TypeMapper) mapType(t *shimchecker.Type, optional bool, path *visitPath) (metadata.Descriptor, error) {
	if t == nil {
		return metadata.Descriptor{}, errors.New("nil type")
	}
	t = m.aliases.Unwrap(t)

	if path.contains(t.Id()) {
		return metadata.Descriptor{Kind: metadata.KindOthers, Name: m.aliases.RawName(t), Recursive: true, Optional: optional}, nil
	}
	if path.len() >= maxMapDepth {
		return metadata.Descriptor{}, errors.Wrapf(errDepthExceeded, "%s at depth %d", m.aliases.TypeText(t), maxMapDepth)
	}
	path = path.push(t.Id())

	flags := t.Flags()
	sym := t.Symbol()
	isObject := flags&shimchecker.TypeFlagsObject != 0

	if isObject && m.known.IsObject(sym) {
		return metadata.Descriptor{Kind: metadata.KindOthers, Name: m.aliases.RawName(t), Optional: optional}, nil
	}
	if ta, ok := m.known.TypedArray(sym); ok && isObject {
		return metadata.Descriptor{
			Kind:     metadata.KindArray,
			Name:     ta.Name,
			Optional: optional,
			Element:  &metadata.Descriptor{Kind: metadata.KindNumber, NumericType: ta.NumericType},
		}, nil
	}
	if isObject && !m.isArrayOrTuple(t) && len(shimchecker.Checker_getPropertiesOfType(m.checker, t)) == 0 {
		return metadata.Descriptor{Kind: metadata.KindOthers, Name: m.aliases.RawName(t), Optional: optional}, nil
	}
	if isObject && m.known.IsPromise(sym) {
		return m.mapPromise(t, optional, path)
	}
	if isObject && m.known.IsMap(sym) {
		return m.mapCollection(t, optional, path)
	}

	switch {
	case flags&shimchecker.TypeFlagsVoid != 0:
		return metadata.Descriptor{Kind: metadata.KindVoid, Optional: optional}, nil
	case flags&shimchecker.TypeFlagsBoolean != 0:
		return metadata.Descriptor{Kind: metadata.KindBoolean, Optional: optional}, nil
	case flags&literalFlags != 0 && flags&shimchecker.TypeFlagsUnion == 0:
		return metadata.Descriptor{Kind: metadata.KindLiteral, LiteralValue: m.literalText(t), Optional: optional}, nil
	}

	if isObject && shimchecker.IsTupleType(t) {
		return m.mapTuple(t, optional, path)
	}
	if isObject && shimchecker.Checker_isArrayType(m.checker, t) {
		return m.mapArray(t, optional, path)
	}
	if flags&shimchecker.TypeFlagsUnion != 0 {
		return m.mapUnion(t, optional, path)
	}
	if isObject {
		return m.mapStructured(t, m.structuredKind(t), optional, path)
	}

	switch {
	case flags&shimchecker.TypeFlagsNull != 0:
		return metadata.Descriptor{Kind: metadata.KindNull, Optional: optional}, nil
	case flags&shimchecker.TypeFlagsBigInt != 0:
		return metadata.Descriptor{Kind: metadata.KindBigInt, Optional: optional}, nil
	case flags&shimchecker.TypeFlagsUndefined != 0:
		return metadata.Descriptor{Kind: metadata.KindUndefined, Optional: optional}, nil
	case flags&shimchecker.TypeFlagsNumber != 0:
		return metadata.Descriptor{Kind: metadata.KindNumber, Optional: optional}, nil
	case flags&shimchecker.TypeFlagsString != 0:
		return metadata.Descriptor{Kind: metadata.KindString, Optional: optional}, nil
	}

	if len(m.aliases.AliasTypeArguments(t)) == 1 {
		return metadata.Descriptor{}, errors.Wrapf(errUnhandledGeneric, "%s", m.aliases.TypeText(t))
	}

	name := symbolName(sym)
	if name == "" {
		name = m.aliases.AliasName(t)
	}
	if name == "" {
		name = m.aliases.TypeText(t)
	}
	return metadata.Descriptor{Kind: metadata.KindOthers, Name: name, Optional: optional}, nil
}

const literalFlags = shimchecker.TypeFlagsStringLiteral |
	shimchecker.TypeFlagsNumberLiteral |
	shimchecker.TypeFlagsBigIntLiteral |
	shimchecker.TypeFlagsBooleanLiteral |
	shimchecker.TypeFlagsEnumLiteral

func (m *TypeMapper) isArrayOrTuple(t *shimchecker.Type) bool {
	return shimchecker.Checker_isArrayType(m.checker, t) || shimchecker.IsTupleType(t)
}

// literalText stringifies a literal type's value. Boolean and bigint
// literals are rendered by the checker.
func (m *TypeMapper) literalText(t *shimchecker.Type) string {
	flags := t.Flags()
	if flags&(shimchecker.TypeFlagsStringLiteral|shimchecker.TypeFlagsNumberLiteral) != 0 {
		if lit := t.AsLiteralType(); lit != nil {
			if s, ok := lit.Value().(string); ok {
				return s
			}
			return fmt.Sprint(lit.Value())
		}
	}
	return m.aliases.TypeText(t)
}

func (m *TypeMapper) mapPromise(t *shimchecker.Type, optional bool, path *visitPath) (metadata.Descriptor, error) {
	args := m.referenceTypeArguments(t)
	if len(args) == 0 {
		return metadata.Descriptor{}, errors.Errorf("promise type %s has no type argument", m.aliases.TypeText(t))
	}
	elem, err := m.mapType(args[0], false, path)
	if err != nil {
		return metadata.Descriptor{}, err
	}
	return metadata.Descriptor{Kind: metadata.KindPromise, Name: m.aliases.RawName(t), Element: &elem, Optional: optional}, nil
}

func (m *TypeMapper) mapCollection(t *shimchecker.Type, optional bool, path *visitPath) (metadata.Descriptor, error) {
	args := m.referenceTypeArguments(t)
	if len(args) < 2 {
		return metadata.Descriptor{}, errors.Errorf("map type %s needs key and value type arguments", m.aliases.TypeText(t))
	}
	key, err := m.mapType(args[0], false, path)
	if err != nil {
		return metadata.Descriptor{}, errors.Wrap(err, "map key")
	}
	value, err := m.mapType(args[1], false, path)
	if err != nil {
		return metadata.Descriptor{}, errors.Wrap(err, "map value")
	}
	return metadata.Descriptor{Kind: metadata.KindMap, Name: m.aliases.RawName(t), Key: &key, Value: &value, Optional: optional}, nil
}

func (m *TypeMapper) mapTuple(t *shimchecker.Type, optional bool, path *visitPath) (metadata.Descriptor, error) {
	args := shimchecker.Checker_getTypeArguments(m.checker, t)
	elements := make([]metadata.Descriptor, 0, len(args))
	for i, arg := range args {
		elem, err := m.mapType(arg, false, path)
		if err != nil {
			return metadata.Descriptor{}, errors.Wrapf(err, "tuple element %d", i)
		}
		elements = append(elements, elem)
	}
	return metadata.Descriptor{Kind: metadata.KindTuple, Elements: elements, Optional: optional}, nil
}

func (m *TypeMapper) mapArray(t *shimchecker.Type, optional bool, path *visitPath) (metadata.Descriptor, error) {
	args := shimchecker.Checker_getTypeArguments(m.checker, t)
	if len(args) == 0 || args[0] == nil {
		return metadata.Descriptor{}, errors.Errorf("array type %s has no element type", m.aliases.TypeText(t))
	}
	elemType := args[0]
	if elemType.Flags()&shimchecker.TypeFlagsTypeParameter != 0 {
		if resolved := m.aliases.AliasTypeArgument(t, elemType); resolved != nil {
			elemType = resolved
		}
	}
	elem, err := m.mapType(elemType, false, path)
	if err != nil {
		return metadata.Descriptor{}, errors.Wrap(err, "array element")
	}
	return metadata.Descriptor{Kind: metadata.KindArray, Element: &elem, Optional: optional}, nil
}

func (m *TypeMapper) mapUnion(t *shimchecker.Type, optional bool, path *visitPath) (metadata.Descriptor, error) {
	members := t.Types()
	result := metadata.Descriptor{
		Kind:       metadata.KindUnion,
		Name:       m.aliases.AliasName(t),
		Optional:   optional,
		UnionTypes: make([]metadata.Descriptor, 0, len(members)),
	}

	sawBoolean := false
	for _, member := range members {
		if member.Flags()&shimchecker.TypeFlagsBooleanLiteral != 0 && hasBothBooleanLiterals(members) {
			if !sawBoolean {
				sawBoolean = true
				result.UnionTypes = append(result.UnionTypes, metadata.Descriptor{Kind: metadata.KindBoolean})
			}
			continue
		}
		d, err := m.mapType(member, false, path)
		if err != nil {
			return metadata.Descriptor{}, errors.Wrap(err, "union member")
		}
		result.UnionTypes = append(result.UnionTypes, d)
	}

	args := m.aliases.AliasTypeArguments(t)
	if len(args) > 0 {
		result.OriginalTypeName = m.aliases.AliasName(t)
	} else {
		args = m.referenceTypeArguments(t)
	}
	if len(args) > 0 {
		params, err := m.mapTypeParams(args, path)
		if err != nil {
			return metadata.Descriptor{}, err
		}
		result.TypeParams = params
	}
	return result, nil
}

// hasBothBooleanLiterals reports whether types contains both true and false.
func hasBothBooleanLiterals(types []*shimchecker.Type) bool {
	n := 0
	for _, t := range types {
		if t.Flags()&shimchecker.TypeFlagsBooleanLiteral != 0 {
			n++
		}
	}
	return n >= 2
}

// structuredKind decides between class, interface and object for an object
// type with properties.
func (m *TypeMapper) structuredKind(t *shimchecker.Type) metadata.Kind {
	if shimchecker.Type_objectFlags(t)&shimchecker.ObjectFlagsAnonymous != 0 {
		return metadata.KindObject
	}
	sym := t.Symbol()
	switch {
	case sym == nil:
		return metadata.KindObject
	case sym.Flags&ast.SymbolFlagsClass != 0:
		return metadata.KindClass
	case sym.Flags&ast.SymbolFlagsInterface != 0:
		return metadata.KindInterface
	}
	return metadata.KindObject
}

func (m *TypeMapper) mapStructured(t *shimchecker.Type, kind metadata.Kind, optional bool, path *visitPath) (metadata.Descriptor, error) {
	result := metadata.Descriptor{Kind: kind, Optional: optional}
	if kind == metadata.KindObject {
		result.Name = symbolName(t.Symbol())
		if result.Name == "" {
			result.Name = m.aliases.AliasName(t)
		}
	} else {
		result.Name = m.aliases.RawName(t)
	}

	args := m.aliases.AliasTypeArguments(t)
	if len(args) == 0 {
		args = m.referenceTypeArguments(t)
	}
	if len(args) > 0 {
		params, err := m.mapTypeParams(args, path)
		if err != nil {
			return metadata.Descriptor{}, err
		}
		result.TypeParams = params
	}

	result.Properties = m.properties(t, path)
	return result, nil
}

func (m *TypeMapper) mapTypeParams(args []*shimchecker.Type, path *visitPath) ([]metadata.Descriptor, error) {
	params := make([]metadata.Descriptor, 0, len(args))
	for i, arg := range args {
		d, err := m.mapType(arg, false, path)
		if err != nil {
			return nil, errors.Wrapf(err, "type argument %d", i)
		}
		params = append(params, d)
	}
	return params, nil
}

// referenceTypeArguments returns the checker's resolved type arguments for a
// type reference, without the implicit this-type.
func (m *TypeMapper) referenceTypeArguments(t *shimchecker.Type) []*shimchecker.Type {
	if shimchecker.Type_objectFlags(t)&shimchecker.ObjectFlagsReference == 0 {
		return nil
	}
	args := shimchecker.Checker_getTypeArguments(m.checker, t)
	out := make([]*shimchecker.Type, 0, len(args))
	for _, arg := range args {
		if arg == nil || isThisType(arg) {
			continue
		}
		out = append(out, arg)
	}
	return out
}

func isThisType(t *shimchecker.Type) bool {
	if t.Flags()&shimchecker.TypeFlagsTypeParameter == 0 {
		return false
	}
	sym := t.Symbol()
	return sym != nil && sym.Name == "this"
}

// nodeText returns the source text of node, or its kind when unavailable.
func nodeText(node *ast.Node) string {
	if node == nil {
		return ""
	}
	sf := ast.GetSourceFileOfNode(node)
	if sf == nil {
		return node.Kind.String()
	}
	text := sf.Text()
	start, end := node.Pos(), node.End()
	if start < 0 || end > len(text) || start > end {
		return node.Kind.String()
	}
	return strings.TrimSpace(text[start:end])
}
