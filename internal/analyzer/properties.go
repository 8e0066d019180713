package analyzer

import (
	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tsreflect/tsreflect/internal/metadata"
)

// properties extracts the named members of a structured type. Each member is
// mapped on its own branch of path and behind its own failure boundary, so a
// member that cannot be mapped degrades alone.
func (m *TypeMapper) properties(t *shimchecker.Type, path *visitPath) []metadata.Property {
	props := shimchecker.Checker_getPropertiesOfType(m.checker, t)
	out := make([]metadata.Property, 0, len(props))
	for _, prop := range props {
		optional := isOptionalProperty(prop)
		propType := shimchecker.Checker_getTypeOfSymbol(m.checker, prop)
		boolean := false
		if optional {
			propType, boolean = stripUndefined(propType)
		}

		var d metadata.Descriptor
		if boolean {
			d = metadata.Descriptor{Kind: metadata.KindBoolean, Optional: true}
		} else {
			d = m.mapGuarded(propType, optional, path)
		}
		out = append(out, metadata.Property{Name: prop.Name, Optional: optional, Type: d})
	}
	return out
}

// isOptionalProperty reports whether prop carries an explicit optional marker
// on a property signature or field declaration.
func isOptionalProperty(prop *ast.Symbol) bool {
	if prop.Flags&ast.SymbolFlagsOptional == 0 || len(prop.Declarations) == 0 {
		return false
	}
	switch prop.Declarations[0].Kind {
	case ast.KindPropertySignature, ast.KindPropertyDeclaration:
		return true
	}
	return false
}

// stripUndefined removes the undefined member that strict null checks add to
// optional properties. The type is returned unchanged unless the remaining
// members form a single type; a remaining true|false pair is reported as
// boolean instead.
func stripUndefined(t *shimchecker.Type) (rest *shimchecker.Type, boolean bool) {
	if t == nil || t.Flags()&shimchecker.TypeFlagsUnion == 0 {
		return t, false
	}
	members := t.Types()
	var kept []*shimchecker.Type
	for _, member := range members {
		if member.Flags()&shimchecker.TypeFlagsUndefined == 0 {
			kept = append(kept, member)
		}
	}
	switch {
	case len(kept) == len(members):
		return t, false
	case len(kept) == 1:
		return kept[0], false
	case len(kept) == 2 && hasBothBooleanLiterals(kept):
		return t, true
	}
	return t, false
}
