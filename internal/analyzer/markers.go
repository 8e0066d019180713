package analyzer

import (
	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
)

// Marker is a decorator attached to a class declaration.
type Marker struct {
	// Name is the decorator name as written (e.g. "Agent", or "Svc" for
	// `import { Service as Svc }`). For `@ns.Service()` it is "Service".
	Name string
	// OriginalName is the exported name the decorator was imported as, or
	// Name when it is declared locally.
	OriginalName string
	// ModuleSpecifier is the import module path, empty for local decorators.
	ModuleSpecifier string
}

// ClassMarkers returns the decorators on node, resolving imported names
// through checker when it is non-nil.
func ClassMarkers(node *ast.Node, checker *shimchecker.Checker) []Marker {
	var markers []Marker
	for _, dec := range node.Decorators() {
		if m, ok := resolveMarker(dec, checker); ok {
			markers = append(markers, m)
		}
	}
	return markers
}

// HasAnyMarker reports whether one of markers is named in required, by local
// or original name. An empty required set matches everything.
func HasAnyMarker(markers []Marker, required map[string]bool) bool {
	if len(required) == 0 {
		return true
	}
	for _, m := range markers {
		if required[m.Name] || required[m.OriginalName] {
			return true
		}
	}
	return false
}

func resolveMarker(dec *ast.Node, checker *shimchecker.Checker) (Marker, bool) {
	if dec.Kind != ast.KindDecorator {
		return Marker{}, false
	}
	callee := dec.AsDecorator().Expression
	// @Foo() -> Foo, @ns.Foo() -> ns.Foo
	if callee.Kind == ast.KindCallExpression {
		callee = callee.AsCallExpression().Expression
	}

	switch callee.Kind {
	case ast.KindIdentifier:
		name := callee.AsIdentifier().Text
		m := Marker{Name: name, OriginalName: name}
		if checker != nil {
			resolveIdentifierOrigin(callee, checker, &m)
		}
		return m, true
	case ast.KindPropertyAccessExpression:
		pa := callee.AsPropertyAccessExpression()
		name := pa.Name().Text()
		m := Marker{Name: name, OriginalName: name}
		if checker != nil && pa.Expression.Kind == ast.KindIdentifier {
			if nsSym := checker.GetSymbolAtLocation(pa.Expression); nsSym != nil && nsSym.Flags&ast.SymbolFlagsAlias != 0 {
				m.ModuleSpecifier = moduleSpecifierFromDeclarations(nsSym.Declarations)
			}
		}
		return m, true
	}
	return Marker{}, false
}

// resolveIdentifierOrigin fills in the original name and module of an
// imported (possibly renamed) decorator.
func resolveIdentifierOrigin(ident *ast.Node, checker *shimchecker.Checker, m *Marker) {
	sym := checker.GetSymbolAtLocation(ident)
	if sym == nil || sym.Flags&ast.SymbolFlagsAlias == 0 {
		return
	}
	if original := checker.GetAliasedSymbol(sym); original != nil && original.Name != "" && original.Name != "default" {
		m.OriginalName = original.Name
	}
	m.ModuleSpecifier = moduleSpecifierFromDeclarations(sym.Declarations)
}

func moduleSpecifierFromDeclarations(declarations []*ast.Node) string {
	for _, decl := range declarations {
		for n := decl; n != nil; n = n.Parent {
			if n.Kind != ast.KindImportDeclaration {
				continue
			}
			spec := n.AsImportDeclaration().ModuleSpecifier
			if spec != nil && spec.Kind == ast.KindStringLiteral {
				return spec.AsStringLiteral().Text
			}
			break
		}
	}
	return ""
}
