package analyzer

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/compiler"
)

// TypedArray describes one binary numeric array built-in.
type TypedArray struct {
	// Name is the built-in's label (e.g. "Uint8Array").
	Name string
	// NumericType is the element width/signedness class (e.g. "uint8").
	NumericType string
}

// typedArrayClasses maps each typed array built-in to its element class.
var typedArrayClasses = map[string]string{
	"Int8Array":      "int8",
	"Uint8Array":     "uint8",
	"Int16Array":     "int16",
	"Uint16Array":    "uint16",
	"Int32Array":     "int32",
	"Uint32Array":    "uint32",
	"BigInt64Array":  "bigint64",
	"BigUint64Array": "biguint64",
	"Float32Array":   "float32",
	"Float64Array":   "float64",
}

// WellKnownTypes pins built-in library types to their declared symbols so the
// mapper can recognize them by identity, regardless of aliasing or type
// arguments. It is resolved once per session.
type WellKnownTypes struct {
	Object  *ast.Symbol
	Promise *ast.Symbol
	Map     *ast.Symbol

	typedArrays map[*ast.Symbol]TypedArray
}

// LoadWellKnownTypes resolves every alias declared in the session's anchor
// file. A missing file or an anchor without a symbol is a fatal error.
func LoadWellKnownTypes(program *shimcompiler.Program, checker *shimchecker.Checker, anchorFile string) (*WellKnownTypes, error) {
	sf := program.GetSourceFile(anchorFile)
	if sf == nil {
		return nil, errors.Errorf("anchor file %s is not part of the program", anchorFile)
	}

	resolved := make(map[string]*ast.Symbol, len(compiler.AnchorTypes))
	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind != ast.KindTypeAliasDeclaration {
			continue
		}
		decl := stmt.AsTypeAliasDeclaration()
		name, ok := strings.CutPrefix(decl.Name().Text(), compiler.AnchorAliasPrefix)
		if !ok {
			continue
		}
		t := shimchecker.Checker_getTypeFromTypeNode(checker, decl.Type)
		if t == nil || t.Symbol() == nil {
			return nil, errors.Errorf("anchor %s did not resolve to a declared type", name)
		}
		resolved[name] = t.Symbol()
	}

	known := &WellKnownTypes{typedArrays: make(map[*ast.Symbol]TypedArray, len(typedArrayClasses))}
	for _, a := range compiler.AnchorTypes {
		sym, ok := resolved[a.Name]
		if !ok {
			return nil, errors.Errorf("anchor %s is missing from %s", a.Name, anchorFile)
		}
		switch a.Name {
		case "Object":
			known.Object = sym
		case "Promise":
			known.Promise = sym
		case "Map":
			known.Map = sym
		default:
			class, ok := typedArrayClasses[a.Name]
			if !ok {
				return nil, errors.Errorf("anchor %s has no known role", a.Name)
			}
			known.typedArrays[sym] = TypedArray{Name: a.Name, NumericType: class}
		}
	}
	return known, nil
}

// IsObject reports whether sym is the global Object interface.
func (w *WellKnownTypes) IsObject(sym *ast.Symbol) bool {
	return sym != nil && sym == w.Object
}

// IsPromise reports whether sym is the global Promise interface.
func (w *WellKnownTypes) IsPromise(sym *ast.Symbol) bool {
	return sym != nil && sym == w.Promise
}

// IsMap reports whether sym is the global Map interface.
func (w *WellKnownTypes) IsMap(sym *ast.Symbol) bool {
	return sym != nil && sym == w.Map
}

// TypedArray returns the typed array variant declared by sym.
func (w *WellKnownTypes) TypedArray(sym *ast.Symbol) (TypedArray, bool) {
	if sym == nil {
		return TypedArray{}, false
	}
	ta, ok := w.typedArrays[sym]
	return ta, ok
}

// TypedArrayCount returns the number of anchored typed array variants.
func (w *WellKnownTypes) TypedArrayCount() int {
	return len(w.typedArrays)
}
