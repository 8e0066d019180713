package analyzer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tsreflect/tsreflect/internal/analyzer"
	"github.com/tsreflect/tsreflect/internal/compiler"
	"github.com/tsreflect/tsreflect/internal/metadata"
	"github.com/tsreflect/tsreflect/internal/testutil"
)

// mapperEnv holds a checker session, its test.ts source file and a mapper.
type mapperEnv struct {
	session    *compiler.Session
	sourceFile *ast.SourceFile
	mapper     *analyzer.TypeMapper
}

// setupMapper creates a program from inline TypeScript source code and a
// TypeMapper over its checker. The session is released when the test ends.
func setupMapper(t *testing.T, tsSource string) *mapperEnv {
	t.Helper()

	session := testutil.OpenSource(t, tsSource)
	sourceFile := session.Program.GetSourceFile(session.RootDir + "/test.ts")
	if sourceFile == nil {
		t.Fatal("source file test.ts not found in program")
	}
	known, err := analyzer.LoadWellKnownTypes(session.Program, session.Checker, session.AnchorFile)
	if err != nil {
		t.Fatalf("load well-known types: %v", err)
	}
	return &mapperEnv{
		session:    session,
		sourceFile: sourceFile,
		mapper:     analyzer.NewTypeMapper(session.Checker, known, nil),
	}
}

// exportedType looks up a top-level type alias, interface or class by name
// and returns its checker type.
func (env *mapperEnv) exportedType(t *testing.T, typeName string) *shimchecker.Type {
	t.Helper()
	checker := env.session.Checker

	for _, stmt := range env.sourceFile.Statements.Nodes {
		switch stmt.Kind {
		case ast.KindTypeAliasDeclaration:
			decl := stmt.AsTypeAliasDeclaration()
			if decl.Name().Text() == typeName {
				return shimchecker.Checker_getTypeFromTypeNode(checker, decl.Type)
			}
		case ast.KindInterfaceDeclaration, ast.KindClassDeclaration, ast.KindEnumDeclaration:
			name := stmt.Name()
			if name != nil && name.Text() == typeName {
				if sym := checker.GetSymbolAtLocation(name); sym != nil {
					return shimchecker.Checker_getDeclaredTypeOfSymbol(checker, sym)
				}
			}
		}
	}

	t.Fatalf("type %q not found in source file", typeName)
	return nil
}

// mapExported maps the named declaration's type as a required value.
func (env *mapperEnv) mapExported(t *testing.T, typeName string) metadata.Descriptor {
	t.Helper()
	return env.mapper.Map(env.exportedType(t, typeName), false)
}

// walkSource reflects every class in an inline source with the given options.
func walkSource(t *testing.T, tsSource string, opts analyzer.ExtractOptions) (*analyzer.DeclarationWalker, *metadata.Registry) {
	t.Helper()
	return walkFiles(t, map[string]string{"test.ts": tsSource}, opts)
}

// walkFiles reflects every class in a set of inline files.
func walkFiles(t *testing.T, files map[string]string, opts analyzer.ExtractOptions) (*analyzer.DeclarationWalker, *metadata.Registry) {
	t.Helper()
	session := testutil.OpenSession(t, files)
	registry := metadata.NewRegistry(metadata.ConflictOverwrite)
	walker, err := analyzer.NewDeclarationWalker(session, registry, nil)
	if err != nil {
		t.Fatalf("new walker: %v", err)
	}
	if err := walker.Walk(opts); err != nil {
		t.Fatalf("walk: %v", err)
	}
	return walker, registry
}

func mustDefinition(t *testing.T, r *metadata.Registry, name string) *metadata.Definition {
	t.Helper()
	def, ok := r.Get(name)
	if !ok {
		t.Fatalf("definition %q not registered (have %v)", name, r.Names())
	}
	return def
}

func mustMethod(t *testing.T, def *metadata.Definition, name string) metadata.Method {
	t.Helper()
	m, ok := def.Methods[name]
	if !ok {
		t.Fatalf("method %q not found on %s", name, def.Name)
	}
	return m
}

func assertKind(t *testing.T, d metadata.Descriptor, expected metadata.Kind) {
	t.Helper()
	if d.Kind != expected {
		t.Errorf("expected Kind=%s, got Kind=%s (%+v)", expected, d.Kind, d)
	}
}

// assertDescriptor compares structurally, treating nil and empty slices alike.
func assertDescriptor(t *testing.T, got, want metadata.Descriptor) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func findProperty(t *testing.T, props []metadata.Property, name string) metadata.Property {
	t.Helper()
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %q not found", name)
	return metadata.Property{}
}
