package compiler_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/tsreflect/tsreflect/internal/compiler"
	"github.com/tsreflect/tsreflect/internal/testutil"
)

func TestAnchorSource(t *testing.T) {
	src := compiler.AnchorSource()
	for _, want := range []string{
		"export type __anchor_Object = Object;",
		"export type __anchor_Promise = Promise<unknown>;",
		"export type __anchor_Map = Map<unknown, unknown>;",
		"export type __anchor_Float64Array = Float64Array;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("anchor source missing %q:\n%s", want, src)
		}
	}
	if n := strings.Count(src, "export type "); n != len(compiler.AnchorTypes) {
		t.Errorf("expected %d aliases, got %d", len(compiler.AnchorTypes), n)
	}
}

func TestOpenSessionIncludesVirtualFilesAndAnchor(t *testing.T) {
	session := testutil.OpenSession(t, map[string]string{
		"src/a.ts": `export class A {}`,
		"src/b.ts": `import { A } from "./a"; export class B extends A {}`,
	})

	if session.Program.GetSourceFile(session.AnchorFile) == nil {
		t.Fatal("anchor file missing from program")
	}
	if tspath.GetBaseFileName(session.AnchorFile) != compiler.AnchorFileName {
		t.Errorf("unexpected anchor path %s", session.AnchorFile)
	}

	var names []string
	for _, sf := range compiler.GetSourceFiles(session.Program) {
		names = append(names, strings.TrimPrefix(sf.FileName(), session.RootDir+"/"))
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"src/a.ts", "src/b.ts"}) {
		t.Errorf("expected the two virtual sources only, got %v", names)
	}
}

func TestOpenSessionMissingTSConfig(t *testing.T) {
	_, _, err := compiler.OpenSession(compiler.SessionOptions{RootDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "could not find tsconfig") {
		t.Errorf("expected missing tsconfig error, got %v", err)
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	session := testutil.OpenSource(t, `export {};`)
	session.Close()
	session.Close()
}

func TestFormatDiagnostics(t *testing.T) {
	out := compiler.FormatDiagnostics([]compiler.Diagnostic{
		{FilePath: "/p/a.ts", Message: "bad"},
		{Message: "global"},
	})
	if out != "/p/a.ts: bad\nglobal\n" {
		t.Errorf("unexpected output %q", out)
	}
}
