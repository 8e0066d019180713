// Package testutil provides test helpers for tsreflect: opening checker
// sessions over inline TypeScript sources and loading txtar project fixtures.
package testutil

import (
	"path"
	"runtime"
	"strings"
	"testing"

	"github.com/microsoft/typescript-go/shim/bundled"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/compiler"
	"golang.org/x/tools/txtar"
)

// TestdataDir returns the absolute path to testdata/<name> at the module root.
func TestdataDir(name string) string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "..", "..", "testdata", name)
}

// ProjectDir is the fixture project every inline-source session is rooted at.
// It only holds a tsconfig.json; sources are provided in memory.
func ProjectDir() string {
	return TestdataDir("project")
}

// OpenSession opens a checker session rooted at ProjectDir with the given
// in-memory files (keys relative to the project root). The session is closed
// when the test ends.
func OpenSession(t testing.TB, files map[string]string) *compiler.Session {
	t.Helper()

	session, diags, err := compiler.OpenSession(compiler.SessionOptions{
		RootDir:      ProjectDir(),
		BaseFS:       bundled.WrapFS(osvfs.FS()),
		VirtualFiles: files,
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if len(diags) > 0 {
		t.Fatalf("session diagnostics:\n%s", compiler.FormatDiagnostics(diags))
	}
	t.Cleanup(session.Close)
	return session
}

// OpenSource opens a session over a single inline file named test.ts.
func OpenSource(t testing.TB, source string) *compiler.Session {
	t.Helper()
	return OpenSession(t, map[string]string{"test.ts": source})
}

// LoadTxtar reads a txtar archive and returns its files keyed by name.
// The archive comment is ignored.
func LoadTxtar(file string) (map[string]string, error) {
	archive, err := txtar.ParseFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "parse fixture %s", file)
	}
	return ArchiveFiles(archive), nil
}

// ArchiveFiles converts a parsed txtar archive into a file map.
func ArchiveFiles(archive *txtar.Archive) map[string]string {
	files := make(map[string]string, len(archive.Files))
	for _, f := range archive.Files {
		files[strings.TrimSpace(f.Name)] = string(f.Data)
	}
	return files
}

// OpenFixture loads testdata/fixtures/<name>.txtar and opens a session over it.
func OpenFixture(t testing.TB, name string) *compiler.Session {
	t.Helper()
	files, err := LoadTxtar(path.Join(TestdataDir("fixtures"), name+".txtar"))
	if err != nil {
		t.Fatal(err)
	}
	return OpenSession(t, files)
}
