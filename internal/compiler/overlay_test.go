package compiler

import (
	"errors"
	"io/fs"
	"slices"
	"testing"

	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

func TestOverlayVFSVirtualFiles(t *testing.T) {
	root := t.TempDir()
	overlay := NewOverlayVFS(osvfs.FS(), nil)
	overlay.Add(root+"/src/a.ts", "export const a = 1;")
	overlay.Add(root+"/src/nested/b.ts", "export const b = 2;")

	if !overlay.FileExists(root + "/src/a.ts") {
		t.Error("expected virtual file to exist")
	}
	if src, ok := overlay.ReadFile(root + "/src/a.ts"); !ok || src != "export const a = 1;" {
		t.Errorf("unexpected contents %q (ok=%v)", src, ok)
	}
	if !overlay.DirectoryExists(root + "/src/nested") {
		t.Error("expected virtual directory to exist")
	}

	entries := overlay.GetAccessibleEntries(root + "/src")
	if !slices.Contains(entries.Files, "a.ts") {
		t.Errorf("expected a.ts in %v", entries.Files)
	}
	if !slices.Equal(entries.Directories, []string{"nested"}) {
		t.Errorf("expected single nested directory, got %v", entries.Directories)
	}

	info := overlay.Stat(root + "/src/a.ts")
	if info == nil || info.Name() != "a.ts" || info.Size() != int64(len("export const a = 1;")) {
		t.Errorf("unexpected stat %+v", info)
	}
}

func TestOverlayVFSReadOnly(t *testing.T) {
	root := t.TempDir()
	overlay := NewOverlayVFS(osvfs.FS(), map[string]string{root + "/a.ts": ""})

	err := overlay.WriteFile(root+"/a.ts", "x", false)
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected permission error, got %v", err)
	}
	if err := overlay.Remove(root + "/a.ts"); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected permission error on remove, got %v", err)
	}
}
