package compiler

import (
	"io/fs"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
)

// OverlayVFS wraps a base filesystem with in-memory virtual files.
// Virtual files take precedence over the underlying filesystem and are
// read-only.
type OverlayVFS struct {
	fs           vfs.FS
	VirtualFiles map[string]string
}

var _ vfs.FS = (*OverlayVFS)(nil)

// NewOverlayVFS creates an OverlayVFS with the given virtual files on top of a base FS.
// Keys must be absolute, normalized paths.
func NewOverlayVFS(baseFS vfs.FS, virtualFiles map[string]string) *OverlayVFS {
	if virtualFiles == nil {
		virtualFiles = make(map[string]string)
	}
	return &OverlayVFS{fs: baseFS, VirtualFiles: virtualFiles}
}

// Add registers (or replaces) a virtual file.
func (o *OverlayVFS) Add(path, contents string) {
	o.VirtualFiles[tspath.NormalizePath(path)] = contents
}

func (o *OverlayVFS) UseCaseSensitiveFileNames() bool {
	return o.fs.UseCaseSensitiveFileNames()
}

func (o *OverlayVFS) FileExists(path string) bool {
	if _, ok := o.VirtualFiles[path]; ok {
		return true
	}
	return o.fs.FileExists(path)
}

func (o *OverlayVFS) ReadFile(path string) (contents string, ok bool) {
	if src, ok := o.VirtualFiles[path]; ok {
		return src, true
	}
	return o.fs.ReadFile(path)
}

func (o *OverlayVFS) DirectoryExists(path string) bool {
	prefix := dirPrefix(path)
	for virtualFilePath := range o.VirtualFiles {
		if strings.HasPrefix(virtualFilePath, prefix) {
			return true
		}
	}
	return o.fs.DirectoryExists(path)
}

func (o *OverlayVFS) GetAccessibleEntries(path string) (result vfs.Entries) {
	result = o.fs.GetAccessibleEntries(path)

	prefix := dirPrefix(path)
	seenDirs := make(map[string]bool, len(result.Directories))
	for _, d := range result.Directories {
		seenDirs[d] = true
	}
	for virtualFilePath := range o.VirtualFiles {
		rest, found := strings.CutPrefix(virtualFilePath, prefix)
		if !found {
			continue
		}
		if dir, _, ok := strings.Cut(rest, "/"); ok {
			if !seenDirs[dir] {
				seenDirs[dir] = true
				result.Directories = append(result.Directories, dir)
			}
		} else {
			result.Files = append(result.Files, rest)
		}
	}
	return result
}

func dirPrefix(path string) string {
	p := tspath.NormalizePath(path)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

type virtualFileInfo struct {
	name string
	size int64
}

var (
	_ fs.FileInfo = (*virtualFileInfo)(nil)
	_ fs.DirEntry = (*virtualFileInfo)(nil)
)

func (fi *virtualFileInfo) IsDir() bool                { return false }
func (fi *virtualFileInfo) ModTime() time.Time         { return time.Time{} }
func (fi *virtualFileInfo) Mode() fs.FileMode          { return 0o444 }
func (fi *virtualFileInfo) Name() string               { return fi.name }
func (fi *virtualFileInfo) Size() int64                { return fi.size }
func (fi *virtualFileInfo) Sys() any                   { return nil }
func (fi *virtualFileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *virtualFileInfo) Type() fs.FileMode          { return 0 }

func (o *OverlayVFS) Stat(path string) vfs.FileInfo {
	if src, ok := o.VirtualFiles[path]; ok {
		return &virtualFileInfo{name: tspath.GetBaseFileName(path), size: int64(len(src))}
	}
	return o.fs.Stat(path)
}

func (o *OverlayVFS) WalkDir(root string, walkFn vfs.WalkDirFunc) error {
	return o.fs.WalkDir(root, walkFn)
}

func (o *OverlayVFS) Realpath(path string) string {
	if _, ok := o.VirtualFiles[path]; ok {
		return path
	}
	return o.fs.Realpath(path)
}

func (o *OverlayVFS) WriteFile(path string, data string, writeByteOrderMark bool) error {
	if _, ok := o.VirtualFiles[path]; ok {
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrPermission}
	}
	return o.fs.WriteFile(path, data, writeByteOrderMark)
}

func (o *OverlayVFS) Remove(path string) error {
	if _, ok := o.VirtualFiles[path]; ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
	}
	return o.fs.Remove(path)
}

func (o *OverlayVFS) Chtimes(path string, aTime time.Time, mTime time.Time) error {
	if _, ok := o.VirtualFiles[path]; ok {
		return &fs.PathError{Op: "chtimes", Path: path, Err: fs.ErrPermission}
	}
	return o.fs.Chtimes(path, aTime, mTime)
}
