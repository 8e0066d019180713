package compiler

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/pkg/errors"
)

// SessionOptions configures OpenSession.
type SessionOptions struct {
	// RootDir is the project directory; relative paths resolve against it.
	RootDir string
	// TSConfig is the tsconfig path, relative to RootDir. Defaults to "tsconfig.json".
	TSConfig string
	// BaseFS is the filesystem under the overlay. Defaults to CreateDefaultFS().
	BaseFS vfs.FS
	// VirtualFiles are extra in-memory sources keyed by absolute path.
	VirtualFiles map[string]string
	// Logger receives debug progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Session owns one program and its type checker for an extraction run.
// Close must be called to release the checker.
type Session struct {
	Program      *shimcompiler.Program
	Checker      *shimchecker.Checker
	ParsedConfig *tsoptions.ParsedCommandLine
	FS           *OverlayVFS
	RootDir      string
	// AnchorFile is the absolute path of the injected anchor source.
	AnchorFile string

	release func()
}

// OpenSession parses the tsconfig, injects the anchor file, creates the
// program, and acquires a type checker. Configuration or program diagnostics
// are returned without an error; the session is nil in that case.
func OpenSession(opts SessionOptions) (*Session, []Diagnostic, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rootDir := tspath.NormalizePath(opts.RootDir)
	tsconfig := opts.TSConfig
	if tsconfig == "" {
		tsconfig = "tsconfig.json"
	}
	base := opts.BaseFS
	if base == nil {
		base = CreateDefaultFS()
	}

	overlay := NewOverlayVFS(base, nil)
	var virtualRoots []string
	for path, src := range opts.VirtualFiles {
		abs := tspath.ResolvePath(rootDir, path)
		overlay.Add(abs, src)
		if isSourcePath(abs) {
			virtualRoots = append(virtualRoots, abs)
		}
	}
	slices.Sort(virtualRoots)
	anchorPath := AnchorPath(rootDir)
	overlay.Add(anchorPath, AnchorSource())

	host := CreateDefaultHost(rootDir, overlay)
	parsed, diags, err := ParseTSConfig(overlay, rootDir, tsconfig, host)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse tsconfig")
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}
	for _, root := range virtualRoots {
		AddRootFile(parsed, root)
	}
	AddRootFile(parsed, anchorPath)

	program, diags, err := CreateProgramFromConfig(parsed, host)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create program")
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}
	logger.Debug("program created", "root", rootDir, "files", len(parsed.ParsedConfig.FileNames))

	checker, release := shimcompiler.Program_GetTypeChecker(program, context.Background())
	if checker == nil {
		return nil, nil, errors.New("failed to get type checker")
	}

	return &Session{
		Program:      program,
		Checker:      checker,
		ParsedConfig: parsed,
		FS:           overlay,
		RootDir:      rootDir,
		AnchorFile:   anchorPath,
		release:      release,
	}, nil, nil
}

// Close releases the type checker. It is safe to call more than once.
func (s *Session) Close() {
	if s == nil || s.release == nil {
		return
	}
	s.release()
	s.release = nil
}

func isSourcePath(path string) bool {
	return (strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx")) && !strings.HasSuffix(path, ".d.ts")
}
