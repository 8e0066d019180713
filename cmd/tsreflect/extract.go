package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/analyzer"
	"github.com/tsreflect/tsreflect/internal/buildcache"
	"github.com/tsreflect/tsreflect/internal/codegen"
	"github.com/tsreflect/tsreflect/internal/compiler"
	"github.com/tsreflect/tsreflect/internal/config"
	"github.com/tsreflect/tsreflect/internal/diagnostic"
	"github.com/tsreflect/tsreflect/internal/metadata"
	"github.com/tsreflect/tsreflect/internal/store"
)

// runExtract implements "tsreflect extract".
func runExtract(args []string, stdout, stderr io.Writer) int {
	fs, flags := newExtractFlags("extract", stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := flags.resolve(fs)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "error: could not get working directory: %v\n", err)
		return 1
	}

	start := time.Now()
	res, err := extract(cfg, cwd, flags.force, logger, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if res.cached {
		fmt.Fprintln(stdout, "metadata is up to date")
		return 0
	}
	fmt.Fprintf(stdout, "reflected %d definition(s) into %s in %s (%d warning(s))\n",
		res.definitions, res.outDir, time.Since(start).Round(time.Millisecond), res.warnings)
	return 0
}

type extractResult struct {
	definitions int
	warnings    int
	cached      bool
	outDir      string
}

// extract runs one extraction: it opens a checker session, walks the target
// files, and writes metadata.json and generated-types.ts unless the build
// cache shows nothing changed. Diagnostics are printed to stderr; any error
// among them (every warning in strict mode) fails the run before outputs are
// written.
func extract(cfg *config.Config, cwd string, force bool, logger *slog.Logger, stderr io.Writer) (*extractResult, error) {
	diags := diagnostic.NewCollector(cfg.Strict)

	check := cfg.ValidateDetailed()
	for _, msg := range check.Warnings {
		diags.Warn(diagnostic.CategoryConfigInvalid, "", 0, msg)
	}
	for _, msg := range check.Errors {
		diags.Error(diagnostic.CategoryConfigInvalid, "", 0, msg)
	}
	if diags.HasErrors() {
		printDiagnostics(stderr, diags)
		return nil, errors.New("invalid config")
	}

	outDir := cfg.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cwd, outDir)
	}
	res := &extractResult{outDir: outDir}
	metadataPath := filepath.Join(outDir, store.FileName)
	modulePath := filepath.Join(outDir, codegen.ModuleFileName)
	cachePath := buildcache.CachePath(outDir, cfg.Project)

	session, compileDiags, err := compiler.OpenSession(compiler.SessionOptions{
		RootDir:  cwd,
		TSConfig: cfg.Project,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	if len(compileDiags) > 0 {
		for _, d := range compileDiags {
			diags.Error(diagnostic.CategoryCompile, relativePath(cwd, d.FilePath), 0, d.Message)
		}
		printDiagnostics(stderr, diags)
		return nil, errors.New("compilation failed")
	}
	defer session.Close()

	// Generated output picked up by the tsconfig include does not count as a source.
	var sources []string
	for _, sf := range compiler.GetSourceFiles(session.Program) {
		name := filepath.FromSlash(sf.FileName())
		if rel, err := filepath.Rel(outDir, name); err == nil && !strings.HasPrefix(rel, "..") {
			continue
		}
		sources = append(sources, sf.FileName())
	}
	configHash, err := buildcache.HashValue(cfg)
	if err != nil {
		return nil, err
	}
	sourceHash := buildcache.HashSources(sources)
	if !force && buildcache.Load(cachePath).IsValid(configHash, sourceHash) {
		logger.Debug("build cache hit", "cache", cachePath)
		printDiagnostics(stderr, diags)
		res.cached = true
		return res, nil
	}

	registry := metadata.NewRegistry(metadata.ConflictPolicy(cfg.OnConflict))
	walker, err := analyzer.NewDeclarationWalker(session, registry, logger)
	if err != nil {
		return nil, err
	}
	walkErr := walker.Walk(analyzer.ExtractOptions{
		TargetFiles:      cfg.Files,
		RequiredMarkers:  cfg.Markers,
		PublicOnly:       cfg.PublicOnly,
		ExcludeOverrides: cfg.ExcludeOverrides,
	})

	for _, w := range walker.Warnings() {
		diags.Warn(diagnostic.Category(w.Kind), relativePath(cwd, w.File), w.Line, w.Message)
	}
	printDiagnostics(stderr, diags)
	res.warnings = diags.WarningCount()
	if walkErr != nil {
		buildcache.Delete(cachePath)
		return nil, walkErr
	}
	if diags.HasErrors() {
		buildcache.Delete(cachePath)
		return nil, errors.Errorf("%d error(s) reported in strict mode; no output written", diags.ErrorCount())
	}

	if err := store.Save(metadataPath, registry); err != nil {
		return nil, err
	}
	module, err := codegen.GenerateModule(registry)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(modulePath, []byte(module)); err != nil {
		return nil, err
	}
	res.definitions = registry.Len()

	cache := buildcache.New(configHash, sourceHash, []string{metadataPath, modulePath})
	if err := buildcache.Save(cachePath, cache); err != nil {
		logger.Warn("could not save build cache", "error", err)
	}
	return res, nil
}

// printDiagnostics writes the sorted diagnostics and a summary line, or
// nothing when there are none.
func printDiagnostics(w io.Writer, diags *diagnostic.Collector) {
	if diags.Len() == 0 {
		return
	}
	diags.Sort()
	fmt.Fprint(w, diags.FormatAll())
	fmt.Fprintln(w, diags.Summary())
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "renaming %s", tmp)
	}
	return nil
}

func relativePath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
