package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/watcher"
)

// runWatch implements "tsreflect watch": extract once, then re-extract
// whenever a TypeScript source under the working directory changes.
func runWatch(args []string, stdout, stderr io.Writer) int {
	fs, flags := newExtractFlags("watch", stderr)
	debounce := fs.Duration("debounce", 200*time.Millisecond, "Quiet period before re-extracting")
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

	rebuild := func(force bool) {
		start := time.Now()
		res, err := extract(cfg, cwd, force, logger, stderr)
		switch {
		case err != nil:
			fmt.Fprintf(stderr, "error: %v\n", err)
		case res.cached:
			fmt.Fprintln(stdout, "metadata is up to date")
		default:
			fmt.Fprintf(stdout, "reflected %d definition(s) in %s\n", res.definitions, time.Since(start).Round(time.Millisecond))
		}
	}
	rebuild(flags.force)

	outDir := cfg.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cwd, outDir)
	}
	w := watcher.New(watcher.Options{
		Dirs:       []string{cwd},
		Extensions: []string{".ts", ".tsx"},
		Ignore:     []string{outDir},
		Debounce:   *debounce,
	}, func(events []watcher.Event) {
		logger.Info("sources changed", "files", len(events), "first", relativePath(cwd, events[0].Path))
		rebuild(false)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintln(stdout, "watching for changes (ctrl-c to stop)")
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
