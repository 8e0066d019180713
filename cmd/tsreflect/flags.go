package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tsreflect/tsreflect/internal/config"
)

// stringList is a repeatable flag; comma separated values are split.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// extractFlags holds the command line overrides shared by extract and watch.
type extractFlags struct {
	configPath       string
	project          string
	files            stringList
	markers          stringList
	publicOnly       bool
	excludeOverrides bool
	onConflict       string
	outDir           string
	logLevel         string
	force            bool
	strict           bool

	set map[string]bool
}

func newExtractFlags(name string, output io.Writer) (*flag.FlagSet, *extractFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	f := &extractFlags{}

	fs.StringVar(&f.configPath, "config", "", "Path to tsreflect config file (tsreflect.config.json)")
	fs.StringVar(&f.project, "project", "", "Path to tsconfig.json (or use -p)")
	fs.StringVar(&f.project, "p", "", "Path to tsconfig.json (shorthand for --project)")
	fs.Var(&f.files, "files", "Target file glob, relative to the working directory (repeatable)")
	fs.Var(&f.markers, "marker", "Decorator a class must carry to be reflected (repeatable)")
	fs.BoolVar(&f.publicOnly, "public-only", false, "Drop private, protected and #private methods")
	fs.BoolVar(&f.excludeOverrides, "exclude-overrides", false, "Drop methods that override a base class member")
	fs.StringVar(&f.onConflict, "on-conflict", "", "Duplicate definition policy: overwrite or error")
	fs.StringVar(&f.outDir, "out", "", "Output directory for metadata.json and generated-types.ts")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.BoolVar(&f.force, "force", false, "Ignore the build cache and always extract")
	fs.BoolVar(&f.strict, "strict", false, "Report warnings as errors and fail without writing outputs")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: tsreflect %s [flags]\n\n", name)
		fmt.Fprintln(output, "Flags:")
		fs.PrintDefaults()
	}
	return fs, f
}

// resolve loads the config and applies the flags that were set explicitly.
func (f *extractFlags) resolve(fs *flag.FlagSet) (*config.Config, error) {
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	cfg, err := config.Resolve(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.set["project"] || f.set["p"] {
		cfg.Project = f.project
	}
	if f.set["files"] {
		cfg.Files = f.files
	}
	if f.set["marker"] {
		cfg.Markers = f.markers
	}
	if f.set["public-only"] {
		cfg.PublicOnly = f.publicOnly
	}
	if f.set["exclude-overrides"] {
		cfg.ExcludeOverrides = f.excludeOverrides
	}
	if f.set["on-conflict"] {
		cfg.OnConflict = f.onConflict
	}
	if f.set["out"] {
		cfg.OutDir = f.outDir
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.set["strict"] {
		cfg.Strict = f.strict
	}
	return cfg, nil
}

// newLogger builds the text logger used for progress output.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
