package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runExtract(args, stdout, stderr)
	}

	switch args[0] {
	case "extract":
		return runExtract(args[1:], stdout, stderr)
	case "watch":
		return runWatch(args[1:], stdout, stderr)
	case "--version", "-v":
		fmt.Fprintln(stdout, "tsreflect", version)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	default:
		if strings.HasPrefix(args[0], "-") {
			return runExtract(args, stdout, stderr)
		}
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "tsreflect - reflect TypeScript class declarations into canonical type metadata")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tsreflect [flags]              Extract metadata (default)")
	fmt.Fprintln(w, "  tsreflect extract [flags]      Extract metadata")
	fmt.Fprintln(w, "  tsreflect watch [flags]        Extract, then re-extract on source changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Flags:")
	fmt.Fprintln(w, "  --version, -v          Print version and exit")
	fmt.Fprintln(w, "  --help, -h             Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Extract Flags:")
	fmt.Fprintln(w, "  --project, -p <path>   Path to tsconfig.json (default: tsconfig.json)")
	fmt.Fprintln(w, "  --config <path>        Path to tsreflect.config.json")
	fmt.Fprintln(w, "  --files <glob>         Target file pattern (repeatable)")
	fmt.Fprintln(w, "  --marker <name>        Required class decorator (repeatable)")
	fmt.Fprintln(w, "  --public-only          Drop private and protected methods")
	fmt.Fprintln(w, "  --exclude-overrides    Drop methods that override a base class member")
	fmt.Fprintln(w, "  --on-conflict <policy> overwrite (default) or error")
	fmt.Fprintln(w, "  --out <dir>            Output directory for metadata.json and generated-types.ts")
	fmt.Fprintln(w, "  --log-level <level>    debug, info, warn or error")
	fmt.Fprintln(w, "  --force                Ignore the build cache")
	fmt.Fprintln(w, "  --strict               Report warnings as errors and exit 1")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  tsreflect")
	fmt.Fprintln(w, "  tsreflect extract --marker Agent --files 'src/agents/**/*.ts'")
	fmt.Fprintln(w, "  tsreflect extract -p tsconfig.build.json --public-only --out gen")
	fmt.Fprintln(w)
}
