package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	if err := c.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if c.Project != "" && filepath.Ext(c.Project) != ".json" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("project: %q is not a .json file; did you mean %q?", c.Project, filepath.Join(c.Project, "tsconfig.json")))
	}

	for _, pattern := range c.Files {
		slashed := filepath.ToSlash(pattern)
		if _, err := doublestar.Match(slashed, slashed); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("files: invalid pattern %q: %v", pattern, err))
			continue
		}
		if !strings.Contains(pattern, "*") && !strings.HasSuffix(pattern, ".ts") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("files: pattern %q has no wildcard or .ts extension; did you mean %q?", pattern, pattern+"/**/*.ts"))
		}
	}

	for _, marker := range c.Markers {
		if marker == "" || strings.ContainsAny(marker, "@() ") {
			result.Errors = append(result.Errors,
				fmt.Sprintf("markers: %q must be a bare decorator name such as \"Agent\"", marker))
		}
	}

	if c.OutDir == "" {
		result.Warnings = append(result.Warnings, "outDir: empty; output is written to the working directory")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
