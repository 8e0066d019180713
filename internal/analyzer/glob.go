package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
)

// MatchesTargetFiles reports whether filePath matches any of the patterns.
// Patterns use doublestar syntax and are tried against the absolute path and
// the path relative to rootDir. An empty pattern list matches every file.
func MatchesTargetFiles(filePath, rootDir string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	filePath = filepath.ToSlash(filePath)
	candidates := []string{filePath}
	if rootDir != "" {
		root := strings.TrimSuffix(filepath.ToSlash(rootDir), "/") + "/"
		if rel, ok := strings.CutPrefix(filePath, root); ok {
			candidates = append(candidates, rel)
		}
	}

	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		for _, candidate := range candidates {
			if matched, err := doublestar.Match(pattern, candidate); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// ValidatePatterns returns the first malformed pattern error, if any. Each
// pattern is matched against its own text so every component gets parsed.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if _, err := doublestar.Match(pattern, pattern); err != nil {
			return errors.Wrapf(err, "target file pattern %q", pattern)
		}
	}
	return nil
}
