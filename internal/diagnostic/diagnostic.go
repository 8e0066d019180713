// Package diagnostic collects and formats the issues tsreflect reports while
// reflecting declarations.
package diagnostic

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity is the level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics. Walker warning kinds convert directly.
type Category string

const (
	CategoryTypeUnresolved      Category = "type-unresolved"
	CategoryMissingReturnType   Category = "missing-return-type"
	CategoryDuplicateDefinition Category = "duplicate-definition"
	CategoryConfigInvalid       Category = "config-invalid"
	CategoryCompile             Category = "compile"
)

var categoryHints = map[Category]string{
	CategoryTypeUnresolved:      "the descriptor is recorded as unresolved; simplify the type or wrap it in a named interface",
	CategoryMissingReturnType:   "add an explicit return type annotation",
	CategoryDuplicateDefinition: "rename one of the classes or narrow the target files",
	CategoryConfigInvalid:       "fix tsreflect.config.json or the matching TSREFLECT_* variable",
}

// HintFor returns the default fix suggestion for a category, if any.
func HintFor(category Category) string {
	return categoryHints[category]
}

// Diagnostic is one reported issue.
type Diagnostic struct {
	Severity Severity
	Category Category
	File     string
	Line     int // 1-based, 0 when unknown
	Message  string
	Hint     string
}

// String renders "file:line - severity: [category] message" with the hint
// on an indented second line.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.File != "" {
		sb.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&sb, ":%d", d.Line)
		}
		sb.WriteString(" - ")
	}
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.Category != "" {
		fmt.Fprintf(&sb, "[%s] ", d.Category)
	}
	sb.WriteString(d.Message)
	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

// Collector accumulates the diagnostics of one extraction run. In strict
// mode warnings are recorded as errors, so HasErrors fails the run.
// A nil *Collector discards everything.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool
}

// NewCollector creates an empty collector.
func NewCollector(strict bool) *Collector {
	return &Collector{strict: strict}
}

// Warn records a warning with the category's default hint.
func (c *Collector) Warn(category Category, file string, line int, message string) {
	if c == nil {
		return
	}
	sev := SeverityWarning
	if c.strict {
		sev = SeverityError
	}
	c.add(sev, category, file, line, message)
}

// Error records an error with the category's default hint.
func (c *Collector) Error(category Category, file string, line int, message string) {
	if c == nil {
		return
	}
	c.add(SeverityError, category, file, line, message)
}

func (c *Collector) add(sev Severity, category Category, file string, line int, message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: sev,
		Category: category,
		File:     file,
		Line:     line,
		Message:  message,
		Hint:     HintFor(category),
	})
}

// Sort orders diagnostics by file, then line, keeping insertion order for ties.
func (c *Collector) Sort() {
	if c == nil {
		return
	}
	slices.SortStableFunc(c.diagnostics, func(a, b Diagnostic) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Line, b.Line))
	})
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.diagnostics)
}

// CountCategory returns the number of diagnostics in category.
func (c *Collector) CountCategory(category Category) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diagnostics {
		if d.Category == category {
			n++
		}
	}
	return n
}

func (c *Collector) count(sev Severity) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error was recorded.
func (c *Collector) HasErrors() bool {
	return c.count(SeverityError) > 0
}

// ErrorCount returns the number of errors.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warnings.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

// FormatAll renders every diagnostic, one per line.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.diagnostics {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a line like "1 error(s), 2 warning(s)".
func (c *Collector) Summary() string {
	var parts []string
	if n := c.ErrorCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", n))
	}
	if n := c.WarningCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", n))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
