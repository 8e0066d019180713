package analyzer

// Warning kinds raised by the declaration walker.
const (
	WarningTypeUnresolved      = "type-unresolved"
	WarningMissingReturnType   = "missing-return-type"
	WarningDuplicateDefinition = "duplicate-definition"
)

// Warning represents a diagnostic warning during analysis.
type Warning struct {
	// File is the source file path where the warning was raised.
	File string
	// Line is the 1-based line of the offending declaration (0 = unknown).
	Line int
	// Message is a human-readable description of the issue.
	Message string
	// Kind is one of the Warning* constants.
	Kind string
}

// WarningCollector collects warnings during analysis.
type WarningCollector struct {
	Warnings []Warning
}

// NewWarningCollector creates a new, empty warning collector.
func NewWarningCollector() *WarningCollector {
	return &WarningCollector{}
}

// Add records a new warning.
func (wc *WarningCollector) Add(file string, line int, kind, message string) {
	wc.Warnings = append(wc.Warnings, Warning{File: file, Line: line, Kind: kind, Message: message})
}

// Count returns the number of warnings of the given kind.
func (wc *WarningCollector) Count(kind string) int {
	n := 0
	for _, w := range wc.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
