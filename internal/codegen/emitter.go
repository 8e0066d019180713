// Package codegen renders a metadata registry as a TypeScript module that
// exposes every reflected definition as a frozen object literal.
package codegen

import (
	"fmt"
	"strings"
)

// Emitter accumulates TypeScript module source with two-space indentation.
type Emitter struct {
	buf   strings.Builder
	depth int
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) prefix() string {
	return strings.Repeat("  ", e.depth)
}

// Line writes one line at the current depth. An empty line carries no indent.
func (e *Emitter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line != "" {
		e.buf.WriteString(e.prefix())
		e.buf.WriteString(line)
	}
	e.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (e *Emitter) Blank() {
	e.buf.WriteByte('\n')
}

// Comment writes a line comment. An empty comment renders as a bare "//".
func (e *Emitter) Comment(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if text == "" {
		e.Line("//")
		return
	}
	e.Line("// %s", text)
}

// Doc writes text as a single-line JSDoc comment. Whitespace runs collapse
// to one space and "*/" is escaped so the comment cannot end early.
func (e *Emitter) Doc(text string) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return
	}
	e.Line("/** %s */", strings.ReplaceAll(text, "*/", "*\\/"))
}

// Const writes `export const name = value as const;`. value is a literal
// rendered by literal with the emitter's current indent, so its closing
// bracket lines up with the declaration.
func (e *Emitter) Const(name, value string) {
	e.Line("export const %s = %s as const;", name, value)
}

// Open writes a line that opens a bracketed list and indents what follows.
func (e *Emitter) Open(format string, args ...any) {
	e.Line(format, args...)
	e.depth++
}

// Close dedents and writes the line that ends the list opened by Open.
func (e *Emitter) Close(line string) {
	if e.depth > 0 {
		e.depth--
	}
	e.Line("%s", line)
}

// String returns the accumulated source.
func (e *Emitter) String() string {
	return e.buf.String()
}
