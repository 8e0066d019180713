package compiler

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/tspath"
)

// AnchorFileName is the synthetic source file injected into every session so
// built-in library types can be resolved to their declared symbols.
const AnchorFileName = "__tsreflect_anchors__.ts"

// AnchorAliasPrefix prefixes every type alias declared in the anchor file.
// The remainder of the alias name is the built-in type name.
const AnchorAliasPrefix = "__anchor_"

// AnchorTypes lists the built-in types pinned by the anchor file, in
// declaration order, with the type arguments needed to reference them.
var AnchorTypes = []struct {
	Name string
	Args string
}{
	{"Object", ""},
	{"Promise", "<unknown>"},
	{"Map", "<unknown, unknown>"},
	{"Int8Array", ""},
	{"Uint8Array", ""},
	{"Int16Array", ""},
	{"Uint16Array", ""},
	{"Int32Array", ""},
	{"Uint32Array", ""},
	{"BigInt64Array", ""},
	{"BigUint64Array", ""},
	{"Float32Array", ""},
	{"Float64Array", ""},
}

// AnchorSource renders the anchor file contents.
func AnchorSource() string {
	var sb strings.Builder
	sb.WriteString("// Generated by tsreflect. Do not edit.\n")
	for _, a := range AnchorTypes {
		sb.WriteString("export type ")
		sb.WriteString(AnchorAliasPrefix)
		sb.WriteString(a.Name)
		sb.WriteString(" = ")
		sb.WriteString(a.Name)
		sb.WriteString(a.Args)
		sb.WriteString(";\n")
	}
	return sb.String()
}

// AnchorPath returns the absolute path of the anchor file for a project root.
func AnchorPath(rootDir string) string {
	return tspath.ResolvePath(rootDir, AnchorFileName)
}
