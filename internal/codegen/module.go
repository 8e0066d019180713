package codegen

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/metadata"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ModuleFileName is the generated module written next to metadata.json.
const ModuleFileName = "generated-types.ts"

// GenerateModule renders the registry as a TypeScript module. Each definition
// becomes `export const <name>Metadata = {...} as const;` and a
// `typeMetadata` map indexes them by class name. Output is ordered by name.
func GenerateModule(reg *metadata.Registry) (string, error) {
	defs := reg.Sorted()
	idents := bindingNames(defs)
	title := cases.Title(language.English)

	e := NewEmitter()
	e.Comment("Code generated by tsreflect. DO NOT EDIT.")
	if len(defs) > 0 {
		e.Comment("")
		e.Comment("Definitions:")
		for _, def := range defs {
			e.Comment("  %s (%s)", title.String(strcase.ToDelimited(def.Name, ' ')), def.Name)
		}
	}
	e.Blank()

	for i, def := range defs {
		data, err := json.Marshal(def, json.Deterministic(true))
		if err != nil {
			return "", errors.Wrapf(err, "marshal definition %s", def.Name)
		}
		lit, err := literal(data, e.prefix())
		if err != nil {
			return "", errors.Wrapf(err, "definition %s", def.Name)
		}
		e.Doc(def.Description)
		e.Const(idents[i], lit)
		e.Blank()
	}

	e.Open("export const typeMetadata = new Map<string, unknown>([")
	for i, def := range defs {
		e.Line("[%s, %s],", quote(def.Name), idents[i])
	}
	e.Close("]);")
	return e.String(), nil
}

// bindingNames derives a distinct lower-camel binding for each definition.
func bindingNames(defs []*metadata.Definition) []string {
	seen := make(map[string]int, len(defs))
	names := make([]string, len(defs))
	for i, def := range defs {
		base := strcase.ToLowerCamel(def.Name) + "Metadata"
		if !isIdentifier(base) {
			base = "_" + sanitizeIdentifier(base)
		}
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s%d", base, n+1)
		}
		seen[base]++
		names[i] = name
	}
	return names
}

func sanitizeIdentifier(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
