package codegen

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/pkg/errors"
)

// isIdentifier reports whether s can be used unquoted as an object key or
// binding name.
func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$') {
				return false
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$') {
				return false
			}
		}
	}
	return true
}

// objectKey returns an object literal key: the bare name for identifiers,
// a quoted string otherwise. `__proto__` uses computed-key syntax so it does
// not set the prototype.
func objectKey(name string) string {
	if name == "__proto__" {
		return `["__proto__"]`
	}
	if isIdentifier(name) {
		return name
	}
	return quote(name)
}

// quote renders s as a double-quoted string literal.
func quote(s string) string {
	return "\"" + stringEscape(s) + "\""
}

// stringEscape escapes a string so it can be safely embedded inside a
// double-quoted string literal. It handles backslashes, quotes, control
// characters (< 0x20), and Unicode line/paragraph separators.
func stringEscape(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			buf.WriteString(`\\`)
		case '"':
			buf.WriteString(`\"`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\u2028':
			buf.WriteString(`\u2028`)
		case '\u2029':
			buf.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				buf.WriteString(fmt.Sprintf(`\x%02x`, r))
			} else {
				buf.WriteRune(r)
			}
		}
	}
	return buf.String()
}

// literal converts one JSON value into an object literal expression, one
// member or element per line. indent is the prefix of the line the value
// starts on.
func literal(data []byte, indent string) (string, error) {
	dec := jsontext.NewDecoder(strings.NewReader(string(data)))
	var sb strings.Builder
	if err := writeLiteral(&sb, dec, indent); err != nil {
		return "", errors.Wrap(err, "render literal")
	}
	return sb.String(), nil
}

func writeLiteral(sb *strings.Builder, dec *jsontext.Decoder, indent string) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	inner := indent + "  "
	switch tok.Kind() {
	case '{':
		if dec.PeekKind() == '}' {
			_, err := dec.ReadToken()
			sb.WriteString("{}")
			return err
		}
		sb.WriteString("{\n")
		for dec.PeekKind() != '}' {
			key, err := dec.ReadToken()
			if err != nil {
				return err
			}
			sb.WriteString(inner)
			sb.WriteString(objectKey(key.String()))
			sb.WriteString(": ")
			if err := writeLiteral(sb, dec, inner); err != nil {
				return err
			}
			sb.WriteString(",\n")
		}
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		sb.WriteString(indent)
		sb.WriteString("}")
	case '[':
		if dec.PeekKind() == ']' {
			_, err := dec.ReadToken()
			sb.WriteString("[]")
			return err
		}
		sb.WriteString("[\n")
		for dec.PeekKind() != ']' {
			sb.WriteString(inner)
			if err := writeLiteral(sb, dec, inner); err != nil {
				return err
			}
			sb.WriteString(",\n")
		}
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		sb.WriteString(indent)
		sb.WriteString("]")
	case '"':
		sb.WriteString(quote(tok.String()))
	default:
		sb.WriteString(tok.String())
	}
	return nil
}
