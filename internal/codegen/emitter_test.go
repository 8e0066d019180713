package codegen

import "testing"

func TestEmitterLine(t *testing.T) {
	e := NewEmitter()
	e.Line("const %s = %d;", "x", 42)
	e.Line("")
	if got := e.String(); got != "const x = 42;\n\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitterComments(t *testing.T) {
	e := NewEmitter()
	e.Comment("Header")
	e.Comment("")
	e.Comment("  %s", "item")
	want := "// Header\n//\n//   item\n"
	if got := e.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitterDoc(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Adds numbers.", "/** Adds numbers. */\n"},
		{"collapses whitespace", "Adds\n  two   numbers.", "/** Adds two numbers. */\n"},
		{"escapes terminator", "ends */ early", "/** ends *\\/ early */\n"},
		{"empty writes nothing", "  \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmitter()
			e.Doc(tt.text)
			if got := e.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmitterOpenClose(t *testing.T) {
	e := NewEmitter()
	e.Open("const list = [")
	e.Line("1,")
	e.Open("[")
	e.Line("2,")
	e.Close("],")
	e.Close("];")
	e.Close("// extra close stays at column 0")
	want := "const list = [\n  1,\n  [\n    2,\n  ],\n];\n// extra close stays at column 0\n"
	if got := e.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitterConstLinesUpLiteral(t *testing.T) {
	e := NewEmitter()
	lit, err := literal([]byte(`{"a":[1]}`), e.prefix())
	if err != nil {
		t.Fatal(err)
	}
	e.Const("aMetadata", lit)
	want := "export const aMetadata = {\n  a: [\n    1,\n  ],\n} as const;\n"
	if got := e.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
