// Package metadata defines the canonical type descriptor schema produced by
// tsreflect. A Descriptor is a normalized, JSON-serializable representation of
// a TypeScript type as seen by the checker at a particular use site.
package metadata

// Descriptor represents the canonical shape of a TypeScript type.
// It is a flat tagged record: Kind selects which of the payload fields are set.
type Descriptor struct {
	// Kind identifies the primary kind of the type.
	Kind Kind `json:"kind"`

	// Optional is true when the immediate containment point (property,
	// parameter, or tuple slot) marks the value as optional. It never
	// propagates into nested descriptors.
	Optional bool `json:"optional"`

	// Name is the display name of the type.
	// Set for union, class, interface, object, others, and typed-array kinds.
	Name string `json:"name,omitempty"`

	// LiteralValue holds the stringified literal value for KindLiteral.
	LiteralValue string `json:"literalValue,omitempty"`

	// Elements holds the tuple element descriptors in declared order.
	// Only set when Kind == KindTuple.
	Elements []Descriptor `json:"elements,omitempty"`

	// Element holds the element type for arrays and the settled type for promises.
	Element *Descriptor `json:"element,omitempty"`

	// Key and Value hold the entry types of an associative collection.
	// Only set when Kind == KindMap.
	Key   *Descriptor `json:"key,omitempty"`
	Value *Descriptor `json:"value,omitempty"`

	// UnionTypes holds the member descriptors for unions.
	UnionTypes []Descriptor `json:"unionTypes,omitempty"`

	// TypeParams holds the generic arguments a type was instantiated with.
	TypeParams []Descriptor `json:"typeParams,omitempty"`

	// OriginalTypeName is the alias name a generic union was written as.
	OriginalTypeName string `json:"originalTypeName,omitempty"`

	// Properties holds the named members of class, interface, and object kinds.
	Properties []Property `json:"properties,omitempty"`

	// Recursive marks a cut point where the type graph refers back to a type
	// already being described on the current descent path.
	Recursive bool `json:"recursive,omitzero"`

	// NumericType names the element class of a binary numeric array
	// (e.g. "uint8", "float64"). Only set on the element descriptor.
	NumericType string `json:"numericType,omitempty"`

	// Text and Error describe a type that could not be mapped.
	// Only set when Kind == KindUnresolved.
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Kind identifies the category of a type.
type Kind string

const (
	KindVoid       Kind = "void"
	KindBoolean    Kind = "boolean"
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBigInt     Kind = "bigint"
	KindNull       Kind = "null"
	KindUndefined  Kind = "undefined"
	KindLiteral    Kind = "literal"
	KindTuple      Kind = "tuple"
	KindArray      Kind = "array"
	KindUnion      Kind = "union"
	KindClass      Kind = "class"
	KindInterface  Kind = "interface"
	KindObject     Kind = "object"
	KindMap        Kind = "map"
	KindPromise    Kind = "promise"
	KindOthers     Kind = "others"
	KindUnresolved Kind = "unresolved"
)

// Valid reports whether k is one of the known descriptor kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVoid, KindBoolean, KindString, KindNumber, KindBigInt, KindNull,
		KindUndefined, KindLiteral, KindTuple, KindArray, KindUnion, KindClass,
		KindInterface, KindObject, KindMap, KindPromise, KindOthers, KindUnresolved:
		return true
	}
	return false
}

// Structured reports whether the kind carries named properties.
func (k Kind) Structured() bool {
	return k == KindClass || k == KindInterface || k == KindObject
}

// Property represents a named member of a structured type.
type Property struct {
	Name     string     `json:"name"`
	Optional bool       `json:"optional"`
	Type     Descriptor `json:"type"`
}

// Parameter is a named, ordered method parameter. Type.Optional carries the
// parameter's own optionality.
type Parameter struct {
	Name string     `json:"name"`
	Type Descriptor `json:"type"`
}

// Method describes the signature of a method or callable field.
type Method struct {
	Parameters  []Parameter `json:"parameters"`
	ReturnType  Descriptor  `json:"returnType"`
	Description string      `json:"description,omitempty"`
}

// Definition is the reflected shape of one class-like declaration.
type Definition struct {
	// Name is the class name the definition is registered under.
	Name string `json:"name"`
	// SourceFile is the path of the file declaring the class.
	SourceFile string `json:"sourceFile,omitempty"`
	// Description is from the class JSDoc body text or @description tag.
	Description string `json:"description,omitempty"`
	// ConstructorParameters holds the parameters of the first public constructor.
	ConstructorParameters []Property `json:"constructorParameters"`
	// Methods maps method and callable-field names to their signatures.
	Methods map[string]Method `json:"methods"`
}

// Unresolved builds the descriptor used for types that could not be mapped.
func Unresolved(text string, optional bool, err string) Descriptor {
	return Descriptor{Kind: KindUnresolved, Text: text, Optional: optional, Error: err}
}

// Walk calls fn for d and every descriptor nested inside it, depth first.
// Returning false from fn skips the children of that descriptor.
func (d *Descriptor) Walk(fn func(*Descriptor) bool) {
	if d == nil || !fn(d) {
		return
	}
	for i := range d.Elements {
		d.Elements[i].Walk(fn)
	}
	d.Element.Walk(fn)
	d.Key.Walk(fn)
	d.Value.Walk(fn)
	for i := range d.UnionTypes {
		d.UnionTypes[i].Walk(fn)
	}
	for i := range d.TypeParams {
		d.TypeParams[i].Walk(fn)
	}
	for i := range d.Properties {
		d.Properties[i].Type.Walk(fn)
	}
}

// HasUnresolved reports whether d or any nested descriptor is unresolved.
func (d *Descriptor) HasUnresolved() bool {
	found := false
	d.Walk(func(n *Descriptor) bool {
		if n.Kind == KindUnresolved {
			found = true
		}
		return !found
	})
	return found
}
