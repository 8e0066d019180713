package metadata

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrDuplicateDefinition is returned by Put under ConflictError when a
// definition with the same name was already recorded.
var ErrDuplicateDefinition = errors.New("duplicate definition")

// ConflictPolicy controls what happens when two definitions share a name.
type ConflictPolicy string

const (
	// ConflictOverwrite replaces the earlier definition (last writer wins).
	ConflictOverwrite ConflictPolicy = "overwrite"
	// ConflictError rejects the later definition.
	ConflictError ConflictPolicy = "error"
)

// Valid reports whether p is a known policy. The empty policy means overwrite.
func (p ConflictPolicy) Valid() bool {
	return p == "" || p == ConflictOverwrite || p == ConflictError
}

// Registry maps definition names to their reflected metadata. It only grows
// during an extraction run.
type Registry struct {
	Definitions map[string]*Definition
	Policy      ConflictPolicy
}

// NewRegistry creates an empty registry with the given conflict policy.
func NewRegistry(policy ConflictPolicy) *Registry {
	if policy == "" {
		policy = ConflictOverwrite
	}
	return &Registry{Definitions: make(map[string]*Definition), Policy: policy}
}

// Put records def under def.Name. It reports whether an existing definition
// was replaced. Under ConflictError a duplicate name returns
// ErrDuplicateDefinition and leaves the registry unchanged.
func (r *Registry) Put(def *Definition) (replaced bool, err error) {
	prev, ok := r.Definitions[def.Name]
	if ok && r.Policy == ConflictError {
		return false, errors.Wrapf(ErrDuplicateDefinition, "%s (declared in %s and %s)", def.Name, prev.SourceFile, def.SourceFile)
	}
	r.Definitions[def.Name] = def
	return ok, nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.Definitions[name]
	return def, ok
}

// Has checks if a named definition is already registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Definitions[name]
	return ok
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.Definitions)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Definitions))
	for name := range r.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the definitions ordered by name.
func (r *Registry) Sorted() []*Definition {
	names := r.Names()
	defs := make([]*Definition, len(names))
	for i, name := range names {
		defs[i] = r.Definitions[name]
	}
	return defs
}
