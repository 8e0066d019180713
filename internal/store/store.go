// Package store persists a metadata registry as JSON.
//
// The on-disk form is {"v": Version, "definitions": [...]} with definitions
// sorted by name, so unchanged registries produce byte-identical files.
package store

import (
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/metadata"
)

// Version is bumped whenever the descriptor schema changes incompatibly.
const Version = 1

// FileName is the metadata file written into the output directory.
const FileName = "metadata.json"

type document struct {
	V           int                    `json:"v"`
	Definitions []*metadata.Definition `json:"definitions"`
}

// Marshal encodes the registry deterministically.
func Marshal(r *metadata.Registry) ([]byte, error) {
	doc := document{V: Version, Definitions: r.Sorted()}
	data, err := json.Marshal(doc, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Wrap(err, "marshal registry")
	}
	return data, nil
}

// Unmarshal decodes a registry written by Marshal. The returned registry uses
// the overwrite conflict policy.
func Unmarshal(data []byte) (*metadata.Registry, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal registry")
	}
	if doc.V != Version {
		return nil, errors.Errorf("unsupported metadata version %d (want %d)", doc.V, Version)
	}

	reg := metadata.NewRegistry(metadata.ConflictError)
	for _, def := range doc.Definitions {
		if def == nil || def.Name == "" {
			return nil, errors.New("definition without a name")
		}
		if err := checkKinds(def); err != nil {
			return nil, err
		}
		restoreEmpty(def)
		if _, err := reg.Put(def); err != nil {
			return nil, err
		}
	}
	reg.Policy = metadata.ConflictOverwrite
	return reg, nil
}

// Save writes the registry to path atomically (write to temp, rename).
func Save(path string, r *metadata.Registry) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", dir)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "writing metadata temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "renaming metadata file")
	}
	return nil
}

// Load reads a registry written by Save.
func Load(path string) (*metadata.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read metadata %s", path)
	}
	reg, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return reg, nil
}

func checkKinds(def *metadata.Definition) error {
	var bad metadata.Kind
	check := func(d *metadata.Descriptor) bool {
		if !d.Kind.Valid() {
			bad = d.Kind
			return false
		}
		return true
	}
	for i := range def.ConstructorParameters {
		def.ConstructorParameters[i].Type.Walk(check)
		if bad != "" {
			return errors.Errorf("%s constructor parameter %s: unknown descriptor kind %q",
				def.Name, def.ConstructorParameters[i].Name, bad)
		}
	}
	for name, m := range def.Methods {
		for i := range m.Parameters {
			m.Parameters[i].Type.Walk(check)
		}
		m.ReturnType.Walk(check)
		if bad != "" {
			return errors.Errorf("%s.%s: unknown descriptor kind %q", def.Name, name, bad)
		}
	}
	return nil
}

// restoreEmpty gives descriptors whose list payload is part of their shape an
// empty list where the encoded form omitted it.
func restoreEmpty(def *metadata.Definition) {
	fill := func(d *metadata.Descriptor) bool {
		switch {
		case d.Kind == metadata.KindTuple && d.Elements == nil:
			d.Elements = []metadata.Descriptor{}
		case d.Kind == metadata.KindUnion && d.UnionTypes == nil:
			d.UnionTypes = []metadata.Descriptor{}
		case d.Kind.Structured() && d.Properties == nil:
			d.Properties = []metadata.Property{}
		}
		return true
	}
	if def.ConstructorParameters == nil {
		def.ConstructorParameters = []metadata.Property{}
	}
	for i := range def.ConstructorParameters {
		def.ConstructorParameters[i].Type.Walk(fill)
	}
	if def.Methods == nil {
		def.Methods = make(map[string]metadata.Method)
	}
	for name, m := range def.Methods {
		if m.Parameters == nil {
			m.Parameters = []metadata.Parameter{}
		}
		for i := range m.Parameters {
			m.Parameters[i].Type.Walk(fill)
		}
		m.ReturnType.Walk(fill)
		def.Methods[name] = m
	}
}
