// Package buildcache lets tsreflect skip an extraction run when nothing that
// feeds it has changed.
//
// A run is skipped only when the effective config, the content of every
// program source file, and the previously written outputs all match what the
// last successful run recorded. Any mismatch reruns the whole extraction;
// there is no partial invalidation because a change to one file can alter
// the descriptors of classes declared in another.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/pkg/errors"
)

// SchemaVersion is bumped when the cache format or the metadata format changes.
const SchemaVersion = 1

// FileName is the cache file name inside the output directory.
const FileName = ".tsreflect-cache"

// Cache records what was true when extraction last ran successfully.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// ConfigHash is the SHA-256 hex digest of the effective configuration.
	ConfigHash string `json:"configHash"`

	// SourceHash digests the path and content of every program source file.
	SourceHash string `json:"sourceHash"`

	// Outputs lists the files that must still exist for the cache to be valid.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file path inside the output directory, so that
// deleting the output directory also drops the cache.
//
// If outDir is empty it falls back to a sibling of the tsconfig:
// "tsconfig.build.json" becomes "tsconfig.build.tsreflect-cache".
func CachePath(outDir string, tsconfigPath string) string {
	if outDir != "" {
		return filepath.Join(outDir, FileName)
	}
	dir := filepath.Dir(tsconfigPath)
	name := strings.TrimSuffix(filepath.Base(tsconfigPath), ".json")
	return filepath.Join(dir, name+".tsreflect-cache")
}

// Load reads and parses a cache file from disk.
// Returns nil if the file doesn't exist, is unreadable, or is invalid JSON.
// Callers treat nil as a cache miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}

	return &c
}

// Save writes the cache to disk atomically (write to temp, rename).
// A failed save only means the next run won't benefit from caching.
func Save(path string, cache *Cache) error {
	data, err := json.Marshal(cache, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return errors.Wrap(err, "marshaling cache")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating cache directory %s", dir)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "writing cache temp file")
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "renaming cache file")
	}

	return nil
}

// Delete removes the cache file from disk. Errors are ignored (file may not exist).
func Delete(path string) {
	os.Remove(path)
}

// IsValid reports whether the cache lets the caller skip extraction. The
// schema version, config hash and source hash must all match, and every
// recorded output must still exist.
func (c *Cache) IsValid(configHash, sourceHash string) bool {
	if c == nil {
		return false
	}
	if c.V != SchemaVersion {
		return false
	}
	if c.ConfigHash != configHash || c.SourceHash != sourceHash {
		return false
	}
	for _, path := range c.Outputs {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// HashFile computes the SHA-256 hex digest of a file's contents.
// Returns empty string if the file doesn't exist or can't be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return HashBytes(data)
}

// HashBytes computes the SHA-256 hex digest of data.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashValue digests the deterministic JSON encoding of v.
func HashValue(v any) (string, error) {
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return "", errors.Wrap(err, "hashing value")
	}
	return HashBytes(data), nil
}

// HashSources digests a set of files by path and content. Order of paths
// does not matter; an unreadable file hashes as empty content.
func HashSources(paths []string) string {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	h := sha256.New()
	for _, p := range sorted {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write([]byte(HashFile(p)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// New creates a new Cache with the current schema version.
func New(configHash, sourceHash string, outputs []string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		ConfigHash: configHash,
		SourceHash: sourceHash,
		Outputs:    outputs,
	}
}
