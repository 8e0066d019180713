package buildcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCachePath(t *testing.T) {
	t.Run("with outDir", func(t *testing.T) {
		tests := []struct {
			outDir string
			tsconf string
			want   string
		}{
			{"/project/dist", "/project/tsconfig.json", "/project/dist/.tsreflect-cache"},
			{"/project/dist", "/project/tsconfig.build.json", "/project/dist/.tsreflect-cache"},
			{"dist", "tsconfig.json", "dist/.tsreflect-cache"},
		}
		for _, tt := range tests {
			got := CachePath(tt.outDir, tt.tsconf)
			if got != tt.want {
				t.Errorf("CachePath(%q, %q) = %q, want %q", tt.outDir, tt.tsconf, got, tt.want)
			}
		}
	})

	t.Run("without outDir fallback", func(t *testing.T) {
		tests := []struct {
			tsconf string
			want   string
		}{
			{"/foo/tsconfig.json", "/foo/tsconfig.tsreflect-cache"},
			{"/foo/tsconfig.build.json", "/foo/tsconfig.build.tsreflect-cache"},
			{"/foo/bar/tsconfig.app.json", "/foo/bar/tsconfig.app.tsreflect-cache"},
			{"tsconfig.json", "tsconfig.tsreflect-cache"},
		}
		for _, tt := range tests {
			got := CachePath("", tt.tsconf)
			if got != tt.want {
				t.Errorf("CachePath(\"\", %q) = %q, want %q", tt.tsconf, got, tt.want)
			}
		}
	})
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()

	// Hash of existing file
	path := filepath.Join(dir, "test.txt")
	os.WriteFile(path, []byte("hello world"), 0644)
	hash1 := HashFile(path)
	if hash1 == "" {
		t.Fatal("HashFile returned empty for existing file")
	}

	// Same content = same hash
	path2 := filepath.Join(dir, "test2.txt")
	os.WriteFile(path2, []byte("hello world"), 0644)
	hash2 := HashFile(path2)
	if hash1 != hash2 {
		t.Errorf("same content produced different hashes: %q vs %q", hash1, hash2)
	}

	// Different content = different hash
	path3 := filepath.Join(dir, "test3.txt")
	os.WriteFile(path3, []byte("hello world!"), 0644)
	hash3 := HashFile(path3)
	if hash1 == hash3 {
		t.Error("different content produced same hash")
	}

	// Non-existent file = empty string
	hash4 := HashFile(filepath.Join(dir, "nonexistent"))
	if hash4 != "" {
		t.Errorf("HashFile returned %q for non-existent file, want empty", hash4)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.tsreflect-cache")

	// Load non-existent = nil
	c := Load(cachePath)
	if c != nil {
		t.Fatal("Load should return nil for non-existent file")
	}

	// Save and reload
	original := New("abc123", "src456", []string{"/foo/metadata.json", "/foo/generated-types.ts"})
	if err := Save(cachePath, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(cachePath)
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}

	if loaded.V != original.V {
		t.Errorf("V = %d, want %d", loaded.V, original.V)
	}
	if loaded.ConfigHash != original.ConfigHash {
		t.Errorf("ConfigHash = %q, want %q", loaded.ConfigHash, original.ConfigHash)
	}
	if loaded.SourceHash != original.SourceHash {
		t.Errorf("SourceHash = %q, want %q", loaded.SourceHash, original.SourceHash)
	}
	if len(loaded.Outputs) != len(original.Outputs) {
		t.Fatalf("Outputs length = %d, want %d", len(loaded.Outputs), len(original.Outputs))
	}
	for i, o := range loaded.Outputs {
		if o != original.Outputs[i] {
			t.Errorf("Outputs[%d] = %q, want %q", i, o, original.Outputs[i])
		}
	}
}

func TestLoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "corrupted.tsreflect-cache")

	// Write garbage
	os.WriteFile(cachePath, []byte("not json at all {{{"), 0644)

	c := Load(cachePath)
	if c != nil {
		t.Fatal("Load should return nil for corrupted JSON")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "empty.tsreflect-cache")

	os.WriteFile(cachePath, []byte(""), 0644)

	c := Load(cachePath)
	if c != nil {
		t.Fatal("Load should return nil for empty file")
	}
}

func TestIsValid_NilCache(t *testing.T) {
	var c *Cache
	if c.IsValid("anything", "anything") {
		t.Error("nil cache should not be valid")
	}
}

func TestIsValid_SchemaVersionMismatch(t *testing.T) {
	c := &Cache{
		V:          SchemaVersion + 1, // future version
		ConfigHash: "abc",
		Outputs:    nil,
	}
	if c.IsValid("abc", "") {
		t.Error("cache with wrong schema version should not be valid")
	}
}

func TestIsValid_ConfigHashMismatch(t *testing.T) {
	c := &Cache{
		V:          SchemaVersion,
		ConfigHash: "old-hash",
		Outputs:    nil,
	}
	if c.IsValid("new-hash", "") {
		t.Error("cache with mismatched config hash should not be valid")
	}
}

func TestIsValid_OutputFileMissing(t *testing.T) {
	dir := t.TempDir()
	existingFile := filepath.Join(dir, "exists.json")
	os.WriteFile(existingFile, []byte("{}"), 0644)

	c := &Cache{
		V:          SchemaVersion,
		ConfigHash: "abc",
		Outputs: []string{
			existingFile,
			filepath.Join(dir, "missing.json"), // doesn't exist
		},
	}
	if c.IsValid("abc", "") {
		t.Error("cache with missing output file should not be valid")
	}
}

func TestIsValid_AllChecksPass(t *testing.T) {
	dir := t.TempDir()
	file1 := filepath.Join(dir, "metadata.json")
	file2 := filepath.Join(dir, "generated-types.ts")
	os.WriteFile(file1, []byte("{}"), 0644)
	os.WriteFile(file2, []byte("{}"), 0644)

	c := &Cache{
		V:          SchemaVersion,
		ConfigHash: "correct-hash",
		Outputs: []string{
			file1,
			file2,
		},
	}
	if !c.IsValid("correct-hash", "") {
		t.Error("cache with all checks passing should be valid")
	}
}

func TestIsValid_NoOutputs(t *testing.T) {
	c := &Cache{
		V:          SchemaVersion,
		ConfigHash: "hash",
		Outputs:    nil,
	}
	if !c.IsValid("hash", "") {
		t.Error("cache with no output files to check should be valid when hash matches")
	}
}

func TestIsValid_EmptyConfigHash(t *testing.T) {
	// No config file used, both are empty
	c := &Cache{
		V:          SchemaVersion,
		ConfigHash: "",
		Outputs:    nil,
	}
	if !c.IsValid("", "") {
		t.Error("cache with empty config hash should be valid when current is also empty")
	}

	// But if someone adds a config, it should invalidate
	if c.IsValid("now-has-config", "") {
		t.Error("cache with empty config hash should be invalid when config is now present")
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.tsreflect-cache")

	// Write a cache file
	os.WriteFile(cachePath, []byte(`{"v":1}`), 0644)
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatal("cache file should exist before delete")
	}

	// Delete it
	Delete(cachePath)
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("cache file should not exist after delete")
	}

	// Deleting a missing file must not panic.
	Delete(filepath.Join(dir, "nonexistent"))
}

func TestNew(t *testing.T) {
	c := New("hash123", "src", []string{"/a", "/b"})
	if c.V != SchemaVersion {
		t.Errorf("V = %d, want %d", c.V, SchemaVersion)
	}
	if c.ConfigHash != "hash123" {
		t.Errorf("ConfigHash = %q, want %q", c.ConfigHash, "hash123")
	}
	if len(c.Outputs) != 2 {
		t.Fatalf("Outputs length = %d, want 2", len(c.Outputs))
	}
}

func TestSaveAtomicity(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "atomic.tsreflect-cache")

	// Save a cache file
	c := New("hash", "src", nil)
	if err := Save(cachePath, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify temp file is cleaned up (no .tmp file should remain)
	tmpPath := cachePath + ".tmp"
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Error("temp file should not exist after successful save")
	}

	// Verify the cache file exists and is valid
	loaded := Load(cachePath)
	if loaded == nil {
		t.Fatal("failed to load after atomic save")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedPath := filepath.Join(dir, "sub", "dir", "cache.tsreflect-cache")

	c := New("hash", "src", nil)
	if err := Save(nestedPath, c); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	loaded := Load(nestedPath)
	if loaded == nil {
		t.Fatal("failed to load from nested directory")
	}
}

func TestHashSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "b.ts")
	os.WriteFile(a, []byte("export class A {}"), 0644)
	os.WriteFile(b, []byte("export class B {}"), 0644)

	h1 := HashSources([]string{a, b})
	if h1 != HashSources([]string{b, a}) {
		t.Error("hash should not depend on path order")
	}

	os.WriteFile(b, []byte("export class B { run(): void {} }"), 0644)
	if h1 == HashSources([]string{a, b}) {
		t.Error("hash should change when a source changes")
	}
	if h1 == HashSources([]string{a}) {
		t.Error("hash should change when a source is removed")
	}
}

func TestHashValue(t *testing.T) {
	type opts struct {
		Markers []string `json:"markers"`
		Public  bool     `json:"public"`
	}
	h1, err := HashValue(opts{Markers: []string{"Agent"}})
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := HashValue(opts{Markers: []string{"Agent"}})
	h3, _ := HashValue(opts{Markers: []string{"Agent"}, Public: true})
	if h1 != h2 {
		t.Error("equal values should hash equally")
	}
	if h1 == h3 {
		t.Error("different values should hash differently")
	}
}

func TestRoundTripWithRealFiles(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "tsreflect.config.json")
	os.WriteFile(configPath, []byte(`{"markers":["Agent"]}`), 0644)
	configHash := HashFile(configPath)
	if configHash == "" {
		t.Fatal("failed to hash config file")
	}

	sourcePath := filepath.Join(dir, "src", "agent.ts")
	os.MkdirAll(filepath.Join(dir, "src"), 0755)
	os.WriteFile(sourcePath, []byte("export class Agent {}"), 0644)
	sourceHash := HashSources([]string{sourcePath})

	metadataPath := filepath.Join(dir, "out", "metadata.json")
	modulePath := filepath.Join(dir, "out", "generated-types.ts")
	os.MkdirAll(filepath.Join(dir, "out"), 0755)
	os.WriteFile(metadataPath, []byte(`{"v":1,"definitions":[]}`), 0644)
	os.WriteFile(modulePath, []byte("export {};"), 0644)

	cachePath := CachePath(filepath.Join(dir, "out"), "")
	c := New(configHash, sourceHash, []string{metadataPath, modulePath})
	if err := Save(cachePath, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(cachePath)
	if !loaded.IsValid(configHash, sourceHash) {
		t.Error("cache should be valid when nothing changed")
	}

	os.WriteFile(sourcePath, []byte("export class Agent { run(): void {} }"), 0644)
	if loaded.IsValid(configHash, HashSources([]string{sourcePath})) {
		t.Error("cache should be invalid when a source changed")
	}

	os.WriteFile(configPath, []byte(`{"markers":["Tool"]}`), 0644)
	if loaded.IsValid(HashFile(configPath), sourceHash) {
		t.Error("cache should be invalid when config changed")
	}

	os.Remove(metadataPath)
	if loaded.IsValid(configHash, sourceHash) {
		t.Error("cache should be invalid when an output file is deleted")
	}
}
