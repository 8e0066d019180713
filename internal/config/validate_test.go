package config

import (
	"testing"
)

func TestValidateDetailed_Valid(t *testing.T) {
	cfg := DefaultConfig()
	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Errorf("expected valid config, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateDetailed_EmptyProject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Project = ""
	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected invalid config")
	}
}

func TestValidateDetailed_ProjectDirectoryWarning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Project = "packages/api"
	result := cfg.ValidateDetailed()
	if !result.IsValid() || len(result.Warnings) != 1 {
		t.Errorf("expected a single warning, got errors=%v warnings=%v", result.Errors, result.Warnings)
	}
}

func TestValidateDetailed_DecoratedMarker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []string{"@Agent()"}
	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected error for decorator syntax in marker name")
	}
}

func TestValidateDetailed_WeirdFilesPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Files = []string{"src/agents"}
	result := cfg.ValidateDetailed()
	if len(result.Warnings) == 0 {
		t.Error("expected warning for pattern without wildcard")
	}
}

func TestValidateDetailed_InvalidConflictPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnConflict = "merge"
	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected error for unknown conflict policy")
	}
}
