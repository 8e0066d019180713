package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "tsreflect.config.json"

// Config represents the tsreflect configuration.
type Config struct {
	// Project is the tsconfig.json path, relative to the working directory.
	Project string `json:"project,omitempty"`
	// Files are doublestar patterns selecting the source files to walk.
	// Empty means every source file in the program.
	Files []string `json:"files,omitempty"`
	// Markers are decorator names a class must carry to be reflected.
	// Empty means every named class is reflected.
	Markers          []string `json:"markers,omitempty"`
	PublicOnly       bool     `json:"publicOnly"`
	ExcludeOverrides bool     `json:"excludeOverrides"`
	// OnConflict is "overwrite" (default) or "error".
	OnConflict string `json:"onConflict,omitempty"`
	// OutDir receives metadata.json and generated-types.ts.
	OutDir   string `json:"outDir,omitempty"`
	LogLevel string `json:"logLevel,omitempty"`
	// Strict reports every warning as an error and fails the run.
	Strict bool `json:"strict"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Project:    "tsconfig.json",
		OnConflict: "overwrite",
		OutDir:     ".tsreflect",
		LogLevel:   "info",
	}
}

// Load reads and parses a tsreflect config file on top of the defaults.
// Unknown members are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config, json.RejectUnknownMembers(true)); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", path)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config in %q", path)
	}

	return &config, nil
}

// Resolve loads path when given, else FileName when it exists, else the
// defaults. Environment overrides are applied last, after loading an
// optional .env file.
func Resolve(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg *Config
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case fileExists(FileName):
		loaded, err := Load(FileName)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		def := DefaultConfig()
		cfg = &def
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config after environment overrides")
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TSREFLECT_* variables. List values are
// comma separated; booleans use strconv.ParseBool.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_PROJECT"); ok {
		c.Project = v
	}
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_MARKERS"); ok {
		c.Markers = splitList(v)
	}
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_PUBLIC_ONLY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "TSREFLECT_PUBLIC_ONLY")
		}
		c.PublicOnly = b
	}
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_EXCLUDE_OVERRIDES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "TSREFLECT_EXCLUDE_OVERRIDES")
		}
		c.ExcludeOverrides = b
	}
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_OUT_DIR"); ok {
		c.OutDir = v
	}
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookupTrimmed(lookup, "TSREFLECT_STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "TSREFLECT_STRICT")
		}
		c.Strict = b
	}
	return nil
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if c.Project == "" {
		return errors.New("project must not be empty")
	}
	switch c.OnConflict {
	case "", "overwrite", "error":
	default:
		return errors.Errorf("onConflict must be \"overwrite\" or \"error\", got %q", c.OnConflict)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel. An empty level means info.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(err, "logLevel %q", c.LogLevel)
	}
	return level, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
