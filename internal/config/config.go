package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/envyaml/internal/interpolate"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "config.yaml"

var (
	// ErrNotFound indicates the configuration file does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrInvalidYAML indicates the substituted text is not a valid YAML mapping.
	ErrInvalidYAML = errors.New("invalid YAML")
)

// Config is the parsed configuration document. It is never mutated after Load.
type Config struct {
	Path string
	// Source is the file content before placeholder expansion.
	Source string
	// Raw is the expanded text handed to the YAML parser.
	Raw    string
	Values map[string]any
}

// KnownFields are the settings every configuration file is expected to carry.
type KnownFields struct {
	Database struct {
		URL string
	}
	API struct {
		BaseURL string
	}
	Logging struct {
		Level string
	}
}

// Load reads path, expands placeholders using lookup and parses the result.
// A nil lookup reads the process environment.
func Load(path string, lookup interpolate.LookupFunc) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg, err := Parse(data, lookup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse expands placeholders in data and parses it as a YAML mapping.
func Parse(data []byte, lookup interpolate.LookupFunc) (*Config, error) {
	raw := interpolate.New(lookup).Substitute(string(data))

	values := map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if values == nil {
		values = map[string]any{}
	}

	return &Config{Source: string(data), Raw: raw, Values: values}, nil
}

// Get returns the value at a dotted path such as "database.url".
func (c *Config) Get(path string) (any, bool) {
	if c == nil || path == "" {
		return nil, false
	}

	var current any = c.Values
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String formats the scalar at path. Missing paths and null values yield "".
func (c *Config) String(path string) string {
	value, ok := c.Get(path)
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// Known extracts the well-known fields.
func (c *Config) Known() KnownFields {
	var k KnownFields
	k.Database.URL = c.String("database.url")
	k.API.BaseURL = c.String("api.base_url")
	k.Logging.Level = c.String("logging.level")
	return k
}
