package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/eugenenazirov/envyaml/internal/interpolate"
)

const sampleDocument = `database:
  url: postgres://${DB_USER:-app}@${DB_HOST}:5432/app
api:
  base_url: ${API_BASE_URL:-https://api.example.com}
logging:
  level: ${LOG_LEVEL}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSubstitutesAndParses(t *testing.T) {
	path := writeConfig(t, sampleDocument)
	env := interpolate.MapLookup(map[string]string{
		"DB_HOST":   "db.internal",
		"LOG_LEVEL": "debug",
	})

	cfg, err := Load(path, env)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Path != path {
		t.Fatalf("expected path %s, got %s", path, cfg.Path)
	}
	known := cfg.Known()
	if known.Database.URL != "postgres://app@db.internal:5432/app" {
		t.Fatalf("unexpected database url: %s", known.Database.URL)
	}
	if known.API.BaseURL != "https://api.example.com" {
		t.Fatalf("unexpected api base url: %s", known.API.BaseURL)
	}
	if known.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %s", known.Logging.Level)
	}
}

func TestLoadKeepsUnresolvedPlaceholders(t *testing.T) {
	path := writeConfig(t, sampleDocument)

	cfg, err := Load(path, interpolate.MapLookup(nil))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.String("logging.level"); got != "${LOG_LEVEL}" {
		t.Fatalf("expected placeholder to be preserved, got %q", got)
	}
}

func TestLoadUsesProcessEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_HOST", "localhost")
	path := writeConfig(t, sampleDocument)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.String("logging.level"); got != "warn" {
		t.Fatalf("expected warn, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrInvalidYAML) {
		t.Fatalf("missing file must fail before parsing")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [unclosed\n")

	_, err := Load(path, nil)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Fatalf("expected ErrInvalidYAML, got %v", err)
	}
}

func TestParseRejectsNonMappingDocument(t *testing.T) {
	if _, err := Parse([]byte("- a\n- b\n"), nil); !errors.Is(err, ErrInvalidYAML) {
		t.Fatalf("expected ErrInvalidYAML, got %v", err)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil, nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Values == nil || len(cfg.Values) != 0 {
		t.Fatalf("expected empty mapping, got %#v", cfg.Values)
	}
}

func TestParseWithoutPlaceholdersMatchesPlainYAML(t *testing.T) {
	doc := []byte(`database:
  url: postgres://localhost/app
  pool: {min: 1, max: 10}
api:
  base_url: https://api.example.com
features: [a, b]
logging:
  level: info
`)
	env := interpolate.MapLookup(map[string]string{"IRRELEVANT": "x"})

	substituted, err := Parse(doc, env)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	plain, err := Parse(doc, func(string) (string, bool) {
		t.Fatalf("lookup must not be called without placeholders")
		return "", false
	})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if !reflect.DeepEqual(substituted.Values, plain.Values) {
		t.Fatalf("documents differ:\n%#v\n%#v", substituted.Values, plain.Values)
	}
	if substituted.Raw != string(doc) {
		t.Fatalf("raw text changed without placeholders")
	}
}

func TestGet(t *testing.T) {
	cfg, err := Parse([]byte("a:\n  b:\n    c: 3\n  list: [1]\nnothing: null\n"), nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if v, ok := cfg.Get("a.b.c"); !ok || v != 3 {
		t.Fatalf("expected 3, got %v (%v)", v, ok)
	}
	if got := cfg.String("a.b.c"); got != "3" {
		t.Fatalf("expected \"3\", got %q", got)
	}
	if _, ok := cfg.Get("a.list.0"); ok {
		t.Fatalf("sequences are not traversed")
	}
	if _, ok := cfg.Get("a.missing"); ok {
		t.Fatalf("expected missing path")
	}
	if got := cfg.String("nothing"); got != "" {
		t.Fatalf("expected empty string for null, got %q", got)
	}
	if _, ok := cfg.Get(""); ok {
		t.Fatalf("empty path must not resolve")
	}
}
