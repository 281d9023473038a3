// Package report renders a loaded configuration for humans: the three known
// fields, and a placeholder check that shows which references resolved.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/eugenenazirov/envyaml/internal/config"
	"github.com/eugenenazirov/envyaml/internal/interpolate"
)

// ErrIncomplete indicates database.primary lacks a field needed for a connection string.
var ErrIncomplete = errors.New("database.primary is missing required values")

// Status describes how a placeholder resolved.
type Status string

const (
	StatusSet       Status = "set"
	StatusDefaulted Status = "default"
	StatusMissing   Status = "missing"
)

// PlaceholderStatus is the outcome for one placeholder.
type PlaceholderStatus struct {
	Placeholder string `json:"placeholder"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Status      Status `json:"status"`
}

// Summary aggregates placeholder outcomes for a document.
type Summary struct {
	Placeholders []PlaceholderStatus `json:"placeholders"`
	Total        int                 `json:"total"`
	Set          int                 `json:"set"`
	Missing      int                 `json:"missing"`
}

// PrintKnown writes the database URL, API base URL and log level.
func PrintKnown(w io.Writer, cfg *config.Config) error {
	known := cfg.Known()
	_, err := fmt.Fprintf(w, "Database URL: %s\nAPI Base URL: %s\nLog Level: %s\n",
		known.Database.URL, known.API.BaseURL, known.Logging.Level)
	return err
}

// Inspect resolves every placeholder in raw and masks sensitive values.
// Totals count distinct variable names. A name is missing when any of its
// placeholders stays unresolved; defaulted names are neither set nor missing.
func Inspect(raw string, lookup interpolate.LookupFunc) Summary {
	if lookup == nil {
		lookup = interpolate.OSLookup
	}

	placeholders := interpolate.Find(raw)
	summary := Summary{Placeholders: make([]PlaceholderStatus, 0, len(placeholders))}
	names := map[string]Status{}

	for _, p := range placeholders {
		value, resolved := p.Resolve(lookup)
		status := StatusMissing
		if env, ok := lookup(p.Name); ok && env != "" {
			status = StatusSet
		} else if resolved {
			status = StatusDefaulted
		}

		display := value
		switch {
		case status == StatusMissing:
			display = "NOT SET"
		case IsSensitive(p.Name):
			display = Mask(value)
		}

		summary.Placeholders = append(summary.Placeholders, PlaceholderStatus{
			Placeholder: p.Raw,
			Name:        p.Name,
			Value:       display,
			Status:      status,
		})
		if prev, seen := names[p.Name]; !seen || prev == StatusDefaulted {
			names[p.Name] = status
		}
	}

	summary.Total = len(names)
	for _, status := range names {
		switch status {
		case StatusSet:
			summary.Set++
		case StatusMissing:
			summary.Missing++
		}
	}
	return summary
}

// IsSensitive reports whether a variable or key name looks like a credential.
func IsSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range []string{"PASSWORD", "SECRET", "KEY", "TOKEN"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// Mask replaces every character of value with '*'.
func Mask(value string) string {
	if value == "" {
		return "NOT SET"
	}
	return strings.Repeat("*", len([]rune(value)))
}

// Redact returns a deep copy of values with sensitive scalar entries masked.
// Everything nested under a sensitive key is masked as well.
func Redact(values map[string]any) map[string]any {
	return redactMap(values, false)
}

// RedactValue masks value as if it were stored under key.
func RedactValue(key string, value any) any {
	return redactValue(value, IsSensitive(key))
}

func redactMap(values map[string]any, sensitive bool) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = redactValue(value, sensitive || IsSensitive(key))
	}
	return out
}

func redactValue(value any, sensitive bool) any {
	switch v := value.(type) {
	case map[string]any:
		return redactMap(v, sensitive)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactValue(item, sensitive)
		}
		return out
	case nil:
		return nil
	default:
		if sensitive {
			return Mask(fmt.Sprint(v))
		}
		return v
	}
}

// ConnectionString builds a masked PostgreSQL URL from database.primary.
// Fields that are empty or still hold an unresolved placeholder count as missing.
func ConnectionString(cfg *config.Config) (string, error) {
	fields := map[string]string{}
	for _, name := range []string{"username", "password", "host", "port", "name"} {
		value := cfg.String("database.primary." + name)
		if value == "" || len(interpolate.Find(value)) > 0 {
			return "", fmt.Errorf("%w: %s", ErrIncomplete, name)
		}
		fields[name] = value
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		fields["username"], Mask(fields["password"]), fields["host"], fields["port"], fields["name"]), nil
}

// WriteCheck renders summary and, when possible, the connection string example.
func WriteCheck(w io.Writer, cfg *config.Config, summary Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Configuration: %s\n\n", cfg.Path)
	b.WriteString("Environment variable references:\n")
	rows := append([]PlaceholderStatus(nil), summary.Placeholders...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-32s %-8s %s\n", row.Placeholder, row.Status, row.Value)
	}
	if len(rows) == 0 {
		b.WriteString("  (none)\n")
	}

	writeDatabase(&b, cfg)

	b.WriteString("\nConnection string:\n")
	if conn, err := ConnectionString(cfg); err == nil {
		fmt.Fprintf(&b, "  %s\n", conn)
	} else {
		fmt.Fprintf(&b, "  cannot construct: %v\n", err)
	}

	fmt.Fprintf(&b, "\nTotal variables: %d\nSet: %d\nMissing: %d\n", summary.Total, summary.Set, summary.Missing)
	if summary.Missing == 0 {
		b.WriteString("All environment variables resolved.\n")
	} else {
		fmt.Fprintf(&b, "%d environment variable(s) are missing.\n", summary.Missing)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeDatabase renders database.primary with the password masked.
func writeDatabase(b *strings.Builder, cfg *config.Config) {
	if _, ok := cfg.Get("database.primary"); !ok {
		return
	}

	field := func(path string) string {
		if v := cfg.String("database.primary." + path); v != "" {
			return v
		}
		return "N/A"
	}

	b.WriteString("\nDatabase configuration:\n")
	fmt.Fprintf(b, "  Type:      %s\n", field("type"))
	fmt.Fprintf(b, "  Host:      %s\n", field("host"))
	fmt.Fprintf(b, "  Port:      %s\n", field("port"))
	fmt.Fprintf(b, "  Name:      %s\n", field("name"))
	fmt.Fprintf(b, "  Username:  %s\n", field("username"))
	password := cfg.String("database.primary.password")
	if len(interpolate.Find(password)) > 0 {
		password = ""
	}
	fmt.Fprintf(b, "  Password:  %s\n", Mask(password))
	if _, ok := cfg.Get("database.primary.pool"); ok {
		fmt.Fprintf(b, "  Pool:      min %s, max %s\n", field("pool.min"), field("pool.max"))
	}
}
