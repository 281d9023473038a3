package interpolate

import (
	"os"
	"regexp"
)

// placeholderPattern matches ${NAME} and ${NAME:-DEFAULT}.
var placeholderPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// LookupFunc resolves a variable name. The boolean reports whether it is set.
type LookupFunc func(name string) (string, bool)

// OSLookup resolves names against the process environment.
func OSLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapLookup resolves names against a fixed mapping.
func MapLookup(env map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
}

// Placeholder describes one ${...} token found in raw text.
type Placeholder struct {
	Raw        string
	Name       string
	Default    string
	HasDefault bool
}

// Resolve returns the replacement for p and whether the placeholder was
// replaced at all. Unresolvable placeholders yield their raw text.
func (p Placeholder) Resolve(lookup LookupFunc) (string, bool) {
	if lookup == nil {
		lookup = OSLookup
	}
	if value, ok := lookup(p.Name); ok && value != "" {
		return value, true
	}
	if p.HasDefault && p.Default != "" {
		return p.Default, true
	}
	return p.Raw, false
}

// Substitutor expands placeholders using a fixed lookup.
type Substitutor struct {
	lookup LookupFunc
}

// New returns a Substitutor. A nil lookup reads the process environment.
func New(lookup LookupFunc) *Substitutor {
	if lookup == nil {
		lookup = OSLookup
	}
	return &Substitutor{lookup: lookup}
}

// Substitute expands every placeholder in text.
func (s *Substitutor) Substitute(text string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		value, _ := parsePlaceholder(match).Resolve(s.lookup)
		return value
	})
}

// SubstituteBytes is Substitute for file contents.
func (s *Substitutor) SubstituteBytes(data []byte) []byte {
	return []byte(s.Substitute(string(data)))
}

// Substitute expands every placeholder in text using lookup.
func Substitute(text string, lookup LookupFunc) string {
	return New(lookup).Substitute(text)
}

// Find lists the distinct placeholders in text in order of first appearance.
func Find(text string) []Placeholder {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		p := placeholderFromIndex(text, m)
		if _, dup := seen[p.Raw]; dup {
			continue
		}
		seen[p.Raw] = struct{}{}
		out = append(out, p)
	}
	return out
}

func parsePlaceholder(match string) Placeholder {
	m := placeholderPattern.FindStringSubmatchIndex(match)
	if m == nil {
		return Placeholder{Raw: match}
	}
	return placeholderFromIndex(match, m)
}

func placeholderFromIndex(text string, m []int) Placeholder {
	p := Placeholder{
		Raw:  text[m[0]:m[1]],
		Name: text[m[2]:m[3]],
	}
	if m[4] >= 0 {
		p.Default = text[m[4]:m[5]]
		p.HasDefault = true
	}
	return p
}
