package interpolate

import "testing"

func TestSubstitute(t *testing.T) {
	env := MapLookup(map[string]string{
		"DB_HOST": "db.internal",
		"EMPTY":   "",
		"NESTED":  "${DB_HOST}",
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "set variable", in: "host: ${DB_HOST}", want: "host: db.internal"},
		{name: "set variable ignores default", in: "${DB_HOST:-localhost}", want: "db.internal"},
		{name: "unset with default", in: "${MISSING:-localhost}", want: "localhost"},
		{name: "unset without default", in: "url: ${MISSING}", want: "url: ${MISSING}"},
		{name: "empty value falls back to default", in: "${EMPTY:-fallback}", want: "fallback"},
		{name: "empty value without default", in: "${EMPTY}", want: "${EMPTY}"},
		{name: "empty default keeps placeholder", in: "${MISSING:-}", want: "${MISSING:-}"},
		{name: "default is not re-expanded", in: "${MISSING:-${DB_HOST}}", want: "${DB_HOST}"},
		{name: "value is not re-expanded", in: "${NESTED}", want: "${DB_HOST}"},
		{name: "default keeps separators", in: "${MISSING:-a:-b}", want: "a:-b"},
		{name: "empty name is not a placeholder", in: "${:-x}", want: "${:-x}"},
		{name: "single colon is not a default", in: "${DB_HOST:x}", want: "${DB_HOST:x}"},
		{name: "several placeholders", in: "${DB_HOST}:${PORT:-5432}", want: "db.internal:5432"},
		{name: "no placeholders", in: "plain: text", want: "plain: text"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Substitute(tc.in, env); got != tc.want {
				t.Fatalf("Substitute(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSubstituteUsesProcessEnvironment(t *testing.T) {
	t.Setenv("ENVYAML_TEST_LEVEL", "debug")

	got := New(nil).Substitute("level: ${ENVYAML_TEST_LEVEL:-info}")
	if got != "level: debug" {
		t.Fatalf("unexpected substitution: %q", got)
	}
}

func TestSubstituteBytes(t *testing.T) {
	s := New(MapLookup(map[string]string{"A": "1"}))
	if got := string(s.SubstituteBytes([]byte("a: ${A}"))); got != "a: 1" {
		t.Fatalf("unexpected substitution: %q", got)
	}
}

func TestFind(t *testing.T) {
	got := Find("${A} ${B:-x} ${A} ${C:-}")
	if len(got) != 3 {
		t.Fatalf("expected 3 distinct placeholders, got %d: %+v", len(got), got)
	}

	if got[0].Name != "A" || got[0].HasDefault {
		t.Fatalf("unexpected first placeholder: %+v", got[0])
	}
	if got[1].Name != "B" || !got[1].HasDefault || got[1].Default != "x" {
		t.Fatalf("unexpected second placeholder: %+v", got[1])
	}
	if got[2].Raw != "${C:-}" || !got[2].HasDefault || got[2].Default != "" {
		t.Fatalf("unexpected third placeholder: %+v", got[2])
	}
}

func TestPlaceholderResolve(t *testing.T) {
	p := Placeholder{Raw: "${X}", Name: "X"}
	if value, ok := p.Resolve(MapLookup(nil)); ok || value != "${X}" {
		t.Fatalf("expected unresolved placeholder, got %q (%v)", value, ok)
	}
	if value, ok := p.Resolve(MapLookup(map[string]string{"X": "v"})); !ok || value != "v" {
		t.Fatalf("expected resolved value, got %q (%v)", value, ok)
	}
}
