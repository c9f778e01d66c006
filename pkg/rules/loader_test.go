package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/touchstone-names/pkg/variants"
)

const sampleRules = `normalization:
  - ":: NFD"
  - ":: [:Mn:] Remove"
  - ":: Lower"
  - ":: NFC"
transliteration:
  - ":: Latin-ASCII"
variants:
  - words:
      - Street -> st
      - Road => rd
  - words:
      - ~strasse -> str
      - ^North -> n
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func hasPair(pairs []variants.Pair, src, repl string) bool {
	for _, p := range pairs {
		if p.Source == src && p.Replacement == repl {
			return true
		}
	}
	return false
}

func TestLoad(t *testing.T) {
	l, err := Load(writeRules(t, sampleRules))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantNorm := ":: NFD;\n:: [:Mn:] Remove;\n:: Lower;\n:: NFC;"
	if l.NormalizationRules() != wantNorm {
		t.Errorf("NormalizationRules = %q, want %q", l.NormalizationRules(), wantNorm)
	}
	if l.TransliterationRules() != ":: Latin-ASCII;" {
		t.Errorf("TransliterationRules = %q", l.TransliterationRules())
	}
	wantSearch := ":: NFD;\n:: [:Mn:] Remove;\n:: Lower;\n:: NFC;\n:: Latin-ASCII;"
	if l.SearchRules() != wantSearch {
		t.Errorf("SearchRules = %q, want %q", l.SearchRules(), wantSearch)
	}

	pairs := l.ReplacementPairs()
	checks := []struct {
		src, repl string
		want      bool
	}{
		{" street ", " street ", true},
		{" street ", " st ", true},
		{" road ", " rd ", true},
		{" road ", " road ", false},
		{" strasse ", " str ", true},
		{" strasse ", "str ", true},
		{"strasse ", "str ", true},
		{"strasse ", " str ", true},
		{"strasse ", "strasse ", true},
		{"^ north ", "^ n ", true},
		{"^ north ", "^ north ", true},
		{" north ", " n ", false},
	}
	for _, c := range checks {
		if got := hasPair(pairs, c.src, c.repl); got != c.want {
			t.Errorf("pair (%q, %q) present = %v, want %v", c.src, c.repl, got, c.want)
		}
	}
}

func TestLoadDeduplicatesPairs(t *testing.T) {
	l, err := Load(writeRules(t, `normalization: [":: Lower"]
variants:
  - words: ["street -> st", "STREET -> st"]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(l.ReplacementPairs()); n != 2 {
		t.Errorf("pairs = %d, want 2: %v", n, l.ReplacementPairs())
	}
}

func TestExplicitSearchRules(t *testing.T) {
	l, err := Load(writeRules(t, `normalization: [":: Lower"]
search: [":: Upper;"]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.SearchRules() != ":: Upper;" {
		t.Errorf("SearchRules = %q", l.SearchRules())
	}
	if len(l.ReplacementPairs()) != 0 {
		t.Errorf("pairs = %v, want none", l.ReplacementPairs())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/rules.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeRules(t, "normalization: [unclosed")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestParseVariantErrors(t *testing.T) {
	id := func(s string) string { return s }
	blank := func(string) string { return "" }
	tests := []struct {
		line string
		norm func(string) string
	}{
		{"street st", id},
		{"a -> b => c", id},
		{" -> st", id},
		{"street -> ", id},
		{"a,,b -> c", id},
		{"~ -> x", id},
		{"street -> ~st", id},
		{"st^reet -> x", id},
		{"street -> st", blank},
	}
	for _, tt := range tests {
		if _, err := parseVariant(tt.line, tt.norm); !errors.Is(err, ErrVariantSyntax) {
			t.Errorf("parseVariant(%q) err = %v, want ErrVariantSyntax", tt.line, err)
		}
	}
}

func TestParseVariantMultipleTerms(t *testing.T) {
	pairs, err := parseVariant("saint, st => ste, s", func(s string) string { return s })
	if err != nil {
		t.Fatalf("parseVariant: %v", err)
	}
	want := []variants.Pair{
		{Source: " saint ", Replacement: " ste "}, {Source: " saint ", Replacement: " s "},
		{Source: " st ", Replacement: " ste "}, {Source: " st ", Replacement: " s "},
	}
	if !variants.EqualMultiset(pairs, want) {
		t.Errorf("pairs = %v, want %v", pairs, want)
	}
}

func TestNewLoaderRejectsBadNormalization(t *testing.T) {
	_, err := NewLoader(&Config{Normalization: []string{":: Unknown-Transform"}})
	if err == nil {
		t.Fatal("expected error for unknown transform")
	}
}
