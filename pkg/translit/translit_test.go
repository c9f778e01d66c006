package translit

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		name  string
		rules string
		input string
		want  string
	}{
		{"empty rules", "", "Élodie", "Élodie"},
		{"lower", ":: Lower", "DUPONT", "dupont"},
		{"any prefix", ":: Any-Lower", "MARTIN", "martin"},
		{"upper", "::Upper;", "rue", "RUE"},
		{"strip marks", ":: NFD; :: [:Mn:] Remove; :: NFC;", "Élodie Ñoño", "Elodie Nono"},
		{"strip accents", ":: Strip-Accents", "naïve café", "naive cafe"},
		{"literal", "'ß' > 'ss';", "Straße", "Strasse"},
		{"bare literal", "ä > ae; ö > oe", "Köln Bärstadt", "Koeln Baerstadt"},
		{"deletion", "'-' > ;", "Saint-Denis", "SaintDenis"},
		{"space run", "[:Space:]+ > ' '", "a  \t b\n\nc", "a b c"},
		{"first rule wins", "'ab' > x; 'a' > y", "aab", "yx"},
		{"no rescan", "a > b; b > c", "ab", "bc"},
		{"set range", "[a-c] > '*'", "abcd", "***d"},
		{"negated set", "[^a-z] > ", "a1b2-c", "abc"},
		{"set difference", "[[:L:]-[aeiou]] > '_'", "rome", "_o_e"},
		{"set intersection", "[[:Lu:]&[A-M]] > '#'", "AZmB", "#Zm#"},
		{"script property", "[:Script=Cyrillic:]+ > '?'", "Москва city", "? city"},
		{"long category", "[:Nonspacing_Mark:] > ", "e\u0301", "e"},
		{"escape", "\\u00E9 > e", "café", "cafe"},
		{"quoted quote", "'''' > ", "l'eglise", "leglise"},
		{"quoted plus", "' '+ > ' '", "a    b", "a b"},
		{"latin ascii", ":: Latin-ASCII", "Æsir Łódź", "AEsir Lodz"},
		{"latin ascii keeps other scripts", ":: Latin-ASCII", "ß Москва", "ss Москва"},
		{"any latin", ":: Any-Latin", "Москва", "Moskva"},
		{"filtered transform", ":: [a-m] Upper", "hello world", "HELLo worLD"},
		{"comment", ":: Lower; # lowercase everything\n'x' > 'y'", "XX", "yy"},
		{"fullwidth", ":: Fullwidth-Halfwidth", "ＡＢＣ１", "ABC1"},
		{"blocks between transforms", "'A' > 'b'; :: Upper; 'B' > 'c'", "Aa", "cA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Compile("test", tt.rules)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.rules, err)
			}
			got := tr.Transliterate(tt.input)
			if got != tt.want {
				t.Errorf("Transliterate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompileSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{"unknown transform", ":: Klingon-Latin"},
		{"missing name", "::"},
		{"no arrow", "'a' 'b'"},
		{"two arrows", "a > b > c"},
		{"reverse rule", "a < b"},
		{"bidirectional", "a <> b"},
		{"context", "a { b } > c"},
		{"variable", "$vowel = [aeiou]"},
		{"unterminated quote", "'abc > x"},
		{"unterminated set", "[abc > x"},
		{"unbalanced bracket", "abc] > x"},
		{"unknown property", "[:Nope:] > x"},
		{"empty lhs", " > x"},
		{"set on rhs", "a > [b]"},
		{"unquoted punctuation", "- > x"},
		{"bad range", "[z-a] > x"},
		{"bad escape", "\\uZZZZ > x"},
		{"star quantifier", "a* > x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("bad", tt.rules)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.rules)
			}
			if !errors.Is(err, ErrRuleSyntax) {
				t.Errorf("error %v does not wrap ErrRuleSyntax", err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not a *SyntaxError", err)
			}
			if se.ID != "bad" {
				t.Errorf("ID = %q, want bad", se.ID)
			}
			if !strings.Contains(err.Error(), "translit bad") {
				t.Errorf("message %q lacks transliterator id", err.Error())
			}
		})
	}
}

func TestTransliterateConcurrent(t *testing.T) {
	tr, err := Compile("concurrent", ":: NFD; :: [:Mn:] Remove; :: Lower; :: NFC; [:Space:]+ > ' '")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inputs := map[string]string{
		"Élodie  Dupont": "elodie dupont",
		"FRANÇOIS":       "francois",
		"Ñoño":           "nono",
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				for in, want := range inputs {
					if got := tr.Transliterate(in); got != want {
						errs <- in + " -> " + got
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestRegisterCustomTransform(t *testing.T) {
	Register("Test-Shout", filtered(func() transform.Transformer { return cases.Upper(language.Und) }))
	tr, err := Compile("custom", ":: test_shout")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := tr.Transliterate("ab"); got != "AB" {
		t.Errorf("Transliterate = %q, want AB", got)
	}
	found := false
	for _, n := range Names() {
		if n == "testshout" {
			found = true
		}
	}
	if !found {
		t.Errorf("Names() = %v, missing testshout", Names())
	}
}

func TestTransliterateAfterClose(t *testing.T) {
	tr, err := Compile("closed", ":: Lower; [:Space:]+ > ' '")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := tr.Transliterate("A  B"); got != "a b" {
		t.Fatalf("Transliterate = %q, want %q", got, "a b")
	}
	tr.Close()
	if got := tr.Transliterate("C  D"); got != "c d" {
		t.Errorf("Transliterate after Close = %q, want %q", got, "c d")
	}
}

func TestNullClosesConversionBlock(t *testing.T) {
	tests := []struct {
		name  string
		rules string
		want  string
	}{
		{"same block", "'-' > ' '; [:Space:]+ > ' '", "a   b"},
		{"separate block", "'-' > ' '; :: Null; [:Space:]+ > ' '", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Compile("block", tt.rules)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := tr.Transliterate("a - b"); got != tt.want {
				t.Errorf("Transliterate = %q, want %q", got, tt.want)
			}
		})
	}
}
