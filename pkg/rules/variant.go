package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/touchstone-names/pkg/variants"
)

// ErrVariantSyntax is returned for malformed variant rules.
var ErrVariantSyntax = errors.New("variant rule syntax error")

// term is one word of a variant rule with its boundary decorations.
type term struct {
	word     string
	attachL  bool // ~word: may be glued to the preceding word
	attachR  bool // word~: may be glued to the following word
	anchorL  bool // ^word: only at the start of a name
	anchorR  bool // word$: only at the end of a name
	original string
}

func parseTerm(s string) (term, error) {
	t := term{original: s}
	switch {
	case strings.HasPrefix(s, "~"):
		t.attachL = true
		s = s[1:]
	case strings.HasPrefix(s, "^"):
		t.anchorL = true
		s = s[1:]
	}
	switch {
	case strings.HasSuffix(s, "~"):
		t.attachR = true
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "$"):
		t.anchorR = true
		s = s[:len(s)-1]
	}
	t.word = strings.TrimSpace(s)
	if t.word == "" {
		return t, fmt.Errorf("%w: empty term %q", ErrVariantSyntax, t.original)
	}
	if strings.ContainsAny(t.word, "~^$") {
		return t, fmt.Errorf("%w: misplaced decoration in %q", ErrVariantSyntax, t.original)
	}
	return t, nil
}

func (t term) decorated() bool { return t.attachL || t.attachR || t.anchorL || t.anchorR }

func (t term) leftBounds() []string {
	switch {
	case t.anchorL:
		return []string{"^ "}
	case t.attachL:
		return []string{" ", ""}
	default:
		return []string{" "}
	}
}

func (t term) rightBounds() []string {
	switch {
	case t.anchorR:
		return []string{" ^"}
	case t.attachR:
		return []string{" ", ""}
	default:
		return []string{" "}
	}
}

// parseVariant expands one variant rule into replacement pairs.
//
//	street -> st          st is added, street is kept
//	street => st          street is replaced by st
//	saint, st -> ste      several terms on either side
//	~strasse -> str       source may be glued to the preceding word
//	bad~ -> b             source may be glued to the following word
//	^north -> n           only at the start of a name, south$ at the end
//
// Replacements take the boundaries of their source; for glueable sides
// both the glued and the separate form are produced.
func parseVariant(line string, normalize func(string) string) ([]variants.Pair, error) {
	op := "->"
	keep := true
	at := strings.Index(line, "->")
	if i := strings.Index(line, "=>"); i >= 0 {
		if at >= 0 {
			return nil, fmt.Errorf("%w: both -> and => in %q", ErrVariantSyntax, line)
		}
		op, keep, at = "=>", false, i
	}
	if at < 0 {
		return nil, fmt.Errorf("%w: missing -> or => in %q", ErrVariantSyntax, line)
	}

	sources, err := parseTerms(line[:at], normalize)
	if err != nil {
		return nil, err
	}
	repls, err := parseTerms(line[at+len(op):], normalize)
	if err != nil {
		return nil, err
	}
	for _, r := range repls {
		if r.decorated() {
			return nil, fmt.Errorf("%w: decorations are only allowed on source terms in %q", ErrVariantSyntax, line)
		}
	}

	var pairs []variants.Pair
	for _, src := range sources {
		for _, l := range src.leftBounds() {
			for _, r := range src.rightBounds() {
				from := l + src.word + r
				if keep {
					pairs = append(pairs, variants.Pair{Source: from, Replacement: from})
				}
				for _, repl := range repls {
					for _, rl := range replBounds(src.attachL, l) {
						for _, rr := range replBounds(src.attachR, r) {
							pairs = append(pairs, variants.Pair{Source: from, Replacement: rl + repl.word + rr})
						}
					}
				}
			}
		}
	}
	return pairs, nil
}

func replBounds(attach bool, bound string) []string {
	if attach {
		return []string{" ", ""}
	}
	return []string{bound}
}

func parseTerms(side string, normalize func(string) string) ([]term, error) {
	var terms []term
	for _, raw := range strings.Split(side, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, fmt.Errorf("%w: empty term in %q", ErrVariantSyntax, side)
		}
		t, err := parseTerm(raw)
		if err != nil {
			return nil, err
		}
		t.word = strings.TrimSpace(normalize(t.word))
		if t.word == "" {
			return nil, fmt.Errorf("%w: term %q normalizes to nothing", ErrVariantSyntax, raw)
		}
		terms = append(terms, t)
	}
	return terms, nil
}
