package rules

import (
	"fmt"

	"github.com/hazyhaar/touchstone-names/pkg/translit"
	"github.com/hazyhaar/touchstone-names/pkg/variants"
)

// Loader provides the rules of a Config in the form names.RuleSetFromSource
// expects.
type Loader struct {
	normRules   string
	transRules  string
	searchRules string
	pairs       []variants.Pair
}

// Load reads a rule file and prepares its rules.
func Load(path string) (*Loader, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	l, err := NewLoader(cfg)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return l, nil
}

// NewLoader compiles the normalization rules of cfg and expands its variant
// rules into replacement pairs. Variant terms are normalized first, so they
// match names that went through the same normalization.
func NewLoader(cfg *Config) (*Loader, error) {
	l := &Loader{
		normRules:  joinRules(cfg.Normalization),
		transRules: joinRules(cfg.Transliteration),
	}
	if len(cfg.Search) > 0 {
		l.searchRules = joinRules(cfg.Search)
	} else {
		l.searchRules = joinRules(append(append([]string{}, cfg.Normalization...), cfg.Transliteration...))
	}

	norm, err := translit.Compile("normalization", l.normRules)
	if err != nil {
		return nil, err
	}
	defer norm.Close()

	seen := make(map[variants.Pair]struct{})
	for _, group := range cfg.Variants {
		for _, line := range group.Words {
			pairs, err := parseVariant(line, norm.Transliterate)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				l.pairs = append(l.pairs, p)
			}
		}
	}
	return l, nil
}

// NormalizationRules implements names.RuleSource.
func (l *Loader) NormalizationRules() string { return l.normRules }

// TransliterationRules implements names.RuleSource.
func (l *Loader) TransliterationRules() string { return l.transRules }

// SearchRules implements names.RuleSource.
func (l *Loader) SearchRules() string { return l.searchRules }

// ReplacementPairs implements names.RuleSource.
func (l *Loader) ReplacementPairs() []variants.Pair {
	return append([]variants.Pair(nil), l.pairs...)
}
