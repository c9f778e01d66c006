// Package names normalizes place names and generates the ASCII spelling
// variants under which they are indexed.
package names

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/touchstone-names/pkg/variants"
)

// Property keys under which a RuleSet is persisted.
const (
	PropNormalization   = "tokenizer_import_normalisation"
	PropTransliteration = "tokenizer_import_transliteration"
	PropReplacements    = "tokenizer_import_replacements"
	PropSearch          = "tokenizer_search_standardization"
)

var (
	// ErrConfig is the parent of all rule set configuration errors.
	ErrConfig = errors.New("name processor configuration")
	// ErrNoRuleSource is returned when neither a rule source nor a store is given.
	ErrNoRuleSource = fmt.Errorf("%w: rule source or property store required", ErrConfig)
	// ErrAmbiguousRuleSource is returned when both a rule source and a store are given.
	ErrAmbiguousRuleSource = fmt.Errorf("%w: give either a rule source or a property store, not both", ErrConfig)
	// ErrMissingProperty is returned when a persisted rule property is absent.
	ErrMissingProperty = fmt.Errorf("%w: missing property", ErrConfig)
)

// RuleSource supplies freshly authored rules.
type RuleSource interface {
	NormalizationRules() string
	TransliterationRules() string
	ReplacementPairs() []variants.Pair
	SearchRules() string
}

// PropertyStore persists string properties by key.
type PropertyStore interface {
	Property(ctx context.Context, key string) (value string, ok bool, err error)
	SetProperty(ctx context.Context, key, value string) error
}

// RuleSet bundles the rules a Processor is built from. It is immutable.
type RuleSet struct {
	normRules    string
	transRules   string
	searchRules  string
	replacements []variants.Pair
}

// NewRuleSet builds a RuleSet from exactly one of src and store.
func NewRuleSet(ctx context.Context, src RuleSource, store PropertyStore) (*RuleSet, error) {
	switch {
	case src != nil && store != nil:
		return nil, ErrAmbiguousRuleSource
	case src != nil:
		return RuleSetFromSource(src), nil
	case store != nil:
		return RuleSetFromStore(ctx, store)
	default:
		return nil, ErrNoRuleSource
	}
}

// RuleSetFromSource copies the rules out of an authoring source.
func RuleSetFromSource(src RuleSource) *RuleSet {
	return &RuleSet{
		normRules:    src.NormalizationRules(),
		transRules:   src.TransliterationRules(),
		searchRules:  src.SearchRules(),
		replacements: append([]variants.Pair(nil), src.ReplacementPairs()...),
	}
}

// RuleSetFromStore loads rules previously written by Save.
func RuleSetFromStore(ctx context.Context, store PropertyStore) (*RuleSet, error) {
	get := func(key string) (string, error) {
		v, ok, err := store.Property(ctx, key)
		if err != nil {
			return "", fmt.Errorf("load property %s: %w", key, err)
		}
		if !ok {
			return "", fmt.Errorf("%w %s", ErrMissingProperty, key)
		}
		return v, nil
	}

	rs := &RuleSet{}
	var err error
	if rs.normRules, err = get(PropNormalization); err != nil {
		return nil, err
	}
	if rs.transRules, err = get(PropTransliteration); err != nil {
		return nil, err
	}
	blob, err := get(PropReplacements)
	if err != nil {
		return nil, err
	}
	if rs.replacements, err = variants.DecodePairs(blob); err != nil {
		return nil, fmt.Errorf("%w: property %s: %w", ErrConfig, PropReplacements, err)
	}
	if rs.searchRules, err = get(PropSearch); err != nil {
		return nil, err
	}
	return rs, nil
}

// Save writes the rules to store under the Prop* keys.
func (rs *RuleSet) Save(ctx context.Context, store PropertyStore) error {
	blob, err := variants.EncodePairs(rs.replacements)
	if err != nil {
		return err
	}
	props := []struct{ key, value string }{
		{PropNormalization, rs.normRules},
		{PropTransliteration, rs.transRules},
		{PropReplacements, blob},
		{PropSearch, rs.searchRules},
	}
	for _, p := range props {
		if err := store.SetProperty(ctx, p.key, p.value); err != nil {
			return fmt.Errorf("save property %s: %w", p.key, err)
		}
	}
	return nil
}

// NormalizationRules returns the rules of the normalization engine.
func (rs *RuleSet) NormalizationRules() string { return rs.normRules }

// TransliterationRules returns the rules of the ASCII engine, without the
// whitespace collapsing rule the Processor appends.
func (rs *RuleSet) TransliterationRules() string { return rs.transRules }

// SearchRules returns the rules of the search engine.
func (rs *RuleSet) SearchRules() string { return rs.searchRules }

// ReplacementPairs returns a copy of the replacement pairs.
func (rs *RuleSet) ReplacementPairs() []variants.Pair {
	return append([]variants.Pair(nil), rs.replacements...)
}
