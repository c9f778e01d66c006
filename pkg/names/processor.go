package names

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/touchstone-names/pkg/translit"
	"github.com/hazyhaar/touchstone-names/pkg/variants"
)

// MaxVariants bounds the number of partial variants built for one name.
// Names that would produce more fall back to their plain transliteration.
const MaxVariants = 128

// collapseSpace is appended to the transliteration rules so that no run of
// whitespace survives in a variant. The Null transform closes any conversion
// block the rules end with, so the collapse sees that block's output.
const collapseSpace = ";\n:: Null;\n[:Space:]+ > ' '"

// Processor applies the rules of a RuleSet to names. It holds no per-call
// state and is safe for concurrent use.
type Processor struct {
	normalizer   *translit.Transliterator
	toASCII      *translit.Transliterator
	search       *translit.Transliterator
	replacements *variants.Index
}

// NewProcessor compiles the three transliterators and the replacement index.
func NewProcessor(rules *RuleSet) (*Processor, error) {
	normalizer, err := translit.Compile("normalization", rules.normRules)
	if err != nil {
		return nil, fmt.Errorf("compile normalization rules: %w", err)
	}
	toASCII, err := translit.Compile("to_ascii", rules.transRules+collapseSpace)
	if err != nil {
		return nil, fmt.Errorf("compile transliteration rules: %w", err)
	}
	search, err := translit.Compile("search", rules.searchRules)
	if err != nil {
		return nil, fmt.Errorf("compile search rules: %w", err)
	}
	idx, err := variants.NewIndex(rules.replacements)
	if err != nil {
		return nil, fmt.Errorf("build replacement index: %w", err)
	}
	return &Processor{
		normalizer:   normalizer,
		toASCII:      toASCII,
		search:       search,
		replacements: idx,
	}, nil
}

// Normalized returns the indexing key for name.
func (p *Processor) Normalized(name string) string {
	return strings.TrimSpace(p.normalizer.Transliterate(name))
}

// SearchNormalized normalizes and transliterates a query term.
func (p *Processor) SearchNormalized(name string) string {
	return strings.TrimSpace(p.search.Transliterate(" " + name + " "))
}

// VariantsASCII computes the spelling variants of a normalized name and
// transliterates them to ASCII. The result is sorted and free of duplicates.
//
// Once a replacement applies somewhere in the name, the unmodified spelling
// is only part of the result if the rules register it as an identity
// replacement.
func (p *Processor) VariantsASCII(normName string) []string {
	baseform := "^ " + normName + " ^"
	partials := []string{""}

	startpos := 0
	pos := 0
	forceSpace := false
	for pos < len(baseform) {
		full, repl, ok := p.replacements.LongestPrefix(baseform[pos:])
		if !ok {
			_, size := utf8.DecodeRuneInString(baseform[pos:])
			pos += size
			forceSpace = false
			continue
		}

		done := baseform[startpos:pos]
		next := make([]string, 0, len(partials)*len(repl))
		for _, v := range partials {
			for _, r := range repl {
				if forceSpace && !strings.HasPrefix(r, " ") {
					continue
				}
				next = append(next, v+done+r)
			}
		}
		partials = next
		if len(partials) > MaxVariants {
			startpos = 0
			break
		}

		startpos = pos + len(full)
		if strings.HasSuffix(full, " ") {
			startpos--
			forceSpace = true
		}
		pos = startpos
	}

	if startpos == 0 {
		trans := strings.TrimSpace(p.toASCII.Transliterate(normName))
		if trans == "" {
			return []string{}
		}
		return []string{trans}
	}

	return p.resultSet(partials, baseform[startpos:])
}

func (p *Processor) resultSet(partials []string, suffix string) []string {
	seen := make(map[string]struct{}, len(partials))
	results := make([]string, 0, len(partials))
	for _, v := range partials {
		trans := strings.TrimSpace(p.toASCII.Transliterate(stripSentinels(v + suffix)))
		if trans == "" {
			continue
		}
		if _, dup := seen[trans]; dup {
			continue
		}
		seen[trans] = struct{}{}
		results = append(results, trans)
	}
	sort.Strings(results)
	return results
}

// stripSentinels drops the first and the last rune of s.
func stripSentinels(s string) string {
	_, first := utf8.DecodeRuneInString(s)
	s = s[first:]
	_, last := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-last]
}

// ReplacementSources returns the number of distinct replacement sources.
func (p *Processor) ReplacementSources() int { return p.replacements.Len() }
