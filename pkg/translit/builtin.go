package translit

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Factory creates the transformer for a "::Name" statement. It is called
// once per pooled pipeline, so the returned transformer may keep state.
// filter is nil when the statement applies to every rune.
type Factory func(filter runes.Set) transform.Transformer

var (
	registryMu sync.RWMutex
	builtins   = make(map[string]Factory)
)

// Register makes a named transform available to "::Name" statements.
// Names are matched case-insensitively, ignoring '-', '_' and spaces.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	builtins[foldName(name)] = f
}

// lookup resolves a transform name. An "Any-" prefix is optional.
func lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	key := foldName(name)
	if f, ok := builtins[key]; ok {
		return f, nil
	}
	if rest, ok := strings.CutPrefix(key, "any"); ok {
		if f, ok := builtins[rest]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown transform %q", name)
}

// Names returns the registered transform names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// filtered adapts a filter-agnostic transformer constructor.
func filtered(newT func() transform.Transformer) Factory {
	return func(filter runes.Set) transform.Transformer {
		if filter == nil {
			return newT()
		}
		return runes.If(filter, newT(), nil)
	}
}

func init() {
	Register("NFC", filtered(func() transform.Transformer { return norm.NFC }))
	Register("NFD", filtered(func() transform.Transformer { return norm.NFD }))
	Register("NFKC", filtered(func() transform.Transformer { return norm.NFKC }))
	Register("NFKD", filtered(func() transform.Transformer { return norm.NFKD }))
	Register("Lower", filtered(func() transform.Transformer { return cases.Lower(language.Und) }))
	Register("Upper", filtered(func() transform.Transformer { return cases.Upper(language.Und) }))
	Register("Title", filtered(func() transform.Transformer { return cases.Title(language.Und) }))
	Register("Null", filtered(func() transform.Transformer { return transform.Nop }))
	Register("Fullwidth-Halfwidth", filtered(func() transform.Transformer { return width.Narrow }))
	Register("Strip-Accents", filtered(func() transform.Transformer {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}))
	Register("Remove", func(filter runes.Set) transform.Transformer {
		if filter == nil {
			filter = runes.Predicate(anyRune)
		}
		return runes.Remove(filter)
	})
	Register("Latin-ASCII", filtered(func() transform.Transformer {
		return asciiFolder{fold: func(r rune) bool {
			return unicode.In(r, unicode.Latin, unicode.Common, unicode.Inherited)
		}}
	}))
	ascii := filtered(func() transform.Transformer { return asciiFolder{fold: anyRune} })
	Register("ASCII", ascii)
	Register("Latin", ascii)
}

// asciiFolder replaces non-ASCII runes accepted by fold with their
// unidecode transliteration.
type asciiFolder struct {
	transform.NopResetter
	fold func(rune) bool
}

func (a asciiFolder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		out := src[nSrc : nSrc+size]
		if r != utf8.RuneError && a.fold(r) {
			out = []byte(unidecode.Unidecode(string(r)))
		}
		if nDst+len(out) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], out)
		nSrc += size
	}
	return nDst, nSrc, nil
}
