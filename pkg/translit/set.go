package translit

import (
	"fmt"
	"strings"
	"unicode"
)

// runeSet reports whether a rune belongs to a set.
type runeSet func(rune) bool

func anyRune(rune) bool { return true }

func isASCII(r rune) bool { return r < 0x80 }

func union(a, b runeSet) runeSet {
	return func(r rune) bool { return a(r) || b(r) }
}

func difference(a, b runeSet) runeSet {
	return func(r rune) bool { return a(r) && !b(r) }
}

func intersection(a, b runeSet) runeSet {
	return func(r rune) bool { return a(r) && b(r) }
}

func negate(a runeSet) runeSet {
	return func(r rune) bool { return !a(r) }
}

func emptySet(rune) bool { return false }

// Long general category names accepted in [:name:] in addition to the
// short forms found in unicode.Categories.
var categoryAliases = map[string]string{
	"letter":               "L",
	"casedletter":          "L",
	"uppercaseletter":      "Lu",
	"lowercaseletter":      "Ll",
	"titlecaseletter":      "Lt",
	"modifierletter":       "Lm",
	"otherletter":          "Lo",
	"mark":                 "M",
	"combiningmark":        "M",
	"nonspacingmark":       "Mn",
	"spacingmark":          "Mc",
	"enclosingmark":        "Me",
	"number":               "N",
	"decimalnumber":        "Nd",
	"digit":                "Nd",
	"letternumber":         "Nl",
	"othernumber":          "No",
	"punctuation":          "P",
	"punct":                "P",
	"connectorpunctuation": "Pc",
	"dashpunctuation":      "Pd",
	"openpunctuation":      "Ps",
	"closepunctuation":     "Pe",
	"initialpunctuation":   "Pi",
	"finalpunctuation":     "Pf",
	"otherpunctuation":     "Po",
	"symbol":               "S",
	"mathsymbol":           "Sm",
	"currencysymbol":       "Sc",
	"modifiersymbol":       "Sk",
	"othersymbol":          "So",
	"separator":            "Z",
	"spaceseparator":       "Zs",
	"lineseparator":        "Zl",
	"paragraphseparator":   "Zp",
	"other":                "C",
	"control":              "Cc",
	"cntrl":                "Cc",
	"format":               "Cf",
	"privateuse":           "Co",
	"surrogate":            "Cs",
}

// foldName lowercases a property name and drops the separators ICU treats
// as insignificant.
func foldName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// lookupProperty resolves the body of a [:...:] expression.
func lookupProperty(expr string) (runeSet, error) {
	name := strings.TrimSpace(expr)
	if i := strings.IndexByte(name, '='); i >= 0 {
		key := foldName(name[:i])
		value := strings.TrimSpace(name[i+1:])
		switch key {
		case "generalcategory", "gc":
			return lookupCategory(value)
		case "script", "sc":
			return lookupScript(value)
		default:
			return nil, fmt.Errorf("unknown property %q", name[:i])
		}
	}

	switch foldName(name) {
	case "any":
		return anyRune, nil
	case "ascii":
		return isASCII, nil
	case "space", "whitespace", "wspace":
		return func(r rune) bool { return unicode.Is(unicode.White_Space, r) }, nil
	case "alphabetic", "alpha":
		return unicode.IsLetter, nil
	}
	if set, err := lookupCategory(name); err == nil {
		return set, nil
	}
	if set, err := lookupScript(name); err == nil {
		return set, nil
	}
	for pname, table := range unicode.Properties {
		if foldName(pname) == foldName(name) {
			t := table
			return func(r rune) bool { return unicode.Is(t, r) }, nil
		}
	}
	return nil, fmt.Errorf("unknown property %q", name)
}

func lookupCategory(name string) (runeSet, error) {
	if alias, ok := categoryAliases[foldName(name)]; ok {
		name = alias
	}
	table, ok := unicode.Categories[name]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", name)
	}
	return func(r rune) bool { return unicode.Is(table, r) }, nil
}

func lookupScript(name string) (runeSet, error) {
	want := foldName(name)
	for sname, table := range unicode.Scripts {
		if foldName(sname) == want {
			t := table
			return func(r rune) bool { return unicode.Is(t, r) }, nil
		}
	}
	return nil, fmt.Errorf("unknown script %q", name)
}
