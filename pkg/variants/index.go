package variants

import (
	"fmt"
	"strings"
)

// Index maps replacement sources to their candidate replacements and answers
// longest-prefix queries. It is read-only once built.
type Index struct {
	root    *node
	sources int
}

type node struct {
	children map[byte]*node
	source   string
	repl     []string
	terminal bool
}

// NewIndex groups pairs by source. When both the source and the replacement
// end in a space, the replacement is stored without it: the scan hands the
// space back to the literal text that follows the match.
func NewIndex(pairs []Pair) (*Index, error) {
	idx := &Index{root: &node{}}
	for _, p := range pairs {
		if p.Source == "" || p.Source == " " {
			return nil, fmt.Errorf("%w: source %q", ErrInvalidPair, p.Source)
		}
		repl := p.Replacement
		if strings.HasSuffix(p.Source, " ") && strings.HasSuffix(repl, " ") {
			repl = repl[:len(repl)-1]
		}
		idx.insert(p.Source, repl)
	}
	return idx, nil
}

func (idx *Index) insert(source, repl string) {
	n := idx.root
	for i := 0; i < len(source); i++ {
		c := source[i]
		if n.children == nil {
			n.children = make(map[byte]*node)
		}
		next, ok := n.children[c]
		if !ok {
			next = &node{}
			n.children[c] = next
		}
		n = next
	}
	if !n.terminal {
		n.terminal = true
		n.source = source
		idx.sources++
	}
	n.repl = append(n.repl, repl)
}

// LongestPrefix returns the longest registered source that is a prefix of s
// together with its replacements.
func (idx *Index) LongestPrefix(s string) (source string, repl []string, ok bool) {
	var best *node
	n := idx.root
	for i := 0; i < len(s); i++ {
		next, found := n.children[s[i]]
		if !found {
			break
		}
		n = next
		if n.terminal {
			best = n
		}
	}
	if best == nil {
		return "", nil, false
	}
	return best.source, best.repl, true
}

// Replacements returns the candidates registered for exactly source.
func (idx *Index) Replacements(source string) []string {
	n := idx.root
	for i := 0; i < len(source); i++ {
		next, ok := n.children[source[i]]
		if !ok {
			return nil
		}
		n = next
	}
	if !n.terminal {
		return nil
	}
	return append([]string(nil), n.repl...)
}

// Len returns the number of distinct sources.
func (idx *Index) Len() int { return idx.sources }
