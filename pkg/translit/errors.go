package translit

import (
	"errors"
	"fmt"
)

// ErrRuleSyntax is returned (wrapped in a *SyntaxError) when a rule source
// cannot be compiled.
var ErrRuleSyntax = errors.New("rule syntax error")

// SyntaxError locates a compile failure inside a rule source.
type SyntaxError struct {
	ID   string // transliterator id, set by Compile
	Rule string // complete rule source
	Pos  int    // rune offset into Rule
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("translit %s: %s at offset %d near %q", e.ID, e.Msg, e.Pos, e.near())
}

func (e *SyntaxError) Unwrap() error { return ErrRuleSyntax }

// near returns a short excerpt of the rule source around Pos.
func (e *SyntaxError) near() string {
	rs := []rune(e.Rule)
	lo, hi := e.Pos-10, e.Pos+10
	if lo < 0 {
		lo = 0
	}
	if hi > len(rs) {
		hi = len(rs)
	}
	if lo > hi {
		lo = hi
	}
	return string(rs[lo:hi])
}
