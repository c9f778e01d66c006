package translit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// rule is one parsed statement: either a transform or a conversion.
type rule interface {
	isRule()
}

// transformRule is a "::[filter] Name" statement.
type transformRule struct {
	name   string
	filter runeSet
	pos    int
}

// convRule is a "lhs > rhs" statement.
type convRule struct {
	lhs []matcher
	rhs string
}

func (*transformRule) isRule() {}
func (*convRule) isRule()      {}

// matcher is one element of a conversion's left-hand side. Exactly one of
// lit and set is used; plus makes the element match one or more times.
type matcher struct {
	lit  []rune
	set  runeSet
	plus bool
}

func (m matcher) matchOnce(text []rune, i int) int {
	if m.set != nil {
		if i < len(text) && m.set(text[i]) {
			return 1
		}
		return -1
	}
	if i+len(m.lit) > len(text) {
		return -1
	}
	for k, r := range m.lit {
		if text[i+k] != r {
			return -1
		}
	}
	return len(m.lit)
}

// match returns the number of runes consumed at text[i:], or -1.
func (m matcher) match(text []rune, i int) int {
	n := m.matchOnce(text, i)
	if n < 0 || !m.plus {
		return n
	}
	total := n
	for {
		n = m.matchOnce(text, i+total)
		if n <= 0 {
			return total
		}
		total += n
	}
}

func (c *convRule) match(text []rune, i int) int {
	total := 0
	for _, m := range c.lhs {
		n := m.match(text, i+total)
		if n < 0 {
			return -1
		}
		total += n
	}
	return total
}

// statement is the raw text of one rule with its rune offset in the source.
type statement struct {
	text   []rune
	offset int
}

// splitStatements cuts rules at top-level semicolons and drops comments.
func splitStatements(src string) ([]statement, error) {
	rs := []rune(src)
	var (
		stmts   []statement
		cur     []rune
		start   = 0
		inQuote bool
		depth   int
	)
	flush := func(end int) {
		if strings.TrimSpace(string(cur)) != "" {
			stmts = append(stmts, statement{text: cur, offset: start})
		}
		cur = nil
		start = end + 1
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\\' && i+1 < len(rs):
			cur = append(cur, r, rs[i+1])
			i++
			continue
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			depth++
		case r == ']':
			depth--
			if depth < 0 {
				return nil, &SyntaxError{Rule: src, Pos: i, Msg: "unbalanced ']'"}
			}
		case r == '#' && depth == 0:
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			continue
		case r == ';' && depth == 0:
			flush(i)
			continue
		}
		cur = append(cur, r)
	}
	if inQuote {
		return nil, &SyntaxError{Rule: src, Pos: len(rs), Msg: "unterminated quote"}
	}
	if depth != 0 {
		return nil, &SyntaxError{Rule: src, Pos: len(rs), Msg: "unterminated set"}
	}
	flush(len(rs))
	return stmts, nil
}

// parse compiles a rule source into its statements.
func parse(src string) ([]rule, error) {
	stmts, err := splitStatements(src)
	if err != nil {
		return nil, err
	}
	rules := make([]rule, 0, len(stmts))
	for _, st := range stmts {
		c := &cursor{rs: st.text, base: st.offset, src: src}
		r, err := c.statement()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// cursor walks the runes of a single statement.
type cursor struct {
	rs   []rune
	pos  int
	base int
	src  string
}

func (c *cursor) eof() bool { return c.pos >= len(c.rs) }

func (c *cursor) peek() rune { return c.peekAt(0) }

func (c *cursor) peekAt(n int) rune {
	if c.pos+n >= len(c.rs) {
		return 0
	}
	return c.rs[c.pos+n]
}

func (c *cursor) skipSpace() {
	for !c.eof() && unicode.IsSpace(c.peek()) {
		c.pos++
	}
}

func (c *cursor) errorf(format string, args ...any) error {
	return &SyntaxError{Rule: c.src, Pos: c.base + c.pos, Msg: fmt.Sprintf(format, args...)}
}

func (c *cursor) statement() (rule, error) {
	c.skipSpace()
	if c.peek() == ':' && c.peekAt(1) == ':' {
		c.pos += 2
		return c.transform()
	}
	return c.conversion()
}

func (c *cursor) transform() (rule, error) {
	tr := &transformRule{}
	c.skipSpace()
	if c.peek() == '[' {
		set, err := c.set()
		if err != nil {
			return nil, err
		}
		tr.filter = set
		c.skipSpace()
	}
	name := strings.TrimSpace(string(c.rs[c.pos:]))
	if name == "" {
		return nil, c.errorf("missing transform name")
	}
	if strings.ContainsAny(name, "()[]'") {
		return nil, c.errorf("unsupported transform expression %q", name)
	}
	tr.name = name
	tr.pos = c.base + c.pos
	return tr, nil
}

// arrow locates the top-level conversion operator.
func (c *cursor) arrow() (int, error) {
	inQuote := false
	depth := 0
	found := -1
	for i := c.pos; i < len(c.rs); i++ {
		r := c.rs[i]
		switch {
		case r == '\\':
			i++
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth > 0:
		case r == '>' || r == '→':
			if found >= 0 {
				return -1, &SyntaxError{Rule: c.src, Pos: c.base + i, Msg: "more than one '>'"}
			}
			found = i
		case r == '<' || r == '←' || r == '↔':
			return -1, &SyntaxError{Rule: c.src, Pos: c.base + i, Msg: "only forward rules are supported"}
		case r == '{' || r == '}' || r == '|':
			return -1, &SyntaxError{Rule: c.src, Pos: c.base + i, Msg: "context rules are not supported"}
		case r == '$' || r == '=':
			return -1, &SyntaxError{Rule: c.src, Pos: c.base + i, Msg: "variables are not supported"}
		}
	}
	if found < 0 {
		return -1, c.errorf("expected '>' in conversion rule")
	}
	return found, nil
}

func (c *cursor) conversion() (rule, error) {
	at, err := c.arrow()
	if err != nil {
		return nil, err
	}
	lhs := &cursor{rs: c.rs[:at], pos: c.pos, base: c.base, src: c.src}
	rhs := &cursor{rs: c.rs, pos: at + 1, base: c.base, src: c.src}

	conv := &convRule{}
	for {
		lhs.skipSpace()
		if lhs.eof() {
			break
		}
		m, err := lhs.element()
		if err != nil {
			return nil, err
		}
		conv.lhs = append(conv.lhs, m)
	}
	if len(conv.lhs) == 0 {
		return nil, c.errorf("empty left-hand side")
	}

	var out strings.Builder
	for {
		rhs.skipSpace()
		if rhs.eof() {
			break
		}
		switch r := rhs.peek(); {
		case r == '[':
			return nil, rhs.errorf("sets are not allowed on the right-hand side")
		case r == '+':
			return nil, rhs.errorf("quantifiers are not allowed on the right-hand side")
		}
		lit, err := rhs.literal()
		if err != nil {
			return nil, err
		}
		out.WriteString(string(lit))
	}
	conv.rhs = out.String()
	return conv, nil
}

// element parses one left-hand side element with its optional quantifier.
func (c *cursor) element() (matcher, error) {
	var m matcher
	if c.peek() == '[' {
		set, err := c.set()
		if err != nil {
			return m, err
		}
		m.set = set
	} else {
		lit, err := c.literal()
		if err != nil {
			return m, err
		}
		m.lit = lit
	}
	if c.peek() == '+' {
		m.plus = true
		c.pos++
	}
	if c.peek() == '*' || c.peek() == '?' {
		return m, c.errorf("quantifier %q is not supported", c.peek())
	}
	return m, nil
}

// literal reads a quoted string, an escape or a single bare character.
func (c *cursor) literal() ([]rune, error) {
	switch r := c.peek(); {
	case r == '\'':
		return c.quoted()
	case r == '\\':
		e, err := c.escape()
		if err != nil {
			return nil, err
		}
		return []rune{e}, nil
	case r < 0x80 && !unicode.IsLetter(r) && !unicode.IsDigit(r):
		return nil, c.errorf("character %q must be quoted", r)
	default:
		c.pos++
		return []rune{r}, nil
	}
}

// quoted reads 'text'. A doubled quote stands for a literal quote.
func (c *cursor) quoted() ([]rune, error) {
	c.pos++
	if c.peek() == '\'' && c.peekAt(1) != '\'' {
		c.pos++
		return []rune{'\''}, nil
	}
	var out []rune
	for {
		if c.eof() {
			return nil, c.errorf("unterminated quote")
		}
		r := c.peek()
		switch {
		case r == '\'' && c.peekAt(1) == '\'':
			out = append(out, '\'')
			c.pos += 2
		case r == '\'':
			c.pos++
			return out, nil
		case r == '\\':
			e, err := c.escape()
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		default:
			out = append(out, r)
			c.pos++
		}
	}
}

// escape reads a backslash escape: \uXXXX, \UXXXXXXXX, \x{X...}, \n, \t,
// \r or a quoted single character.
func (c *cursor) escape() (rune, error) {
	c.pos++
	if c.eof() {
		return 0, c.errorf("dangling escape")
	}
	r := c.peek()
	c.pos++
	switch r {
	case 'u':
		return c.hex(4)
	case 'U':
		return c.hex(8)
	case 'x':
		if c.peek() != '{' {
			return c.hex(2)
		}
		c.pos++
		end := c.pos
		for end < len(c.rs) && c.rs[end] != '}' {
			end++
		}
		if end >= len(c.rs) {
			return 0, c.errorf("unterminated \\x{...} escape")
		}
		v, err := strconv.ParseUint(string(c.rs[c.pos:end]), 16, 32)
		if err != nil || v > unicode.MaxRune {
			return 0, c.errorf("invalid escape \\x{%s}", string(c.rs[c.pos:end]))
		}
		c.pos = end + 1
		return rune(v), nil
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	default:
		return r, nil
	}
}

func (c *cursor) hex(n int) (rune, error) {
	if c.pos+n > len(c.rs) {
		return 0, c.errorf("short hex escape")
	}
	v, err := strconv.ParseUint(string(c.rs[c.pos:c.pos+n]), 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, c.errorf("invalid hex escape %q", string(c.rs[c.pos:c.pos+n]))
	}
	c.pos += n
	return rune(v), nil
}

// setBuilder accumulates single characters and ranges of a set.
type setBuilder struct {
	runes  map[rune]struct{}
	ranges [][2]rune
}

func (b *setBuilder) add(r rune) {
	if b.runes == nil {
		b.runes = make(map[rune]struct{})
	}
	b.runes[r] = struct{}{}
}

func (b *setBuilder) empty() bool { return len(b.runes) == 0 && len(b.ranges) == 0 }

func (b *setBuilder) build() runeSet {
	runes, ranges := b.runes, b.ranges
	b.runes, b.ranges = nil, nil
	return func(r rune) bool {
		if _, ok := runes[r]; ok {
			return true
		}
		for _, rg := range ranges {
			if r >= rg[0] && r <= rg[1] {
				return true
			}
		}
		return false
	}
}

// set parses a bracketed set expression starting at '['.
func (c *cursor) set() (runeSet, error) {
	c.pos++
	if c.peek() == ':' {
		return c.property()
	}
	negated := false
	if c.peek() == '^' {
		negated = true
		c.pos++
	}

	var (
		acc     runeSet = emptySet
		pending rune
		b       setBuilder
	)
	combine := func(sub runeSet) {
		switch pending {
		case '-':
			acc = difference(acc, sub)
		case '&':
			acc = intersection(acc, sub)
		default:
			acc = union(acc, sub)
		}
		pending = 0
	}
	flush := func() {
		if !b.empty() {
			acc = union(acc, b.build())
		}
	}

	for {
		if c.eof() {
			return nil, c.errorf("unterminated set")
		}
		r := c.peek()
		switch {
		case r == ']':
			c.pos++
			if pending != 0 {
				return nil, c.errorf("set operator %q without operand", pending)
			}
			flush()
			if negated {
				return negate(acc), nil
			}
			return acc, nil
		case unicode.IsSpace(r):
			c.pos++
		case r == '[':
			flush()
			sub, err := c.set()
			if err != nil {
				return nil, err
			}
			combine(sub)
		case (r == '-' || r == '&') && c.peekAt(1) == '[':
			flush()
			pending = r
			c.pos++
		case r == '\'':
			lit, err := c.quoted()
			if err != nil {
				return nil, err
			}
			for _, l := range lit {
				b.add(l)
			}
		default:
			lo, err := c.setChar()
			if err != nil {
				return nil, err
			}
			if c.peek() == '-' && c.peekAt(1) != ']' && c.peekAt(1) != '[' && c.peekAt(1) != 0 {
				c.pos++
				hi, err := c.setChar()
				if err != nil {
					return nil, err
				}
				if hi < lo {
					return nil, c.errorf("invalid range %q-%q", lo, hi)
				}
				b.ranges = append(b.ranges, [2]rune{lo, hi})
				continue
			}
			b.add(lo)
		}
	}
}

func (c *cursor) setChar() (rune, error) {
	if c.peek() == '\\' {
		return c.escape()
	}
	r := c.peek()
	c.pos++
	return r, nil
}

// property parses the remainder of [:name:] or [:^name:].
func (c *cursor) property() (runeSet, error) {
	c.pos++
	end := -1
	for i := c.pos; i+1 < len(c.rs); i++ {
		if c.rs[i] == ':' && c.rs[i+1] == ']' {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, c.errorf("unterminated property expression")
	}
	body := string(c.rs[c.pos:end])
	negated := strings.HasPrefix(body, "^")
	body = strings.TrimPrefix(body, "^")
	set, err := lookupProperty(body)
	if err != nil {
		return nil, c.errorf("%v", err)
	}
	c.pos = end + 2
	if negated {
		return negate(set), nil
	}
	return set, nil
}
