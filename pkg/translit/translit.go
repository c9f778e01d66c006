// Package translit compiles text transformation rules into reusable
// transliterators.
//
// The rule language follows the shape of ICU transform rules. A rule source
// is a list of statements separated by ';':
//
//	:: NFD ;                   # named transform over the whole text
//	:: [:Mn:] Remove ;         # named transform restricted to a set
//	'ß' > 'ss' ;               # conversion of a literal
//	[:Space:]+ > ' ' ;         # conversion of a run of set members
//
// Consecutive conversion rules form a block that is applied in a single
// left-to-right pass; at each position the first rule that matches wins and
// its output is not rescanned. Named transforms are applied in sequence
// between blocks.
package translit

import (
	"context"
	"strings"

	pool "github.com/jolestar/go-commons-pool"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Transliterator is a compiled rule source. It is safe for concurrent use:
// every call runs on a pipeline borrowed from an internal pool, because the
// x/text transformers it is built from keep state between calls.
type Transliterator struct {
	stages []stage
	ctx    context.Context
	opool  *pool.ObjectPool
}

// Compile parses rules and returns a transliterator. id names it in syntax
// errors.
// Malformed rules yield an error wrapping ErrRuleSyntax.
func Compile(id, rules string) (*Transliterator, error) {
	parsed, err := parse(rules)
	if err != nil {
		return nil, withID(err, id)
	}
	stages, err := buildStages(parsed, rules)
	if err != nil {
		return nil, withID(err, id)
	}

	t := &Transliterator{stages: stages, ctx: context.Background()}
	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return t.newPipeline(), nil
		})
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = -1 // infinity
	config.BlockWhenExhausted = false
	t.opool = pool.NewObjectPool(t.ctx, factory, config)
	return t, nil
}

func withID(err error, id string) error {
	if se, ok := err.(*SyntaxError); ok {
		se.ID = id
	}
	return err
}

// Transliterate applies the compiled rules to text.
func (t *Transliterator) Transliterate(text string) string {
	o, err := t.opool.BorrowObject(t.ctx)
	if err != nil {
		return t.newPipeline().run(text)
	}
	p := o.(*pipeline)
	out := p.run(text)
	if err := t.opool.ReturnObject(t.ctx, p); err != nil {
		// The pool was closed while p was borrowed; drop it.
		p.steps = nil
	}
	return out
}

// Close releases pooled pipelines.
func (t *Transliterator) Close() {
	t.opool.Close(t.ctx)
}

// stage is one step of a compiled rule source.
type stage interface {
	instance() func(string) string
}

// transformStage wraps a named transform.
type transformStage struct {
	factory Factory
	filter  runes.Set
}

func (s *transformStage) instance() func(string) string {
	tr := s.factory(s.filter)
	return func(text string) string {
		out, _, err := transform.String(tr, text)
		if err != nil {
			return text
		}
		return out
	}
}

// blockStage applies a run of conversion rules. It holds no state.
type blockStage struct {
	rules []*convRule
}

func (s *blockStage) instance() func(string) string { return s.apply }

func (s *blockStage) apply(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(rs); {
		matched := false
		for _, r := range s.rules {
			if n := r.match(rs, i); n > 0 {
				b.WriteString(r.rhs)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			b.WriteRune(rs[i])
			i++
		}
	}
	return b.String()
}

func buildStages(parsed []rule, src string) ([]stage, error) {
	var (
		stages []stage
		block  *blockStage
	)
	for _, r := range parsed {
		switch r := r.(type) {
		case *convRule:
			if block == nil {
				block = &blockStage{}
				stages = append(stages, block)
			}
			block.rules = append(block.rules, r)
		case *transformRule:
			block = nil
			f, err := lookup(r.name)
			if err != nil {
				return nil, &SyntaxError{Rule: src, Pos: r.pos, Msg: err.Error()}
			}
			s := &transformStage{factory: f}
			if r.filter != nil {
				s.filter = runes.Predicate(r.filter)
			}
			stages = append(stages, s)
		}
	}
	return stages, nil
}

// pipeline is one instantiated chain of stages.
type pipeline struct {
	steps []func(string) string
}

func (t *Transliterator) newPipeline() *pipeline {
	p := &pipeline{steps: make([]func(string) string, len(t.stages))}
	for i, s := range t.stages {
		p.steps[i] = s.instance()
	}
	return p
}

func (p *pipeline) run(text string) string {
	for _, step := range p.steps {
		text = step(text)
	}
	return text
}
