package names

import "sync"

// Handle holds the processor currently in service and lets it be swapped
// after a rule reload.
type Handle struct {
	mu    sync.RWMutex
	proc  *Processor
	rules *RuleSet
}

// NewHandle returns a Handle serving p, built from rules.
func NewHandle(p *Processor, rules *RuleSet) *Handle {
	return &Handle{proc: p, rules: rules}
}

// Get returns the current processor.
func (h *Handle) Get() *Processor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.proc
}

// Rules returns the rule set of the current processor.
func (h *Handle) Rules() *RuleSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules
}

// Swap replaces the current processor.
func (h *Handle) Swap(p *Processor, rules *RuleSet) {
	h.mu.Lock()
	h.proc = p
	h.rules = rules
	h.mu.Unlock()
}
