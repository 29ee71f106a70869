package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formlet/pkg/capability"
)

// Field kinds understood by the built-in matchers.
const (
	KindString  = "string"
	KindInteger = "integer"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindCaption = "caption"
)

// FieldHint is the subset of a field declaration used to pick a capability.
type FieldHint struct {
	Kind    string
	Format  string
	Options []string
	// Widget names a capability explicitly and bypasses matching.
	Widget string
}

// Matcher decides whether a capability should back the supplied field.
type Matcher func(field FieldHint) bool

type rule struct {
	tag      capability.Tag
	priority int
	match    Matcher
	order    int
}

// Registry selects capabilities for declared fields based on explicit hints
// or registered matchers. Higher priority wins; ties fall back to
// registration order. An empty registry never resolves a capability.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for tag with the provided priority. Higher priority
// values take precedence.
func (r *Registry) Register(tag capability.Tag, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := capability.Tag(strings.TrimSpace(string(tag)))
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		tag:      trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the capability tag for a field. An explicit Widget hint is
// honoured before matcher evaluation.
func (r *Registry) Resolve(field FieldHint) (capability.Tag, bool) {
	if explicit := strings.TrimSpace(field.Widget); explicit != "" {
		return capability.Tag(explicit), true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.tag, true
		}
	}
	return "", false
}

func (r *Registry) registerBuiltins() {
	r.Register(TagCaption, 100, func(field FieldHint) bool {
		return normaliseKind(field.Kind) == KindCaption
	})

	r.Register(TagToggle, 90, func(field FieldHint) bool {
		return normaliseKind(field.Kind) == KindBoolean
	})

	r.Register(TagChoice, 70, func(field FieldHint) bool {
		switch normaliseKind(field.Kind) {
		case KindBoolean, KindCaption:
			return false
		}
		return len(field.Options) > 0
	})

	r.Register(TagText, 10, func(field FieldHint) bool {
		switch normaliseKind(field.Kind) {
		case "", KindString, KindInteger, KindNumber:
			return true
		}
		return false
	})
}

func normaliseKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
