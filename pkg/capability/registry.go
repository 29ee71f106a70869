package capability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tag names an abstract capability such as "text-input". Tags are compared
// after trimming surrounding whitespace.
type Tag string

// ErrAlreadyRegistered is returned by Register when the tag already has a
// factory.
var ErrAlreadyRegistered = errors.New("capability: already registered")

// Factory produces a fresh implementation of a capability.
type Factory func() any

// Registry maps capability tags to factories. It decouples formlets from any
// concrete toolkit: formlets ask for a tag during rebuild and hosts decide
// which implementation backs it. A Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[Tag]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Tag]Factory),
	}
}

// Register adds a factory for tag. Duplicate tags return an error; use
// Replace to override an existing registration.
func (r *Registry) Register(tag Tag, factory Factory) error {
	key, err := normaliseTag(tag)
	if err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("capability: factory for %q is required", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(tag Tag, factory Factory) {
	if err := r.Register(tag, factory); err != nil {
		panic(err)
	}
}

// Replace installs factory for tag, overriding any previous registration.
// A nil factory removes the tag.
func (r *Registry) Replace(tag Tag, factory Factory) error {
	key, err := normaliseTag(tag)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		delete(r.factories, key)
		return nil
	}
	r.factories[key] = factory
	return nil
}

// CreateInstance invokes the factory registered for tag. When nothing is
// registered it returns (nil, false); callers decide whether that is fatal.
func (r *Registry) CreateInstance(tag Tag) (any, bool) {
	if r == nil {
		return nil, false
	}
	key := Tag(strings.TrimSpace(string(tag)))

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return factory(), true
}

// Has reports whether a factory is registered for tag.
func (r *Registry) Has(tag Tag) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[Tag(strings.TrimSpace(string(tag)))]
	return ok
}

// List returns the registered tags sorted alphabetically.
func (r *Registry) List() []Tag {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]Tag, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Create resolves tag and asserts the instance to T. It is a typed helper
// around CreateInstance for callers holding any lookup.
func Create[T any](lookup interface {
	CreateInstance(Tag) (any, bool)
}, tag Tag) (T, bool) {
	var zero T
	if lookup == nil {
		return zero, false
	}
	instance, ok := lookup.CreateInstance(tag)
	if !ok {
		return zero, false
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func normaliseTag(tag Tag) (Tag, error) {
	key := Tag(strings.TrimSpace(string(tag)))
	if key == "" {
		return "", fmt.Errorf("capability: tag is required")
	}
	return key, nil
}
