// Package registry provides thread-safe storage and lookup of dependency bindings.
package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Scope defines how instances produced by a binding are reused.
type Scope int

const (
	// ScopeNone produces a fresh instance on every resolution.
	ScopeNone Scope = iota

	// ScopeShared produces one instance per binding, shared by every consumer.
	ScopeShared
)

func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeShared:
		return "shared"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Binding represents a rule producing instances for a Key.
type Binding struct {
	// Key is the (type, qualifier, markers) the binding answers for.
	// An empty qualifier matches any requested qualifier, and the binding's
	// markers must be a subset of the requested markers.
	Key Key

	// Factory creates instances.
	// Stores the container's Factory func; the registry never calls it.
	Factory interface{}

	// Scope defines instance reuse.
	Scope Scope

	// Implicit marks bindings synthesized for injectable types.
	// Implicit bindings can always be replaced by explicit ones.
	Implicit bool
}

// Registry provides thread-safe storage for bindings.
// Exact keys are found in O(1); otherwise the bindings of the requested type
// are ranked by specificity.
type Registry struct {
	mu       sync.RWMutex
	strict   bool
	bindings map[Key]*Binding
	byType   map[reflect.Type][]*Binding

	// types lists the keys of byType in first-registration order
	types []reflect.Type
}

// New creates a new Registry instance.
// In strict mode re-registering an existing key fails instead of overwriting.
func New(strict bool) *Registry {
	return &Registry{
		strict:   strict,
		bindings: make(map[Key]*Binding),
		byType:   make(map[reflect.Type][]*Binding),
	}
}

// SetStrict toggles strict mode.
func (r *Registry) SetStrict(strict bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strict = strict
}

// Strict reports whether the registry rejects duplicate keys.
func (r *Registry) Strict() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strict
}

// Register stores a binding in the registry.
// It returns the binding that was replaced, if any.
//
// This method is goroutine-safe.
func (r *Registry) Register(binding *Binding) (*Binding, error) {
	if binding == nil {
		return nil, fmt.Errorf("binding cannot be nil")
	}
	if binding.Key.Type == nil {
		return nil, fmt.Errorf("binding key must have a type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.bindings[binding.Key]
	if exists && r.strict && !previous.Implicit && !binding.Implicit {
		return nil, &BindingAlreadyExistsError{Key: binding.Key}
	}
	if exists && binding.Implicit && !previous.Implicit {
		// never let a synthesized binding shadow an explicit one
		return nil, nil
	}

	r.bindings[binding.Key] = binding

	list := r.byType[binding.Key.Type]
	if exists {
		for i, b := range list {
			if b == previous {
				list[i] = binding
				break
			}
		}
	} else {
		if len(list) == 0 {
			r.types = append(r.types, binding.Key.Type)
		}
		r.byType[binding.Key.Type] = append(list, binding)
	}

	return previous, nil
}

// Lookup finds the binding satisfying the requested key.
//
// An exact match always wins. Otherwise every binding of the requested type
// whose markers are a subset of the requested markers is a candidate, ranked
// by qualifier match (same name, then unnamed binding, then any name for an
// unqualified request) and then by the number of markers it requires.
// A tie on the best rank is reported as an AmbiguousBindingError.
//
// This method is goroutine-safe.
func (r *Registry) Lookup(key Key) (*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if binding, exists := r.bindings[key]; exists {
		return binding, nil
	}

	var best []*Binding
	bestRank := -1
	for _, b := range r.byType[key.Type] {
		rank, ok := candidateRank(b.Key, key)
		if !ok {
			continue
		}
		switch {
		case rank > bestRank:
			bestRank = rank
			best = []*Binding{b}
		case rank == bestRank:
			best = append(best, b)
		}
	}

	switch len(best) {
	case 0:
		return nil, &BindingNotFoundError{Key: key}
	case 1:
		return best[0], nil
	default:
		candidates := make([]Key, len(best))
		for i, b := range best {
			candidates[i] = b.Key
		}
		return nil, &AmbiguousBindingError{Key: key, Candidates: candidates}
	}
}

func candidateRank(binding, requested Key) (int, bool) {
	if binding.Type != requested.Type || !binding.covers(requested) {
		return 0, false
	}

	var qualifier int
	switch {
	case binding.Qualifier == requested.Qualifier:
		qualifier = 2
	case binding.Qualifier == "":
		qualifier = 1
	case requested.Qualifier == "":
		qualifier = 0
	default:
		return 0, false
	}

	return qualifier<<8 | len(binding.Markers()), true
}

// Get retrieves a binding by its exact key.
//
// This method is goroutine-safe.
func (r *Registry) Get(key Key) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, exists := r.bindings[key]
	return binding, exists
}

// Has checks if any binding satisfies the key.
//
// This method is goroutine-safe.
func (r *Registry) Has(key Key) bool {
	_, err := r.Lookup(key)
	return err == nil
}

// All returns every registered binding, grouped by type in registration order.
// Types appear in the order their first binding was registered.
func (r *Registry) All() []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Binding, 0, len(r.bindings))
	for _, t := range r.types {
		result = append(result, r.byType[t]...)
	}
	return result
}

// Reset removes every binding.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings = make(map[Key]*Binding)
	r.byType = make(map[reflect.Type][]*Binding)
	r.types = nil
}

// BindingAlreadyExistsError is returned in strict mode when attempting to
// register a duplicate binding.
type BindingAlreadyExistsError struct {
	Key Key
}

func (e *BindingAlreadyExistsError) Error() string {
	return fmt.Sprintf("binding already exists for %v", e.Key)
}

// BindingNotFoundError is returned when no binding satisfies a key.
type BindingNotFoundError struct {
	Key Key
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("binding not found for %v", e.Key)
}

// AmbiguousBindingError is returned when several bindings satisfy a key
// equally well.
type AmbiguousBindingError struct {
	Key        Key
	Candidates []Key
}

func (e *AmbiguousBindingError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf("ambiguous binding for %v: candidates %s", e.Key, strings.Join(names, ", "))
}
