package diorite

import (
	"reflect"
	"sort"
	"sync"
)

// metadataRegistry builds and caches one Class per type.
// Built classes are never modified, so readers share them without copying.
type metadataRegistry struct {
	mu sync.RWMutex

	classes map[reflect.Type]*Class

	// descriptions registered for types that do not implement Describer
	external map[reflect.Type]func(*ClassBuilder)
}

// newMetadataRegistry creates an empty metadata registry.
func newMetadataRegistry() *metadataRegistry {
	return &metadataRegistry{
		classes:  make(map[reflect.Type]*Class),
		external: make(map[reflect.Type]func(*ClassBuilder)),
	}
}

// getOrBuild retrieves or computes the Class of a pointer-to-struct type.
func (m *metadataRegistry) getOrBuild(typ reflect.Type) (*Class, error) {
	// Fast path: check cache with read lock
	m.mu.RLock()
	class, exists := m.classes[typ]
	describe := m.external[typ]
	m.mu.RUnlock()

	if exists {
		return class, nil
	}

	if !isStructPointer(typ) {
		return nil, &InvalidDescriptorError{Type: typ, Reason: "injectable types must be pointers to structs"}
	}

	// Descriptions run user code, so build without holding the lock
	b := newClassBuilder(typ)
	switch d, ok := reflect.New(typ.Elem()).Interface().(Describer); {
	case ok:
		d.DescribeInjection(b)
	case describe != nil:
		describe(b)
	default:
		b.Tagged()
	}
	built, err := b.build()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock; first build wins
	if class, exists = m.classes[typ]; exists {
		return class, nil
	}
	m.classes[typ] = built
	return built, nil
}

// describe registers an external description and drops any cached class.
func (m *metadataRegistry) describe(typ reflect.Type, fn func(*ClassBuilder)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.external[typ] = fn
	delete(m.classes, typ)
}

// injectable reports whether a type can be initialized implicitly.
func (m *metadataRegistry) injectable(typ reflect.Type) bool {
	if !isStructPointer(typ) {
		return false
	}
	if typ.Implements(describerType) {
		return true
	}

	m.mu.RLock()
	_, described := m.external[typ]
	m.mu.RUnlock()
	if described {
		return true
	}

	elem := typ.Elem()
	for i := 0; i < elem.NumField(); i++ {
		if _, ok := elem.Field(i).Tag.Lookup(injectTag); ok {
			return true
		}
	}
	return false
}

// all returns every built class, ordered by type name.
func (m *metadataRegistry) all() []*Class {
	m.mu.RLock()
	classes := make([]*Class, 0, len(m.classes))
	for _, c := range m.classes {
		classes = append(classes, c)
	}
	m.mu.RUnlock()

	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Type.String() < classes[j].Type.String()
	})
	return classes
}

// clear clears all cached data, including external descriptions.
func (m *metadataRegistry) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.classes = make(map[reflect.Type]*Class)
	m.external = make(map[reflect.Type]func(*ClassBuilder))
}

var describerType = reflect.TypeOf((*Describer)(nil)).Elem()

func isStructPointer(typ reflect.Type) bool {
	return typ != nil && typ.Kind() == reflect.Ptr && typ.Elem().Kind() == reflect.Struct
}
