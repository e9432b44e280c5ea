package diorite

import (
	"reflect"
	"sync"
)

// Provider is a lazy handle over a binding. Nothing is resolved until Get is
// called. Values of shared-singleton bindings, and every value of a point
// marked singleton, are cached on the handle; other bindings are resolved
// again on every call.
//
// A *Provider[T] field or method parameter is a lazy injection point for T.
type Provider[T any] struct {
	container *Container
	key       Key
	point     *InjectionPoint
	owner     any

	mu     sync.Mutex
	cached bool
	value  T
}

// NewProvider creates a provider for key outside of any injection point.
func NewProvider[T any](c *Container, key Key) *Provider[T] {
	return &Provider[T]{container: c, key: key}
}

// Key returns the key the provider resolves.
func (p *Provider[T]) Key() Key {
	return p.key
}

// Get resolves the value. A missing binding yields the zero value and no
// error; every other failure is returned.
//
// No lock is held while resolving, so Get may be called again from the
// factory it runs. Each call starts a new resolution chain, though: a
// non-shared factory that loops back through its own provider must bound the
// recursion itself, and a shared factory doing so waits on its own build.
// Factories resolve through Request.Resolve to get cycle detection.
func (p *Provider[T]) Get() (T, error) {
	var zero T
	v, err := p.resolve()
	if err != nil {
		if isMissing(err, p.key) {
			return zero, nil
		}
		return zero, err
	}
	return v, nil
}

// GetNotNull resolves the value and fails with BindingNotFoundError when it
// would be absent.
func (p *Provider[T]) GetNotNull() (T, error) {
	v, err := p.resolve()
	if err != nil {
		return v, err
	}
	if isNil(reflect.ValueOf(&v).Elem()) {
		return v, &BindingNotFoundError{Key: p.key}
	}
	return v, nil
}

func (p *Provider[T]) resolve() (T, error) {
	var zero T
	if p.container == nil {
		return zero, &InvalidBindingError{Reason: "provider is not bound to a container"}
	}

	p.mu.Lock()
	if p.cached {
		v := p.value
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()

	v, binding, err := p.container.resolveBinding(&Request{
		Key:       p.key,
		Point:     p.point,
		Owner:     p.owner,
		container: p.container,
		chain:     newChain(),
	})
	if err != nil {
		return zero, err
	}

	typed, err := convert[T](v)
	if err != nil {
		return zero, err
	}
	if binding.Scope != ScopeShared && (p.point == nil || !p.point.Singleton) {
		return typed, nil
	}

	// concurrent callers may all resolve; the first stored value wins
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cached {
		p.value = typed
		p.cached = true
	}
	return p.value, nil
}

// lazyHandle is implemented by *Provider[T] so providers can be created for
// types only known through reflection.
type lazyHandle interface {
	providedType() reflect.Type
	attach(c *Container, point *InjectionPoint, owner any)
}

func (p *Provider[T]) providedType() reflect.Type {
	return typeOf[T]()
}

func (p *Provider[T]) attach(c *Container, point *InjectionPoint, owner any) {
	p.container = c
	p.point = point
	p.key = point.Key()
	p.owner = owner
}

// lazyType reports whether t is a *Provider[T] and returns T.
func lazyType(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, false
	}
	handle, ok := reflect.New(t.Elem()).Interface().(lazyHandle)
	if !ok {
		return nil, false
	}
	return handle.providedType(), true
}

// newLazy creates the provider assigned to a lazy point.
func newLazy(c *Container, point *InjectionPoint, owner any) any {
	v := reflect.New(point.fieldType.Elem())
	v.Interface().(lazyHandle).attach(c, point, owner)
	return v.Interface()
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
