package diorite

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/toutaio/toutago-diorite-injector/registry"
)

// Container is the dependency injection container.
// It owns the binding table, the class metadata and the singleton caches;
// all of its methods are safe for concurrent use.
type Container struct {
	registry  *registry.Registry
	metadata  *metadataRegistry
	store     *scopeStore
	scheduler *scheduler
	logger    *zap.Logger

	modulesMu sync.Mutex
	modules   []*moduleEntry
}

// New creates a new Container instance.
// Options can be provided to configure the container behavior.
//
// Example:
//
//	container := diorite.New()
//	// or with options:
//	container := diorite.New(diorite.WithStrict(), diorite.WithLogger(logger))
func New(options ...Option) *Container {
	c := &Container{
		registry: registry.New(false),
		metadata: newMetadataRegistry(),
		store:    newScopeStore(),
		logger:   zap.NewNop(),
	}

	// Apply options
	for _, opt := range options {
		if err := opt(c); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	c.scheduler = &scheduler{logger: c.logger}
	return c
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Bind registers a binding producing a fresh instance on every resolution.
//
// Example:
//
//	container.Bind(diorite.KeyOf[Module]("module1"), func(*diorite.Request) (any, error) {
//	    return &Module1{}, nil
//	})
func (c *Container) Bind(key Key, factory Factory) error {
	return c.Register(key, factory, ScopeNone)
}

// Singleton registers a binding whose instance is created once, on first
// resolution, and shared by every consumer of the key.
func (c *Container) Singleton(key Key, factory Factory) error {
	return c.Register(key, factory, ScopeShared)
}

// Instance registers a pre-built shared instance.
func (c *Container) Instance(key Key, value any) error {
	if value == nil {
		return &InvalidBindingError{Reason: "instance cannot be nil"}
	}
	if err := c.Register(key, Value(value), ScopeShared); err != nil {
		return err
	}
	c.store.putShared(key, value)
	return nil
}

// Register registers a binding with an explicit scope.
// Re-registering a key overwrites it and drops its cached shared instance,
// unless the container is strict, in which case BindingAlreadyExistsError is
// returned. Late registration only affects later resolutions.
func (c *Container) Register(key Key, factory Factory, scope Scope) error {
	if key.Type == nil {
		return &InvalidBindingError{Reason: "key type cannot be nil"}
	}
	if factory == nil {
		return &InvalidBindingError{Reason: "factory function cannot be nil"}
	}
	if scope != ScopeNone && scope != ScopeShared {
		return &InvalidBindingError{Reason: fmt.Sprintf("unknown scope %v", scope)}
	}

	previous, err := c.registry.Register(&registry.Binding{
		Key:     key,
		Factory: factory,
		Scope:   scope,
	})
	if err != nil {
		return err
	}

	if previous != nil {
		c.store.evict(key)
		if !previous.Implicit {
			c.logger.Warn("binding overwritten", zap.Stringer("key", key))
		}
	}
	c.logger.Debug("binding registered", zap.Stringer("key", key), zap.Stringer("scope", scope))
	return nil
}

// Provide registers a typed factory for T.
//
// Example:
//
//	diorite.Provide(c, diorite.ScopeShared, "module2", func(*diorite.Request) (Module, error) {
//	    return &Module2{}, nil
//	})
func Provide[T any](c *Container, scope Scope, qualifier string, fn func(r *Request) (T, error), markers ...Marker) error {
	if fn == nil {
		return &InvalidBindingError{Reason: "factory function cannot be nil"}
	}
	return c.Register(KeyOf[T](qualifier, markers...), func(r *Request) (any, error) {
		return fn(r)
	}, scope)
}

// Describe registers the injection description of a type that does not
// implement Describer. sample is a reflect.Type or a value of the pointer
// type, e.g. (*Service)(nil).
func (c *Container) Describe(sample any, fn func(b *ClassBuilder)) error {
	typ := typeFor(sample)
	if !isStructPointer(typ) {
		return &InvalidDescriptorError{Type: typ, Reason: "injectable types must be pointers to structs"}
	}
	if fn == nil {
		return &InvalidDescriptorError{Type: typ, Reason: "description cannot be nil"}
	}
	c.metadata.describe(typ, fn)
	return nil
}

// Class returns the injection descriptor of a type, building it if needed.
func (c *Container) Class(sample any) (*Class, error) {
	typ := typeFor(sample)
	class, err := c.metadata.getOrBuild(typ)
	if err != nil {
		return nil, err
	}
	return class, nil
}

// Resolve resolves a key directly, outside of any injection point. Each call
// starts a new resolution chain; factories and hooks resolve through
// Request.Resolve or Session.InjectKey instead, which keep theirs.
//
// Example:
//
//	module, err := container.Resolve(diorite.KeyOf[Module]("module1"))
func (c *Container) Resolve(key Key) (any, error) {
	return c.resolve(&Request{Key: key, container: c, chain: newChain()})
}

// Make resolves a key built from T, a qualifier and markers.
//
// Example:
//
//	module, err := diorite.Make[Module](container, "module1")
func Make[T any](c *Container, qualifier string, markers ...Marker) (T, error) {
	v, err := c.Resolve(KeyOf[T](qualifier, markers...))
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](v)
}

// Reset clears bindings, class metadata and cached instances.
// Installed modules are forgotten as well.
func (c *Container) Reset() {
	c.registry.Reset()
	c.metadata.clear()
	c.store.clear()

	c.modulesMu.Lock()
	c.modules = nil
	c.modulesMu.Unlock()
}

// Validate checks that every injection point of the given types, and of every
// type already initialized, has a binding. All problems are reported at once,
// classes ordered by type name and points in declaration order.
func (c *Container) Validate(samples ...any) error {
	var errs error
	for _, sample := range samples {
		if _, err := c.metadata.getOrBuild(typeFor(sample)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	for _, class := range c.metadata.all() {
		points := append([]*InjectionPoint(nil), class.Points...)
		for _, m := range class.Methods {
			points = append(points, m.Params...)
		}
		for _, p := range points {
			if p.Optional || p.init != nil {
				continue
			}
			if _, err := c.lookup(p.Key()); err != nil {
				errs = multierr.Append(errs, &ResolutionError{Type: class.Type, Point: p.Name, Key: p.Key(), Cause: err})
			}
		}
	}

	if errs == nil {
		return nil
	}
	return &ValidationError{Errors: multierr.Errors(errs)}
}

func (c *Container) resolve(rq *Request) (any, error) {
	v, _, err := c.resolveBinding(rq)
	return v, err
}

// resolveBinding finds the binding for the request and applies its scope.
// Shared bindings are cached per binding; points marked singleton get their
// own instance of non-shared bindings, kept by the requesting session.
func (c *Container) resolveBinding(rq *Request) (any, *registry.Binding, error) {
	binding, err := c.lookup(rq.Key)
	if err != nil {
		return nil, nil, err
	}

	chainKey := rq.Key
	if binding.Scope == ScopeShared {
		chainKey = binding.Key
	}
	if err := rq.chain.enter(chainKey); err != nil {
		c.logger.Warn("cyclic dependency detected", zap.Error(err))
		return nil, binding, err
	}
	defer rq.chain.leave()

	factory, ok := binding.Factory.(Factory)
	if !ok {
		return nil, binding, &InvalidBindingError{Reason: fmt.Sprintf("invalid factory for %v", binding.Key)}
	}
	produce := func() (any, error) {
		return factory(rq)
	}

	var v any
	switch {
	case binding.Scope == ScopeShared:
		v, err = c.store.getShared(binding.Key, rq.chain, produce)
	case rq.Point != nil && rq.Point.Singleton && rq.session != nil:
		v, err = rq.session.local(rq.Point, produce)
	default:
		v, err = produce()
	}
	if err != nil {
		return nil, binding, err
	}
	return v, binding, nil
}

// lookup finds the binding for key, synthesizing an implicit binding when
// the key's type is injectable and nothing explicit matches.
func (c *Container) lookup(key Key) (*registry.Binding, error) {
	binding, err := c.registry.Lookup(key)
	if err == nil {
		return binding, nil
	}

	var notFound *BindingNotFoundError
	if !errors.As(err, &notFound) || !c.metadata.injectable(key.Type) {
		return nil, err
	}

	if _, err := c.registry.Register(&registry.Binding{
		Key:      NewKey(key.Type, ""),
		Factory:  c.implicitFactory(key.Type),
		Scope:    ScopeNone,
		Implicit: true,
	}); err != nil {
		return nil, err
	}
	c.logger.Debug("implicit binding synthesized", zap.Stringer("type", key.Type))

	return c.registry.Lookup(key)
}

// implicitFactory creates and initializes a new instance of an injectable type.
func (c *Container) implicitFactory(typ reflect.Type) Factory {
	return func(r *Request) (any, error) {
		instance := reflect.New(typ.Elem())
		if err := c.initialize(instance, r.chain); err != nil {
			return nil, err
		}
		return instance.Interface(), nil
	}
}

func typeFor(sample any) reflect.Type {
	if t, ok := sample.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(sample)
}

var (
	defaultMu        sync.Mutex
	defaultContainer *Container
)

// Default returns the process-wide container, creating it on first use.
func Default() *Container {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultContainer == nil {
		defaultContainer = New()
	}
	return defaultContainer
}

// ResetDefault discards the process-wide container. The next call to
// Default creates a fresh one.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultContainer = nil
}
