package diorite

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Initialize injects every declared point of instance, which must be a
// non-nil pointer to a struct.
//
// Points are processed in declaration order, then method points. Each point
// is bracketed by its before and after hooks, and the whole sequence by the
// global hooks. On failure the values assigned by this call are restored and
// the global after hooks are skipped; hooks that already ran are not undone.
//
// Example:
//
//	obj := &ExampleObject{}
//	if err := container.Initialize(obj); err != nil {
//	    log.Fatal(err)
//	}
func (c *Container) Initialize(instance any) error {
	owner, err := initTarget(instance)
	if err != nil {
		return err
	}
	return c.initialize(owner, newChain())
}

func initTarget(instance any) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, &InvalidDescriptorError{Reason: "cannot initialize nil instance"}
	}
	owner := reflect.ValueOf(instance)
	if !isStructPointer(owner.Type()) {
		return reflect.Value{}, &InvalidDescriptorError{Type: owner.Type(), Reason: "Initialize requires a pointer to struct"}
	}
	if owner.IsNil() {
		return reflect.Value{}, &InvalidDescriptorError{Type: owner.Type(), Reason: "cannot initialize nil pointer"}
	}
	return owner, nil
}

func (c *Container) initialize(owner reflect.Value, ch *chain) error {
	class, err := c.metadata.getOrBuild(owner.Type())
	if err != nil {
		return err
	}

	for _, p := range class.Points {
		if p.Final && !owner.Elem().FieldByIndex(p.field).IsZero() {
			return &FinalReassignmentError{Type: class.Type, Point: p.Name}
		}
	}

	s := newSession(c, owner, ch)
	var undo []func()
	fail := func(err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		c.logger.Debug("initialization failed",
			zap.String("session", s.ID()),
			zap.Stringer("type", class.Type),
			zap.Error(err),
		)
		return err
	}

	if err := c.scheduler.global(class, BeforeInject, s); err != nil {
		return fail(err)
	}

	for _, p := range class.Points {
		restore, err := c.injectField(s, class, p)
		if restore != nil {
			undo = append(undo, restore)
		}
		if err != nil {
			return fail(err)
		}
	}

	for _, m := range class.Methods {
		if err := c.injectMethod(s, class, m); err != nil {
			return fail(err)
		}
	}

	if err := c.scheduler.global(class, AfterInject, s); err != nil {
		return fail(err)
	}

	c.logger.Debug("initialization complete",
		zap.String("session", s.ID()),
		zap.Stringer("type", class.Type),
		zap.Int("points", len(class.Points)+len(class.Methods)),
	)
	return nil
}

// injectField resolves one field point and assigns it. The returned func
// restores the previous field value.
func (c *Container) injectField(s *Session, class *Class, p *InjectionPoint) (func(), error) {
	var restore func()

	err := s.within(p, func() error {
		if err := c.scheduler.point(class, p, BeforeInject, s); err != nil {
			return err
		}

		var (
			v   any
			err error
		)
		if p.init != nil {
			v, err = p.init(s.owner, s)
		} else {
			v, err = c.pointValue(s, p)
		}
		if err != nil {
			return &ResolutionError{Type: class.Type, Point: p.Name, Key: p.Key(), Cause: err}
		}

		rv, err := assignable(class, p, p.Name, v)
		if err != nil {
			return err
		}
		if !rv.IsValid() {
			return nil
		}

		field := s.owner.Elem().FieldByIndex(p.field)
		previous := reflect.New(field.Type()).Elem()
		previous.Set(field)
		field.Set(rv)
		restore = func() { field.Set(previous) }
		return nil
	})
	if err != nil {
		return restore, err
	}

	if err := c.scheduler.point(class, p, AfterInject, s); err != nil {
		return restore, err
	}

	if ce := c.logger.Check(zap.DebugLevel, "point resolved"); ce != nil {
		ce.Write(zap.String("session", s.ID()), zap.Stringer("point", p), zap.Stringer("key", p.Key()))
	}
	return restore, nil
}

// injectMethod resolves every parameter of a method point in declared order
// and invokes the method.
func (c *Container) injectMethod(s *Session, class *Class, m *InjectionPoint) error {
	err := s.within(m, func() error {
		if err := c.scheduler.point(class, m, BeforeInject, s); err != nil {
			return err
		}

		args := make([]reflect.Value, len(m.Params))
		for i, param := range m.Params {
			name := fmt.Sprintf("%s(%s)", m.Name, param.Name)

			var v any
			err := s.within(param, func() error {
				var err error
				v, err = c.pointValue(s, param)
				return err
			})
			if err != nil {
				return &ResolutionError{Type: class.Type, Point: name, Key: param.Key(), Cause: err}
			}

			rv, err := assignable(class, param, name, v)
			if err != nil {
				return err
			}
			if !rv.IsValid() {
				rv = reflect.Zero(param.fieldType)
			}
			args[i] = rv
		}

		out := s.owner.Method(m.method).Call(args)
		if m.returnsError && !out[0].IsNil() {
			return &ResolutionError{
				Type:    class.Type,
				Point:   m.Name,
				Context: "injection method failed",
				Cause:   out[0].Interface().(error),
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.scheduler.point(class, m, AfterInject, s)
}

// pointValue produces the value of one point: a provider for lazy points,
// otherwise the resolved instance. Optional points yield nil when nothing is
// bound for their own key.
func (c *Container) pointValue(s *Session, p *InjectionPoint) (any, error) {
	owner := s.Owner()
	if p.Lazy {
		return newLazy(c, p, owner), nil
	}

	v, err := c.resolve(&Request{Key: p.Key(), Point: p, Owner: owner, container: c, chain: s.chain, session: s})
	if err != nil {
		if p.Optional && isMissing(err, p.Key()) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// assignable converts a produced value for a point. An invalid Value means
// the optional point stays zero.
func assignable(class *Class, p *InjectionPoint, name string, v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if isNil(rv) {
		if p.Optional {
			return reflect.Value{}, nil
		}
		return reflect.Value{}, &ResolutionError{
			Type:  class.Type,
			Point: name,
			Key:   p.Key(),
			Cause: &BindingNotFoundError{Key: p.Key()},
		}
	}

	if !rv.Type().AssignableTo(p.fieldType) {
		return reflect.Value{}, &ResolutionError{
			Type:    class.Type,
			Point:   name,
			Key:     p.Key(),
			Context: fmt.Sprintf("resolved %v is not assignable to %v", rv.Type(), p.fieldType),
		}
	}
	return rv, nil
}

// within runs fn with p on top of the stack.
func (s *Session) within(p *InjectionPoint, fn func() error) error {
	s.push(p)
	defer s.pop()
	return fn()
}
