package diorite

import (
	"errors"
	"reflect"

	"github.com/google/uuid"
)

// Session is the resolution context of one Initialize call.
// It keeps a LIFO stack of the points being resolved, so an argument-less
// Inject call made anywhere below a point's initializer resolves that point.
//
// A Session belongs to a single initialization and must not be shared
// between goroutines; concurrent initializations each get their own.
//
// Example:
//
//	func (o *Example) helper(s *diorite.Session) (Module, error) {
//	    m, err := diorite.Inject[Module](s)
//	    ...
//	}
type Session struct {
	id        string
	container *Container
	owner     reflect.Value
	frames    []*InjectionPoint
	chain     *chain

	// locals holds the instances of singleton points for this initialization
	locals map[*InjectionPoint]any
}

func newSession(c *Container, owner reflect.Value, ch *chain) *Session {
	return &Session{
		id:        uuid.NewString(),
		container: c,
		owner:     owner,
		chain:     ch,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Owner returns the instance being initialized.
func (s *Session) Owner() any {
	return s.owner.Interface()
}

func (s *Session) push(p *InjectionPoint) {
	s.frames = append(s.frames, p)
}

func (s *Session) pop() {
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth returns the number of active frames.
func (s *Session) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// Target returns the point on top of the stack.
func (s *Session) Target() (*InjectionPoint, bool) {
	if s == nil || len(s.frames) == 0 {
		return nil, false
	}
	return s.frames[len(s.frames)-1], true
}

// Inject resolves the value for the point currently being initialized.
// Lazy points yield their *Provider. It fails with NoActiveContextError when
// no point is active, including on a nil Session.
func (s *Session) Inject() (any, error) {
	target, ok := s.Target()
	if !ok {
		return nil, &NoActiveContextError{}
	}
	return s.container.pointValue(s, target)
}

// InjectKey resolves an explicit key on this session's resolution chain.
// It works with or without an active frame.
func (s *Session) InjectKey(key Key) (any, error) {
	if s == nil {
		return nil, &NoActiveContextError{}
	}
	return s.container.resolve(&Request{Key: key, Owner: s.Owner(), container: s.container, chain: s.chain})
}

// Initialize initializes another instance on this session's resolution
// chain. The instance's type is entered on the chain like an implicit
// binding, so a cycle back to anything under construction is reported
// instead of recursing.
func (s *Session) Initialize(instance any) error {
	if s == nil {
		return &NoActiveContextError{}
	}
	owner, err := initTarget(instance)
	if err != nil {
		return err
	}
	if err := s.chain.enter(NewKey(owner.Type(), "")); err != nil {
		return err
	}
	defer s.chain.leave()
	return s.container.initialize(owner, s.chain)
}

// local returns the instance of a singleton point, creating it on first use.
func (s *Session) local(p *InjectionPoint, factory func() (any, error)) (any, error) {
	if v, ok := s.locals[p]; ok {
		return v, nil
	}
	v, err := factory()
	if err != nil {
		return nil, err
	}
	if s.locals == nil {
		s.locals = make(map[*InjectionPoint]any)
	}
	s.locals[p] = v
	return v, nil
}

// Inject resolves the active point of s and converts the result to T.
//
// Example:
//
//	module, err := diorite.Inject[Module](s)
func Inject[T any](s *Session) (T, error) {
	var zero T
	v, err := s.Inject()
	if err != nil {
		return zero, err
	}
	return convert[T](v)
}

func convert[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &InvalidBindingError{Reason: "resolved " + reflect.TypeOf(v).String() + " is not a " + typeOf[T]().String()}
	}
	return typed, nil
}

// chain tracks the keys under construction on one call chain.
type chain struct {
	keys []Key

	// waiting is the shared instance this chain is parked on, guarded by
	// the scope store's lock
	waiting *sharedInstance
}

func newChain() *chain {
	return &chain{}
}

// enter records key as under construction, failing if it already is.
func (c *chain) enter(key Key) error {
	if path := c.from(key); path != nil {
		return &CircularDependencyError{Path: append(path, key.String())}
	}
	c.keys = append(c.keys, key)
	return nil
}

// from returns the keys entered since key, starting with key itself, or nil
// when key is not on the chain.
func (c *chain) from(key Key) []string {
	for i, k := range c.keys {
		if k == key {
			path := make([]string, 0, len(c.keys)-i+1)
			for _, p := range c.keys[i:] {
				path = append(path, p.String())
			}
			return path
		}
	}
	return nil
}

func (c *chain) leave() {
	c.keys = c.keys[:len(c.keys)-1]
}

// isMissing reports whether err means nothing is bound for key itself, as
// opposed to a missing dependency deeper in the graph.
func isMissing(err error, key Key) bool {
	var notFound *BindingNotFoundError
	return errors.As(err, &notFound) && notFound.Key == key
}
