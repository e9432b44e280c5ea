package diorite

import (
	"fmt"
	"reflect"
	"strings"
)

// PointKind tells how an injection point receives its value.
type PointKind int

const (
	// FieldPoint is a struct field assigned with the resolved value.
	FieldPoint PointKind = iota

	// ParameterPoint is one parameter of an injectable method.
	ParameterPoint

	// MethodPoint is a method invoked with all of its parameters resolved.
	MethodPoint
)

func (k PointKind) String() string {
	switch k {
	case FieldPoint:
		return "field"
	case ParameterPoint:
		return "parameter"
	case MethodPoint:
		return "method"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Phase places a hook before or after the resolution it brackets.
type Phase int

const (
	// BeforeInject hooks run before resolution.
	BeforeInject Phase = iota

	// AfterInject hooks run after the value is assigned or the method invoked.
	AfterInject
)

func (p Phase) String() string {
	if p == BeforeInject {
		return "before"
	}
	return "after"
}

// InjectionPoint describes one declared location receiving a resolved value.
// Points are immutable once their Class has been built.
type InjectionPoint struct {
	// Owner is the pointer type declaring the point
	Owner reflect.Type

	// Name is the member name (field, parameter or method name)
	Name string

	Kind PointKind

	// Type is the declared type of the requirement.
	// For lazy points this is the provided type, not the Provider itself.
	Type reflect.Type

	Qualifier string
	Markers   []Marker

	// Singleton requests one instance per declared point
	Singleton bool

	// Final points may only be assigned while they are still zero
	Final bool

	// Optional points stay zero when nothing is bound for them
	Optional bool

	// Lazy points receive a *Provider[Type] instead of a value
	Lazy bool

	// HookName overrides Name for hook matching
	HookName string

	// Params lists the parameters of a method point in declared order
	Params []*InjectionPoint

	key          Key
	autoName     bool
	field        []int
	fieldType    reflect.Type
	method       int
	returnsError bool
	init         initFunc
}

type initFunc func(owner reflect.Value, s *Session) (any, error)

// Key returns the binding key this point requires.
func (p *InjectionPoint) Key() Key {
	return p.key
}

// HookTarget is the name hooks are matched against.
func (p *InjectionPoint) HookTarget() string {
	if p.HookName != "" {
		return p.HookName
	}
	return p.Name
}

func (p *InjectionPoint) String() string {
	if p.Owner == nil {
		return p.Name
	}
	return fmt.Sprintf("%v.%s", p.Owner.Elem(), p.Name)
}

// Hook is a method run before or after a named point, or around the whole
// initialization sequence when Target is empty. The method takes no
// arguments or a single *Session, through which a Before hook of a point can
// resolve that point.
type Hook struct {
	// Target is the case-folded point name; empty for global hooks
	Target string

	Phase  Phase
	Method string

	index        int
	withSession  bool
	returnsError bool
}

// Global reports whether the hook brackets the whole initialization.
func (h *Hook) Global() bool {
	return h.Target == ""
}

// Matches reports whether the hook targets the point. Matching ignores case.
func (h *Hook) Matches(p *InjectionPoint) bool {
	return !h.Global() && strings.EqualFold(h.Target, p.HookTarget())
}

func (h *Hook) invoke(s *Session) error {
	var args []reflect.Value
	if h.withSession {
		args = []reflect.Value{reflect.ValueOf(s)}
	}
	out := s.owner.Method(h.index).Call(args)
	if h.returnsError && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

// Class is the immutable injection descriptor of one type.
type Class struct {
	// Type is the pointer-to-struct type described
	Type reflect.Type

	// Points are field points in declaration order
	Points []*InjectionPoint

	// Methods are method points, processed after all field points
	Methods []*InjectionPoint

	// Hooks are in declaration order
	Hooks []*Hook
}

// Point returns the field or method point with the given name, ignoring case.
func (c *Class) Point(name string) (*InjectionPoint, bool) {
	for _, p := range c.Points {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	for _, m := range c.Methods {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return nil, false
}

// Describer is implemented by types that declare their own injection points.
// DescribeInjection is called once, on a zero value, the first time the type
// is initialized.
//
// Example:
//
//	func (*Service) DescribeInjection(b *diorite.ClassBuilder) {
//	    b.Field("Logger", diorite.NamedAuto()).
//	        BeforeInject("", "Setup")
//	}
type Describer interface {
	DescribeInjection(b *ClassBuilder)
}
