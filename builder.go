package diorite

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// PointOption configures an injection point while it is declared.
type PointOption func(*InjectionPoint)

// Named sets an explicit qualifier.
func Named(qualifier string) PointOption {
	return func(p *InjectionPoint) {
		p.Qualifier = qualifier
		p.autoName = false
	}
}

// NamedAuto uses the member name, with its first letter lower-cased, as the
// qualifier. For lazy points a trailing "Provider" is dropped.
// On a method it applies to every parameter without an explicit name.
func NamedAuto() PointOption {
	return func(p *InjectionPoint) {
		p.autoName = true
	}
}

// WithMarkers adds markers to the point's key.
func WithMarkers(markers ...Marker) PointOption {
	return func(p *InjectionPoint) {
		p.Markers = append(p.Markers, markers...)
	}
}

// AsSingleton gives the point its own singleton, never shared with other points.
func AsSingleton() PointOption {
	return func(p *InjectionPoint) {
		p.Singleton = true
	}
}

// AsFinal forbids overwriting an already assigned value.
func AsFinal() PointOption {
	return func(p *InjectionPoint) {
		p.Final = true
	}
}

// Optional leaves the point zero instead of failing when nothing is bound.
func Optional() PointOption {
	return func(p *InjectionPoint) {
		p.Optional = true
	}
}

// HookAlias matches hooks against name instead of the member name.
func HookAlias(name string) PointOption {
	return func(p *InjectionPoint) {
		p.HookName = name
	}
}

// InitWith replaces the default initializer of a field point.
// The function computes the value assigned to the field; it may call helpers
// that use s.Inject(), which resolves for this point however the value is
// passed around before being returned.
//
// Example:
//
//	b.Field("Idk", diorite.NamedAuto(), diorite.InitWith(func(o *Example, s *diorite.Session) (any, error) {
//	    return o.heh(s)
//	}))
func InitWith[T any](fn func(owner T, s *Session) (any, error)) PointOption {
	return func(p *InjectionPoint) {
		p.init = func(owner reflect.Value, s *Session) (any, error) {
			typed, ok := owner.Interface().(T)
			if !ok {
				return nil, fmt.Errorf("initializer expects %v, got %v", typeOf[T](), owner.Type())
			}
			return fn(typed, s)
		}
	}
}

// ParamSpec declares one parameter of a method point.
type ParamSpec struct {
	Name    string
	Options []PointOption
}

// Param declares a method parameter. Parameter names are not available
// through reflection, so they are given here in declared order.
func Param(name string, opts ...PointOption) ParamSpec {
	return ParamSpec{Name: name, Options: opts}
}

// ClassBuilder collects the injection points and hooks of one type.
// Points are recorded in the order they are declared.
type ClassBuilder struct {
	class    *Class
	elem     reflect.Type
	declared map[string]bool
	err      error
}

func newClassBuilder(t reflect.Type) *ClassBuilder {
	return &ClassBuilder{
		class:    &Class{Type: t},
		elem:     t.Elem(),
		declared: make(map[string]bool),
	}
}

func (b *ClassBuilder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = &InvalidDescriptorError{Type: b.class.Type, Reason: fmt.Sprintf(format, args...)}
	}
}

// Type returns the pointer type being described.
func (b *ClassBuilder) Type() reflect.Type {
	return b.class.Type
}

// Field declares a struct field injection point.
// The field must be exported. A *Provider[T] field becomes a lazy point for T.
func (b *ClassBuilder) Field(name string, opts ...PointOption) *ClassBuilder {
	sf, ok := b.elem.FieldByName(name)
	if !ok {
		b.fail("no field %q", name)
		return b
	}
	if sf.PkgPath != "" {
		b.fail("field %q is not exported", name)
		return b
	}
	if b.declared[strings.ToLower(name)] {
		b.fail("point %q declared twice", name)
		return b
	}

	p := &InjectionPoint{
		Owner:     b.class.Type,
		Name:      name,
		Kind:      FieldPoint,
		Type:      sf.Type,
		field:     sf.Index,
		fieldType: sf.Type,
	}
	if provided, lazy := lazyType(sf.Type); lazy {
		p.Type = provided
		p.Lazy = true
	}
	for _, opt := range opts {
		opt(p)
	}
	finishPoint(p)

	b.declared[strings.ToLower(name)] = true
	b.class.Points = append(b.class.Points, p)
	return b
}

// Tagged declares, at the current position, every exported field carrying an
// `inject` struct tag that was not declared explicitly, in struct order.
func (b *ClassBuilder) Tagged() *ClassBuilder {
	for i := 0; i < b.elem.NumField(); i++ {
		sf := b.elem.Field(i)
		tag, ok := sf.Tag.Lookup(injectTag)
		if !ok || sf.PkgPath != "" || b.declared[strings.ToLower(sf.Name)] {
			continue
		}
		opts := parseInjectTag(tag)
		if opts.skip {
			continue
		}
		b.Field(sf.Name, opts.pointOptions()...)
	}
	return b
}

// Method declares an injectable method. Its parameters are resolved in
// declared order, then the method is invoked; it counts as one point named
// after the method for hook matching. opts apply to the method itself and,
// for NamedAuto, AsSingleton, Optional and WithMarkers, to each parameter.
func (b *ClassBuilder) Method(name string, params []ParamSpec, opts ...PointOption) *ClassBuilder {
	m, ok := b.class.Type.MethodByName(name)
	if !ok {
		b.fail("no exported method %q", name)
		return b
	}
	mt := m.Type
	numParams := mt.NumIn() - 1
	if len(params) != 0 && len(params) != numParams {
		b.fail("method %q has %d parameters, %d declared", name, numParams, len(params))
		return b
	}

	returnsError, valid := errorResult(mt)
	if !valid {
		b.fail("method %q must return nothing or an error", name)
		return b
	}

	mp := &InjectionPoint{
		Owner:        b.class.Type,
		Name:         name,
		Kind:         MethodPoint,
		Type:         mt,
		method:       m.Index,
		returnsError: returnsError,
	}
	for _, opt := range opts {
		opt(mp)
	}

	for i := 0; i < numParams; i++ {
		spec := ParamSpec{Name: fmt.Sprintf("arg%d", i)}
		if len(params) != 0 {
			spec = params[i]
		}
		pt := mt.In(i + 1)
		pp := &InjectionPoint{
			Owner:     b.class.Type,
			Name:      spec.Name,
			Kind:      ParameterPoint,
			Type:      pt,
			fieldType: pt,
			Singleton: mp.Singleton,
			Optional:  mp.Optional,
			Markers:   append([]Marker(nil), mp.Markers...),
			autoName:  mp.autoName,
		}
		if provided, lazy := lazyType(pt); lazy {
			pp.Type = provided
			pp.Lazy = true
		}
		for _, opt := range spec.Options {
			opt(pp)
		}
		finishPoint(pp)
		mp.Params = append(mp.Params, pp)
	}

	b.class.Methods = append(b.class.Methods, mp)
	return b
}

// BeforeInject declares a hook run before the point named target, or before
// the first point when target is empty. The method must be exported and
// take no arguments or a *Session; it may return an error.
func (b *ClassBuilder) BeforeInject(target, method string) *ClassBuilder {
	return b.hook(target, method, BeforeInject)
}

// AfterInject declares a hook run after the point named target, or after the
// last point when target is empty.
func (b *ClassBuilder) AfterInject(target, method string) *ClassBuilder {
	return b.hook(target, method, AfterInject)
}

func (b *ClassBuilder) hook(target, method string, phase Phase) *ClassBuilder {
	m, ok := b.class.Type.MethodByName(method)
	if !ok {
		b.fail("no exported hook method %q", method)
		return b
	}
	withSession := m.Type.NumIn() == 2 && m.Type.In(1) == typeOf[*Session]()
	if m.Type.NumIn() != 1 && !withSession {
		b.fail("hook method %q must take no arguments or a *Session", method)
		return b
	}
	returnsError, valid := errorResult(m.Type)
	if !valid {
		b.fail("hook method %q must return nothing or an error", method)
		return b
	}

	b.class.Hooks = append(b.class.Hooks, &Hook{
		Target:       strings.ToLower(target),
		Phase:        phase,
		Method:       method,
		index:        m.Index,
		withSession:  withSession,
		returnsError: returnsError,
	})
	return b
}

func (b *ClassBuilder) build() (*Class, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.class, nil
}

func finishPoint(p *InjectionPoint) {
	if p.autoName && p.Qualifier == "" {
		p.Qualifier = derivedName(p.Name, p.Lazy)
	}
	p.key = NewKey(p.Type, p.Qualifier, p.Markers...)
}

func derivedName(member string, lazy bool) string {
	name := lowerFirst(member)
	if lazy {
		if trimmed := strings.TrimSuffix(name, "Provider"); trimmed != "" {
			name = trimmed
		}
	}
	return name
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func errorResult(mt reflect.Type) (returnsError bool, valid bool) {
	switch mt.NumOut() {
	case 0:
		return false, true
	case 1:
		return true, mt.Out(0) == errorType
	default:
		return false, false
	}
}
