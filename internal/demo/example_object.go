package demo

import (
	"fmt"
	"slices"

	diorite "github.com/toutaio/toutago-diorite-injector"
)

// ExampleInvokedPattern is the hook and helper sequence observed while an
// ExampleObject is initialized.
var ExampleInvokedPattern = []string{
	"beforeAll",
	"beforeModule3", "afterModule3",
	"beforeIdk", "Module1", "afterIdk",
	"beforeIndirect", "injectIndirect", "afterIndirect",
	"afterAll",
}

// ExampleObject exercises named, marked, point-local singleton and
// indirectly initialized fields.
type ExampleObject struct {
	Module0  Module
	Module1  Module
	Module2  Module
	Module3  Module
	Idk      Module
	Indirect Module

	invoked []string
}

// DescribeInjection declares the points in field order, with Idk and
// Indirect computed by helpers.
func (*ExampleObject) DescribeInjection(b *diorite.ClassBuilder) {
	b.Field("Module0", diorite.Named("module1")).
		Field("Module1", diorite.NamedAuto(), diorite.AsSingleton()).
		Field("Module2", diorite.NamedAuto()).
		Field("Module3", diorite.Named("essentials"), diorite.WithMarkers(Empty), diorite.AsFinal()).
		Field("Idk", diorite.NamedAuto(), diorite.WithMarkers(Empty), diorite.AsFinal(),
			diorite.InitWith((*ExampleObject).heh)).
		Field("Indirect", diorite.NamedAuto(), diorite.WithMarkers(Empty), diorite.AsFinal(),
			diorite.InitWith((*ExampleObject).initIndirect)).
		BeforeInject("", "BeforeAll").
		AfterInject("", "AfterAll").
		AfterInject("module3", "AfterModule3").
		BeforeInject("module3", "BeforeModule3").
		AfterInject("idk", "AfterIdk").
		BeforeInject("idk", "BeforeIdk").
		AfterInject("indirect", "AfterIndirect").
		BeforeInject("indirect", "BeforeIndirect")
}

// heh injects through a helper and shuffles locals before returning.
func (o *ExampleObject) heh(s *diorite.Session) (any, error) {
	inject, err := diorite.Inject[Module](s)
	if err != nil {
		return nil, err
	}
	if inject == nil || inject.Name() != "idk" {
		return nil, fmt.Errorf("idk initializer resolved %v", inject)
	}

	module := o.someMethod(inject)
	temp := module
	module = inject
	inject = temp
	o.invoked = append(o.invoked, inject.Name())
	return module, nil
}

func (o *ExampleObject) initIndirect(s *diorite.Session) (any, error) {
	inject, err := o.injectIndirect(s)
	if err != nil {
		return nil, err
	}

	module := o.someMethod(inject)
	temp := module
	module = inject
	inject = temp
	if module.Name() != "indirect" {
		return nil, fmt.Errorf("indirect initializer kept %v", module)
	}
	return module, nil
}

func (o *ExampleObject) injectIndirect(s *diorite.Session) (Module, error) {
	inject, err := diorite.Inject[Module](s)
	if err != nil {
		return nil, err
	}
	if inject == nil || inject.Name() != "indirect" {
		return nil, fmt.Errorf("indirect helper resolved %v", inject)
	}
	o.invoked = append(o.invoked, "injectIndirect")
	return inject, nil
}

func (o *ExampleObject) someMethod(Module) Module {
	return NewModuleOne()
}

func (o *ExampleObject) BeforeAll() {
	o.invoked = []string{"beforeAll"}
}

func (o *ExampleObject) AfterAll() {
	o.invoked = append(o.invoked, "afterAll")
}

func (o *ExampleObject) BeforeModule3() {
	o.invoked = append(o.invoked, "beforeModule3")
}

func (o *ExampleObject) AfterModule3() {
	o.invoked = append(o.invoked, "afterModule3")
}

func (o *ExampleObject) BeforeIdk() {
	o.invoked = append(o.invoked, "beforeIdk")
}

func (o *ExampleObject) AfterIdk() {
	o.invoked = append(o.invoked, "afterIdk")
}

func (o *ExampleObject) BeforeIndirect() {
	o.invoked = append(o.invoked, "beforeIndirect")
}

func (o *ExampleObject) AfterIndirect() {
	o.invoked = append(o.invoked, "afterIndirect")
}

// Invoked returns the recorded hook and helper sequence.
func (o *ExampleObject) Invoked() []string {
	return slices.Clone(o.invoked)
}

// Verify checks the injected values and the recorded sequence.
func (o *ExampleObject) Verify() error {
	for name, m := range map[string]Module{
		"module0": o.Module0, "module1": o.Module1, "module2": o.Module2,
		"module3": o.Module3, "idk": o.Idk, "indirect": o.Indirect,
	} {
		if m == nil {
			return fmt.Errorf("%s was not injected", name)
		}
	}

	if !slices.Equal(o.invoked, ExampleInvokedPattern) {
		return fmt.Errorf("invoked %v, want %v", o.invoked, ExampleInvokedPattern)
	}

	want := []struct {
		got, want string
	}{
		{o.Module0.Name(), "Module1"},
		{o.Module1.Name(), "Module1"},
		{o.Module2.Name(), "Module2"},
		{o.Module3.Name(), "essentials"},
		{o.Idk.Name(), "idk"},
		{o.Indirect.Name(), "indirect"},
	}
	for _, w := range want {
		if w.got != w.want {
			return fmt.Errorf("got module %q, want %q", w.got, w.want)
		}
	}

	if o.Module0 == o.Module1 {
		return fmt.Errorf("module0 and module1 share an instance")
	}
	return nil
}

func (o *ExampleObject) String() string {
	return fmt.Sprintf("%v & %v & %v & %v & %v & %v", o.Module0, o.Module1, o.Module2, o.Module3, o.Idk, o.Indirect)
}
