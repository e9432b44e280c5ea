package demo

import (
	"fmt"
	"slices"

	diorite "github.com/toutaio/toutago-diorite-injector"
)

// MethodInvokedPattern is the sequence observed while a MethodExampleObject
// is initialized.
var MethodInvokedPattern = []string{"beforeMoreModules", "injectMoreModules", "afterMoreModules"}

// MethodExampleObject exercises a lazy provider field and an injectable
// method whose hooks use a differently cased target.
type MethodExampleObject struct {
	SomeModuleProvider *diorite.Provider[Module]

	invoked []string
}

// DescribeInjection declares the provider field and the injection method.
func (*MethodExampleObject) DescribeInjection(b *diorite.ClassBuilder) {
	b.Field("SomeModuleProvider", diorite.NamedAuto(), diorite.WithMarkers(Empty), diorite.AsSingleton()).
		Method("InjectMoreModules", []diorite.ParamSpec{
			diorite.Param("module1"),
			diorite.Param("module12", diorite.Named("module1")),
			diorite.Param("module2"),
			diorite.Param("module22", diorite.Named("module2")),
			diorite.Param("guard", diorite.WithMarkers(Empty)),
		}, diorite.NamedAuto(), diorite.AsSingleton(), diorite.HookAlias("moreModules")).
		AfterInject("moreModules", "AfterMoreModules").
		BeforeInject("MoreModules", "BeforeMoreModules")
}

// InjectMoreModules receives its parameters from the container. Each
// parameter is its own singleton, except module2 whose binding is shared.
func (o *MethodExampleObject) InjectMoreModules(module1, module12, module2, module22, guard Module) error {
	switch {
	case module1.Name() != "Module1" || module12.Name() != "Module1":
		return fmt.Errorf("module1 parameters resolved %v and %v", module1, module12)
	case module1 == module12:
		return fmt.Errorf("module1 parameters share an instance")
	case module2.Name() != "Module2" || module22.Name() != "Module2":
		return fmt.Errorf("module2 parameters resolved %v and %v", module2, module22)
	case module2 != module22:
		return fmt.Errorf("module2 parameters are distinct instances")
	case guard.Name() != "guard":
		return fmt.Errorf("guard parameter resolved %v", guard)
	}
	o.invoked = append(o.invoked, "injectMoreModules")
	return nil
}

func (o *MethodExampleObject) BeforeMoreModules() {
	o.invoked = append(o.invoked, "beforeMoreModules")
}

func (o *MethodExampleObject) AfterMoreModules() {
	o.invoked = append(o.invoked, "afterMoreModules")
}

// Invoked returns the recorded sequence.
func (o *MethodExampleObject) Invoked() []string {
	return slices.Clone(o.invoked)
}

// Verify checks the recorded sequence and the lazily provided module.
func (o *MethodExampleObject) Verify() error {
	if o.SomeModuleProvider == nil {
		return fmt.Errorf("someModuleProvider was not injected")
	}
	if !slices.Equal(o.invoked, MethodInvokedPattern) {
		return fmt.Errorf("invoked %v, want %v", o.invoked, MethodInvokedPattern)
	}
	m, err := o.SomeModuleProvider.GetNotNull()
	if err != nil {
		return err
	}
	if m.Name() != "someModule" {
		return fmt.Errorf("provider resolved %q, want %q", m.Name(), "someModule")
	}
	return nil
}
