// Package demo holds the reference injectable objects used by the CLI and
// the integration tests.
package demo

import (
	diorite "github.com/toutaio/toutago-diorite-injector"
)

// Empty is a marker carried by points served by the naming binding.
const Empty diorite.Marker = "empty"

// Module is the service type injected throughout the demo.
type Module interface {
	Name() string
}

// ModuleOne is bound to the "module1" qualifier, fresh per resolution.
type ModuleOne struct {
	name string
}

func (m *ModuleOne) Name() string { return m.name }

func (m *ModuleOne) String() string { return m.name }

// ModuleTwo is bound to the "module2" qualifier as a shared singleton.
type ModuleTwo struct {
	name string
}

func (m *ModuleTwo) Name() string { return m.name }

func (m *ModuleTwo) String() string { return m.name }

// NamedModule is named after the qualifier it was requested with.
type NamedModule struct {
	name string
}

func (m *NamedModule) Name() string { return m.name }

func (m *NamedModule) String() string { return m.name }

// NewModuleOne creates a ModuleOne.
func NewModuleOne() *ModuleOne {
	return &ModuleOne{name: "Module1"}
}

// Binder registers the demo bindings.
type Binder struct{}

// Configure registers:
//   - Module(name=module1): a new ModuleOne per resolution
//   - Module(name=module2): one shared ModuleTwo
//   - Module[empty] for any name: a NamedModule carrying the requested name
func (Binder) Configure(c *diorite.Container) error {
	if err := c.BindConstructor(diorite.KeyOf[Module]("module1"), NewModuleOne, diorite.ScopeNone); err != nil {
		return err
	}
	if err := diorite.Provide(c, diorite.ScopeShared, "module2", func(*diorite.Request) (Module, error) {
		return &ModuleTwo{name: "Module2"}, nil
	}); err != nil {
		return err
	}
	return c.Bind(diorite.KeyOf[Module]("", Empty), func(r *diorite.Request) (any, error) {
		return &NamedModule{name: r.Key.Qualifier}, nil
	})
}
