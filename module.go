package diorite

import (
	"fmt"
	"reflect"
)

// Module is the interface implemented by bundles of related bindings.
//
// Example:
//
//	type ModulesBinder struct{}
//
//	func (ModulesBinder) Configure(c *diorite.Container) error {
//	    return c.Singleton(diorite.KeyOf[Module]("module2"), newModule2)
//	}
type Module interface {
	Configure(c *Container) error
}

// BootableModule is an optional interface for modules that need a boot phase.
// Boot is called by BootModules after every module has been installed, so it
// may resolve bindings contributed by other modules.
type BootableModule interface {
	Module
	Boot(c *Container) error
}

// ConditionalModule is an optional interface for modules that should only be
// installed under some condition.
type ConditionalModule interface {
	Module
	ShouldInstall(c *Container) bool
}

// moduleEntry tracks an installed module.
type moduleEntry struct {
	module Module
	booted bool
}

// InstallModule installs a module. Configure is called immediately.
// Installing a second module of the same type is a no-op.
//
// Example:
//
//	container.InstallModule(&LoggingModule{})
//	container.InstallModule(&DatabaseModule{})
//	container.BootModules()
func (c *Container) InstallModule(module Module) error {
	if module == nil {
		return fmt.Errorf("module cannot be nil")
	}

	if conditional, ok := module.(ConditionalModule); ok {
		if !conditional.ShouldInstall(c) {
			return nil
		}
	}

	moduleType := reflect.TypeOf(module)
	c.modulesMu.Lock()
	for _, entry := range c.modules {
		if reflect.TypeOf(entry.module) == moduleType {
			c.modulesMu.Unlock()
			return nil
		}
	}
	c.modulesMu.Unlock()

	if err := module.Configure(c); err != nil {
		return fmt.Errorf("module %v configuration failed: %w", moduleType, err)
	}

	c.modulesMu.Lock()
	c.modules = append(c.modules, &moduleEntry{module: module})
	c.modulesMu.Unlock()

	return nil
}

// BootModules calls Boot on every installed BootableModule not booted yet.
func (c *Container) BootModules() error {
	c.modulesMu.Lock()
	entries := append([]*moduleEntry(nil), c.modules...)
	c.modulesMu.Unlock()

	for _, entry := range entries {
		if entry.booted {
			continue
		}

		if bootable, ok := entry.module.(BootableModule); ok {
			if err := bootable.Boot(c); err != nil {
				return fmt.Errorf("module %T boot failed: %w", entry.module, err)
			}
			entry.booted = true
		}
	}

	return nil
}

// Modules returns the installed modules in installation order.
func (c *Container) Modules() []Module {
	c.modulesMu.Lock()
	defer c.modulesMu.Unlock()

	modules := make([]Module, len(c.modules))
	for i, entry := range c.modules {
		modules[i] = entry.module
	}
	return modules
}
