package demo

import (
	"fmt"

	diorite "github.com/toutaio/toutago-diorite-injector"
)

// Report is the outcome of Run.
type Report struct {
	Example       []string
	Method        []string
	ExampleValues string
	SomeModule    string
}

// Run installs the demo bindings, initializes both demo objects and checks
// them.
func Run(c *diorite.Container) (*Report, error) {
	if err := c.InstallModule(Binder{}); err != nil {
		return nil, err
	}

	obj := &ExampleObject{}
	if err := c.Initialize(obj); err != nil {
		return nil, fmt.Errorf("initialize example object: %w", err)
	}
	if err := obj.Verify(); err != nil {
		return nil, fmt.Errorf("verify example object: %w", err)
	}

	mobj := &MethodExampleObject{}
	if err := c.Initialize(mobj); err != nil {
		return nil, fmt.Errorf("initialize method example object: %w", err)
	}
	if err := mobj.Verify(); err != nil {
		return nil, fmt.Errorf("verify method example object: %w", err)
	}
	some, err := mobj.SomeModuleProvider.GetNotNull()
	if err != nil {
		return nil, err
	}

	return &Report{
		Example:       obj.Invoked(),
		Method:        mobj.Invoked(),
		ExampleValues: obj.String(),
		SomeModule:    some.Name(),
	}, nil
}

// Classes returns the descriptors of the demo objects.
func Classes(c *diorite.Container) ([]*diorite.Class, error) {
	var classes []*diorite.Class
	for _, sample := range []any{(*ExampleObject)(nil), (*MethodExampleObject)(nil)} {
		class, err := c.Class(sample)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}
