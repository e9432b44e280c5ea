// Package diorite provides a dependency injection container driven by
// per-type injection descriptors.
//
// A type declares its injection points (fields, injectable methods and
// their parameters) together with hooks that run before and after each
// point, or around the whole initialization. The container resolves every
// point in declaration order, applies binding scopes and fires the hooks.
//
// # Quick Start
//
//	type Service struct {
//	    Logger Logger `inject:"named"`
//	}
//
//	container := diorite.New()
//	container.Bind(diorite.KeyOf[Logger]("logger"), func(*diorite.Request) (any, error) {
//	    return &ConsoleLogger{}, nil
//	})
//
//	svc := &Service{}
//	if err := container.Initialize(svc); err != nil {
//	    log.Fatal(err)
//	}
//
// # Keys
//
// A Key is a declared type, an optional qualifier and an unordered set of
// markers. A binding registered without a qualifier answers every qualifier,
// and its markers must all be present on the request. The most specific
// binding wins; equally specific candidates are an AmbiguousBindingError.
//
// # Scopes
//
// ScopeNone creates a new instance per resolution. ScopeShared creates one
// instance per binding, shared process-wide. A point declared with
// AsSingleton gets its own instance, never shared with another point even
// when both request the same key.
//
// # Describing Types
//
// Types implement Describer, or are described with Container.Describe, or
// only use `inject` struct tags:
//
//	func (*ExampleObject) DescribeInjection(b *diorite.ClassBuilder) {
//	    b.Field("Module3", diorite.Named("essentials"), diorite.WithMarkers(Empty)).
//	        Field("Idk", diorite.NamedAuto(), diorite.WithMarkers(Empty),
//	            diorite.InitWith((*ExampleObject).heh)).
//	        BeforeInject("", "BeforeAll").
//	        AfterInject("module3", "AfterModule3")
//	}
//
// # Inject Without Arguments
//
// Initializers receive the Session of the running initialization. Calling
// Session.Inject, or the generic Inject, resolves whatever point is being
// initialized, so helpers do not need to know which field they serve:
//
//	func (o *ExampleObject) heh(s *diorite.Session) (any, error) {
//	    return diorite.Inject[Module](s)
//	}
//
// # Lazy Access
//
// A *Provider[T] field is filled with a handle; nothing is resolved until
// Get or GetNotNull is called.
//
// # Thread Safety
//
// Containers are safe for concurrent use. Each Initialize call owns its own
// Session, so concurrent initializations never observe each other's frames.
package diorite
