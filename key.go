package diorite

import (
	"reflect"

	"github.com/toutaio/toutago-diorite-injector/registry"
)

// Key identifies a binding: declared type, optional qualifier and a marker set.
type Key = registry.Key

// Marker is an order-independent tag carried by a Key.
type Marker = registry.Marker

// Scope is the reuse policy of a binding.
type Scope = registry.Scope

const (
	// ScopeNone creates a fresh instance on every resolution.
	ScopeNone = registry.ScopeNone

	// ScopeShared creates one instance per binding, shared process-wide.
	ScopeShared = registry.ScopeShared
)

// NewKey creates a Key for an explicit reflect.Type.
func NewKey(t reflect.Type, qualifier string, markers ...Marker) Key {
	return registry.NewKey(t, qualifier, markers...)
}

// KeyOf creates a Key for the type parameter T.
//
// Example:
//
//	key := diorite.KeyOf[Module]("module1")
func KeyOf[T any](qualifier string, markers ...Marker) Key {
	return registry.NewKey(typeOf[T](), qualifier, markers...)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
