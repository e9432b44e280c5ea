package diorite

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toutaio/toutago-diorite-injector/registry"
)

// BindingNotFoundError is returned when no explicit or implicit binding
// satisfies a requested key.
type BindingNotFoundError = registry.BindingNotFoundError

// BindingAlreadyExistsError is returned in strict mode when a key is registered twice.
type BindingAlreadyExistsError = registry.BindingAlreadyExistsError

// AmbiguousBindingError is returned when several bindings satisfy a key and
// nothing disambiguates them.
type AmbiguousBindingError = registry.AmbiguousBindingError

// NoActiveContextError is returned by an argument-less Inject call made
// outside any initialization frame.
type NoActiveContextError struct{}

func (e *NoActiveContextError) Error() string {
	return "inject called without an active injection context. Only call Inject() while an injection point is being initialized."
}

// InvalidBindingError is returned when a binding has invalid parameters.
type InvalidBindingError struct {
	Reason string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding: %s", e.Reason)
}

// InvalidDescriptorError is returned when a class description is malformed.
type InvalidDescriptorError struct {
	Type   reflect.Type
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid injection descriptor for %v: %s", e.Type, e.Reason)
}

// ResolutionError is returned when an injection point cannot be satisfied.
type ResolutionError struct {
	Type    reflect.Type
	Point   string
	Key     Key
	Cause   error
	Context string
}

func (e *ResolutionError) Error() string {
	typeStr := "unknown"
	if e.Type != nil {
		typeStr = e.Type.String()
	}

	pointStr := ""
	if e.Point != "" {
		pointStr = fmt.Sprintf(".%s", e.Point)
	}

	keyStr := ""
	if !e.Key.IsZero() {
		keyStr = fmt.Sprintf(" (%v)", e.Key)
	}

	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to inject %s%s%s%s%s", typeStr, pointStr, keyStr, contextStr, causeStr)
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError indicates a key was requested again while it was
// still under construction on the same resolution chain.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "circular dependency detected"
	}
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}

// HookError wraps a failure returned by a before/after hook.
type HookError struct {
	Type   reflect.Type
	Method string
	Phase  Phase
	Cause  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook %v.%s failed: %v", e.Phase, e.Type, e.Method, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *HookError) Unwrap() error {
	return e.Cause
}

// FinalReassignmentError is returned when initialization would overwrite a
// final injection point that already holds a value.
type FinalReassignmentError struct {
	Type  reflect.Type
	Point string
}

func (e *FinalReassignmentError) Error() string {
	return fmt.Sprintf("final injection point %v.%s is already assigned", e.Type, e.Point)
}

// ValidationError indicates a problem found during binding validation.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", e.Errors[0])
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		b.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}
