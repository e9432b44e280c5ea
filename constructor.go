package diorite

import (
	"fmt"
	"reflect"
)

// constructorInfo holds metadata about a constructor function.
type constructorInfo struct {
	fn           reflect.Value
	paramTypes   []reflect.Type
	returnsError bool
	returnType   reflect.Type
}

// parseConstructor analyzes a constructor function and extracts metadata.
// Supported signatures:
//   - func() T
//   - func() (T, error)
//   - func(Dep1, Dep2, ...) T
//   - func(Dep1, Dep2, ...) (T, error)
func parseConstructor(constructor any) (*constructorInfo, error) {
	if constructor == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %v", fnType.Kind())
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("constructor must not be variadic")
	}

	// Validate return values
	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, fmt.Errorf("constructor must return (T) or (T, error), got %d return values", numOut)
	}

	// Check if second return is error
	returnsError := false
	if numOut == 2 {
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	// Extract parameter types
	paramTypes := make([]reflect.Type, fnType.NumIn())
	for i := range paramTypes {
		paramTypes[i] = fnType.In(i)
	}

	return &constructorInfo{
		fn:           fnValue,
		paramTypes:   paramTypes,
		returnsError: returnsError,
		returnType:   fnType.Out(0),
	}, nil
}

// invoke calls the constructor with its parameters resolved, by type and
// without qualifier, on the request's resolution chain.
func (info *constructorInfo) invoke(r *Request) (any, error) {
	params := make([]reflect.Value, len(info.paramTypes))
	for i, paramType := range info.paramTypes {
		resolved, err := r.Resolve(NewKey(paramType, ""))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve constructor parameter %d (%v): %w", i, paramType, err)
		}
		if resolved == nil {
			params[i] = reflect.Zero(paramType)
			continue
		}
		params[i] = reflect.ValueOf(resolved)
	}

	results := info.fn.Call(params)

	if info.returnsError {
		if errValue := results[1]; !errValue.IsNil() {
			return nil, fmt.Errorf("constructor returned error: %w", errValue.Interface().(error))
		}
	}

	return results[0].Interface(), nil
}

// BindConstructor registers a binding built by a constructor function whose
// parameters are resolved from the container.
//
// Example:
//
//	container.BindConstructor(diorite.KeyOf[Service](""), NewService, diorite.ScopeShared)
//	// Where: func NewService(m Module, logger *zap.Logger) (*ServiceImpl, error)
func (c *Container) BindConstructor(key Key, constructor any, scope Scope) error {
	info, err := parseConstructor(constructor)
	if err != nil {
		return &InvalidBindingError{Reason: fmt.Sprintf("invalid constructor: %v", err)}
	}
	if key.Type != nil && !info.returnType.AssignableTo(key.Type) {
		return &InvalidBindingError{
			Reason: fmt.Sprintf("constructor returns %v, not assignable to %v", info.returnType, key.Type),
		}
	}

	return c.Register(key, info.invoke, scope)
}
