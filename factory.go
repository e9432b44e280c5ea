package diorite

// Factory produces an instance for a resolution request.
// It receives the request so it can inspect the requested key and the
// injection point, and resolve further dependencies on the same chain.
//
// Example:
//
//	c.Bind(diorite.KeyOf[Module]("", Empty), func(r *diorite.Request) (any, error) {
//	    return &NamedModule{Name: r.Key.Qualifier}, nil
//	})
type Factory func(r *Request) (any, error)

// Request describes one resolution.
type Request struct {
	// Key is the key being resolved, as requested by the consumer.
	Key Key

	// Point is the injection point being satisfied, nil for manual resolution.
	Point *InjectionPoint

	// Owner is the instance that declares Point, nil for manual resolution.
	Owner any

	container *Container
	chain     *chain
	session   *Session
}

// Resolve resolves another key on the same resolution chain, so cycles
// through this factory are detected. It is the only way a factory should
// reach the container.
func (r *Request) Resolve(key Key) (any, error) {
	return r.container.resolve(&Request{Key: key, container: r.container, chain: r.chain})
}

// Value returns a Factory that always yields v.
func Value(v any) Factory {
	return func(*Request) (any, error) { return v, nil }
}
