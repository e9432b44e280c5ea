package diorite

import (
	"sync"
)

// sharedInstance holds a shared singleton and tracks its construction.
// A failed construction leaves the slot empty so a later call retries.
type sharedInstance struct {
	key   Key
	done  bool
	value any

	// owner is the chain running the factory, nil when no build is active
	owner *chain
	// ready is closed when the active build ends
	ready chan struct{}
}

// scopeStore caches shared singletons per binding key. Point-local
// singletons live on the Session or Provider that asked for them.
type scopeStore struct {
	mu sync.RWMutex

	shared map[Key]*sharedInstance
}

// newScopeStore creates an empty scope store.
func newScopeStore() *scopeStore {
	return &scopeStore{
		shared: make(map[Key]*sharedInstance),
	}
}

// getShared retrieves an existing shared singleton or creates it using the
// provided factory on behalf of ch. The factory runs at most once per key at
// a time, without any lock held, and its result is published only when it
// succeeds.
//
// A caller that finds another chain building the key waits for it, unless
// that build is itself waiting, directly or transitively, on ch. Such a wait
// would never end and is reported as CircularDependencyError instead.
//
// This method is goroutine-safe.
func (s *scopeStore) getShared(key Key, ch *chain, factory func() (any, error)) (any, error) {
	// Fast path: completed instance (read lock)
	s.mu.RLock()
	instance, exists := s.shared[key]
	if exists && instance.done {
		value := instance.value
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	for {
		instance, exists = s.shared[key]
		if !exists {
			instance = &sharedInstance{key: key}
			s.shared[key] = instance
		}
		if instance.done {
			value := instance.value
			s.mu.Unlock()
			return value, nil
		}
		if instance.owner == nil {
			break
		}
		if err := s.waitCycle(instance, ch); err != nil {
			s.mu.Unlock()
			return nil, err
		}

		ready := instance.ready
		ch.waiting = instance
		s.mu.Unlock()
		<-ready
		s.mu.Lock()
		ch.waiting = nil
	}
	instance.owner = ch
	instance.ready = make(chan struct{})
	s.mu.Unlock()

	var (
		value any
		built bool
	)
	defer func() {
		s.mu.Lock()
		if built {
			instance.value = value
			instance.done = true
		}
		instance.owner = nil
		close(instance.ready)
		s.mu.Unlock()
	}()

	value, err := factory()
	if err != nil {
		return nil, err
	}
	built = true
	return value, nil
}

// waitCycle follows the wait graph from the build of instance: its owner
// chain, the instance that chain waits on, that instance's owner, and so on.
// Reaching ch means ch would wait on itself. Must be called with s.mu held.
func (s *scopeStore) waitCycle(instance *sharedInstance, ch *chain) error {
	closed := false
	for next := instance; next != nil && next.owner != nil; next = next.owner.waiting {
		if next.owner == ch {
			closed = true
			break
		}
	}
	if !closed {
		return nil
	}

	// Every owner on the cycle other than ch is parked on its ready channel,
	// so its keys are stable while s.mu is held.
	path := []string{}
	for next := instance; ; next = next.owner.waiting {
		segment := next.owner.from(next.key)
		if len(path) > 0 && len(segment) > 0 {
			segment = segment[1:]
		}
		path = append(path, segment...)
		if next.owner == ch {
			break
		}
	}
	return &CircularDependencyError{Path: path}
}

// putShared stores a pre-built shared instance.
func (s *scopeStore) putShared(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shared[key] = &sharedInstance{key: key, done: true, value: value}
}

// evict drops the shared instance cached for a key. A build in progress
// still completes for its own callers but is no longer published.
func (s *scopeStore) evict(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.shared, key)
}

// clear removes all cached instances.
func (s *scopeStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shared = make(map[Key]*sharedInstance)
}
