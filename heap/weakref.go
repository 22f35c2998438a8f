package heap

import (
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// WeakRef: an explicit reference that doesn't keep its target alive
// ---------------------------------------------------------------------------

// WeakRef holds a reference to a heap object without anchoring it. When a
// collection frees the target, the reference is cleared and an optional
// finalizer runs. This is the embedding-level counterpart of weak table
// entries: caches and registries use it to observe objects without
// pinning them.
type WeakRef struct {
	id        uint32
	target    Object
	finalizer func(Object)
	mu        sync.RWMutex
}

// ID returns the reference's unique identifier within its registry.
func (wr *WeakRef) ID() uint32 { return wr.id }

// Get returns the target, or nil once it has been collected.
func (wr *WeakRef) Get() Object {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.target
}

// IsAlive reports whether the target has not been collected.
func (wr *WeakRef) IsAlive() bool {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.target != nil
}

// Clear drops the target and returns the old one, for finalization.
func (wr *WeakRef) Clear() Object {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	old := wr.target
	wr.target = nil
	return old
}

// SetFinalizer registers a callback invoked when the target is collected.
// The callback receives the freed object for identification only; its
// internal state is already released.
func (wr *WeakRef) SetFinalizer(fn func(Object)) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.finalizer = fn
}

// Finalizer returns the registered callback, if any.
func (wr *WeakRef) Finalizer() func(Object) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.finalizer
}

// ---------------------------------------------------------------------------
// WeakRefRegistry: all weak references of one heap
// ---------------------------------------------------------------------------

// WeakRefRegistry tracks every weak reference created against a heap and
// clears the dead ones at the end of each collection cycle.
type WeakRefRegistry struct {
	refs   map[uint32]*WeakRef
	nextID atomic.Uint32
	mu     sync.RWMutex
}

// NewWeakRefRegistry creates an empty registry.
func NewWeakRefRegistry() *WeakRefRegistry {
	return &WeakRefRegistry{refs: make(map[uint32]*WeakRef)}
}

// NewRef creates and registers a weak reference to target.
func (r *WeakRefRegistry) NewRef(target Object) *WeakRef {
	wr := &WeakRef{
		id:     r.nextID.Add(1),
		target: target,
	}
	r.mu.Lock()
	r.refs[wr.id] = wr
	r.mu.Unlock()
	return wr
}

// Unregister removes a weak reference from the registry.
func (r *WeakRefRegistry) Unregister(wr *WeakRef) {
	r.mu.Lock()
	delete(r.refs, wr.id)
	r.mu.Unlock()
}

// Lookup finds a weak reference by ID.
func (r *WeakRefRegistry) Lookup(id uint32) *WeakRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refs[id]
}

// Count returns the number of registered weak references.
func (r *WeakRefRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.refs)
}

// Sweep clears every reference whose target fails the alive predicate and
// runs finalizers. Finalizers run outside the registry lock so they may
// create new weak references. Returns the number cleared.
func (r *WeakRefRegistry) Sweep(alive func(Object) bool) int {
	type cleared struct {
		wr     *WeakRef
		target Object
	}

	r.mu.RLock()
	var dead []cleared
	for _, wr := range r.refs {
		if target := wr.Get(); target != nil && !alive(target) {
			dead = append(dead, cleared{wr, target})
		}
	}
	r.mu.RUnlock()

	for _, d := range dead {
		d.wr.Clear()
	}
	for _, d := range dead {
		if fn := d.wr.Finalizer(); fn != nil {
			fn(d.target)
		}
	}
	return len(dead)
}
