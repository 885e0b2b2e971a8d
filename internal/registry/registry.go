// Package registry implements the observer registry shared by every stream
// node and signal in the reactive graph: an id-keyed, registration-ordered
// set of callbacks, guarded by an RWMutex the same way hub.Hub guards its
// peer map — collect targets under the lock, dispatch outside it.
package registry

import "sync"

// ID identifies a registered callback within one Registry.
type ID = uint64

type entry[T any] struct {
	cb func(T) bool
	// alive reports whether the callback's owner is still reachable. nil
	// means the entry never expires on its own (only cb returning false,
	// or an explicit Unregister, removes it). Populated with a closure
	// over a weak.Pointer by callers that want GC-driven pruning instead
	// of manual lifetime bookkeeping.
	alive func() bool
}

// Registry is a registration-ordered, id-keyed set of callbacks. The zero
// value is not usable; construct with New.
type Registry[T any] struct {
	mu      sync.RWMutex
	next    ID
	order   []ID
	entries map[ID]entry[T]
}

// New returns an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[ID]entry[T])}
}

// Register adds cb, to be invoked in registration order by Dispatch until
// it returns false or Unregister is called with the returned ID.
func (r *Registry[T]) Register(cb func(T) bool) ID {
	return r.insert(entry[T]{cb: cb})
}

// RegisterWeak is like Register, but the entry is pruned automatically —
// without ever being invoked again — once alive reports false. alive is
// checked before cb on every Dispatch.
func (r *Registry[T]) RegisterWeak(alive func() bool, cb func(T) bool) ID {
	return r.insert(entry[T]{cb: cb, alive: alive})
}

func (r *Registry[T]) insert(e entry[T]) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.entries[id] = e
	r.order = append(r.order, id)
	return id
}

// Unregister removes the callback registered under id, if still present.
func (r *Registry[T]) Unregister(id ID) {
	r.prune([]ID{id})
}

// Dispatch invokes every live callback, in registration order, with v. The
// snapshot of callbacks is taken under RLock and released before any
// callback runs, so a callback may itself call Register/Unregister/Dispatch
// on this registry without deadlocking.
func (r *Registry[T]) Dispatch(v T) {
	r.mu.RLock()
	ids := make([]ID, len(r.order))
	copy(ids, r.order)
	cbs := make([]func(T) bool, len(ids))
	alives := make([]func() bool, len(ids))
	for i, id := range ids {
		e := r.entries[id]
		cbs[i] = e.cb
		alives[i] = e.alive
	}
	r.mu.RUnlock()

	var dead []ID
	for i, id := range ids {
		if alives[i] != nil && !alives[i]() {
			dead = append(dead, id)
			continue
		}
		if cbs[i] == nil {
			continue
		}
		if !cbs[i](v) {
			dead = append(dead, id)
		}
	}
	if len(dead) > 0 {
		r.prune(dead)
	}
}

func (r *Registry[T]) prune(ids []ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(ids) == 1 {
		if _, ok := r.entries[ids[0]]; !ok {
			return
		}
		delete(r.entries, ids[0])
	} else {
		for _, id := range ids {
			delete(r.entries, id)
		}
	}
	newOrder := make([]ID, 0, len(r.order))
	for _, id := range r.order {
		if _, stillThere := r.entries[id]; stillThere {
			newOrder = append(newOrder, id)
		}
	}
	r.order = newOrder
}

// Len returns the number of currently registered callbacks, live or not yet
// pruned.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
