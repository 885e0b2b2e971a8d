package reactive

import (
	"iter"
	"sync"
)

// sinkCore is the state shared by every clone of a Sink: the root stream
// node, and the reentrancy protocol that keeps a Send called from inside an
// observer callback from recursing into the dispatch loop.
type sinkCore[T any] struct {
	mu          sync.Mutex
	dispatching bool
	pending     []T
	node        *streamNode[T]
}

// Sink is the caller-facing entry point into a reactive graph: Send pushes
// a value, which propagates synchronously through every stream and signal
// derived from Sink.Stream() before Send returns, unless a dispatch on this
// sink is already running (see Send). A Sink value is a cheap,
// shareable handle — every copy of it refers to the same underlying node
// and dispatch loop.
type Sink[T any] struct {
	core *sinkCore[T]
}

// NewSink returns a new, empty Sink.
func NewSink[T any]() Sink[T] {
	return Sink[T]{core: &sinkCore[T]{node: newStreamNode[T]()}}
}

// Stream returns a Stream handle rooted at this sink.
func (sk Sink[T]) Stream() Stream[T] {
	return Stream[T]{node: sk.core.node, keepAlive: []any{sk}}
}

// Send pushes v into the graph. If Send is called again — directly or
// transitively — from within an observer reached by this same call, the
// nested value is queued and dispatched after the current propagation
// finishes, in the order the nested Sends occurred, instead of recursing.
// A Send from another goroutine that arrives while a dispatch is running is
// handled the same way: its value is queued, Send returns without waiting,
// and the running dispatch delivers the value on its own goroutine.
func (sk Sink[T]) Send(v T) {
	c := sk.core

	c.mu.Lock()
	if c.dispatching {
		c.pending = append(c.pending, v)
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	c.mu.Unlock()

	// guard re-panics after logging, so a panicking observer unwinds straight
	// through this function. The defer is what keeps that from wedging the
	// sink: without it, dispatching would stay true forever and every future
	// Send would just queue and never dispatch. On a normal return the loop
	// below clears dispatching itself, under the same lock that sees pending
	// empty, so a Send from another goroutine is never queued after that last
	// check and then dropped.
	finished := false
	defer func() {
		if finished {
			return
		}
		c.mu.Lock()
		c.dispatching = false
		c.pending = nil
		c.mu.Unlock()
	}()

	guard(func() { c.node.reg.Dispatch(Owned(v)) })

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.dispatching = false
			finished = true
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		guard(func() { c.node.reg.Dispatch(Owned(next)) })
	}
}

// Feed sends every value produced by seq, in order.
func (sk Sink[T]) Feed(seq iter.Seq[T]) {
	for v := range seq {
		sk.Send(v)
	}
}

// FeedSlice sends every element of items, in order.
func FeedSlice[T any](sk Sink[T], items []T) {
	for _, v := range items {
		sk.Send(v)
	}
}
