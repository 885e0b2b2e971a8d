package reactive

import (
	"weak"

	"github.com/samber/mo"

	"go.klb.dev/reactive/internal/registry"
)

// streamNode is the shared state behind every Stream handle pointing at the
// same place in the graph: a registration-ordered set of observers, each
// handed a Value envelope for the event.
type streamNode[T any] struct {
	reg *registry.Registry[Value[T]]
}

func newStreamNode[T any]() *streamNode[T] {
	return &streamNode[T]{reg: registry.New[Value[T]]()}
}

// Stream is a handle to a node in the reactive graph carrying discrete
// events of type T. The zero value is not usable — obtain a Stream from a
// Sink or from a combinator applied to an existing Stream.
//
// keepAlive holds strong references to every upstream node this Stream
// depends on, so an intermediate transformation node is never collected
// while a downstream handle to it is still reachable. The edge in the
// other direction — a parent's registration of a child's forwarding
// callback — is weak (see chain/attach), so dropping every downstream
// handle lets the parent stop doing work for that branch.
type Stream[T any] struct {
	node      *streamNode[T]
	keepAlive []any
}

// attach registers a weakly-anchored forwarding callback from s to an
// already-constructed child node. Used when more than one parent feeds the
// same child (Merge, MergeWith, Split).
func attach[T, U any](s Stream[T], child *streamNode[U], forward func(Value[T], *streamNode[U]) bool) {
	weakChild := weak.Make(child)
	s.node.reg.RegisterWeak(
		func() bool { return weakChild.Value() != nil },
		func(v Value[T]) bool {
			c := weakChild.Value()
			if c == nil {
				return false
			}
			return forward(v, c)
		},
	)
}

// chain is attach plus the bookkeeping to hand back a Stream[U] handle
// that keeps s (and everything upstream of it) alive.
func chain[T, U any](s Stream[T], child *streamNode[U], forward func(Value[T], *streamNode[U]) bool) Stream[U] {
	attach(s, child, forward)
	return Stream[U]{node: child, keepAlive: append([]any{s}, s.keepAlive...)}
}

// Map applies f to every event, producing a new owned value per output.
func Map[T, U any](s Stream[T], f func(*T) U) Stream[U] {
	child := newStreamNode[U]()
	return chain(s, child, func(v Value[T], c *streamNode[U]) bool {
		c.reg.Dispatch(Owned(f(v.Borrow())))
		return true
	})
}

// Filter passes through only events for which pred returns true.
func Filter[T any](s Stream[T], pred func(*T) bool) Stream[T] {
	child := newStreamNode[T]()
	return chain(s, child, func(v Value[T], c *streamNode[T]) bool {
		if pred(v.Borrow()) {
			c.reg.Dispatch(v)
		}
		return true
	})
}

// FilterMap applies f to every event and passes through only the events for
// which f returned a present Option.
func FilterMap[T, U any](s Stream[T], f func(*T) mo.Option[U]) Stream[U] {
	child := newStreamNode[U]()
	return chain(s, child, func(v Value[T], c *streamNode[U]) bool {
		if u, ok := f(v.Borrow()).Get(); ok {
			c.reg.Dispatch(Owned(u))
		}
		return true
	})
}

// FilterSome unwraps a stream of Options, dropping the absent ones.
func FilterSome[T any](s Stream[mo.Option[T]]) Stream[T] {
	return FilterMap(s, func(o *mo.Option[T]) mo.Option[T] { return *o })
}

// FilterFirst projects the left values out of a stream of Eithers.
func FilterFirst[L, R any](s Stream[mo.Either[L, R]]) Stream[L] {
	child := newStreamNode[L]()
	return chain(s, child, func(v Value[mo.Either[L, R]], c *streamNode[L]) bool {
		e := v.Borrow()
		if e.IsLeft() {
			c.reg.Dispatch(Owned(e.MustLeft()))
		}
		return true
	})
}

// FilterSecond projects the right values out of a stream of Eithers.
func FilterSecond[L, R any](s Stream[mo.Either[L, R]]) Stream[R] {
	child := newStreamNode[R]()
	return chain(s, child, func(v Value[mo.Either[L, R]], c *streamNode[R]) bool {
		e := v.Borrow()
		if e.IsRight() {
			c.reg.Dispatch(Owned(e.MustRight()))
		}
		return true
	})
}

// Split routes a stream of Eithers into two output streams without visiting
// the upstream node twice per event: a single registration on s fans out to
// whichever of the two children is still reachable.
func Split[L, R any](s Stream[mo.Either[L, R]]) (Stream[L], Stream[R]) {
	left := newStreamNode[L]()
	right := newStreamNode[R]()
	weakLeft := weak.Make(left)
	weakRight := weak.Make(right)

	s.node.reg.RegisterWeak(
		func() bool { return weakLeft.Value() != nil || weakRight.Value() != nil },
		func(v Value[mo.Either[L, R]]) bool {
			l := weakLeft.Value()
			r := weakRight.Value()
			if l == nil && r == nil {
				return false
			}
			e := v.Borrow()
			if e.IsLeft() {
				if l != nil {
					l.reg.Dispatch(Owned(e.MustLeft()))
				}
			} else if r != nil {
				r.reg.Dispatch(Owned(e.MustRight()))
			}
			return true
		},
	)

	ka := append([]any{s}, s.keepAlive...)
	return Stream[L]{node: left, keepAlive: ka}, Stream[R]{node: right, keepAlive: ka}
}

// Merge interleaves events from both streams, preserving each source's
// relative order but not imposing one between the two sources.
func Merge[T any](a, b Stream[T]) Stream[T] {
	child := newStreamNode[T]()
	forward := func(v Value[T], c *streamNode[T]) bool {
		c.reg.Dispatch(v)
		return true
	}
	attach(a, child, forward)
	attach(b, child, forward)
	ka := make([]any, 0, len(a.keepAlive)+len(b.keepAlive)+2)
	ka = append(ka, a, b)
	ka = append(ka, a.keepAlive...)
	ka = append(ka, b.keepAlive...)
	return Stream[T]{node: child, keepAlive: ka}
}

// MergeWith merges two differently-typed streams into one, via one mapping
// function per side.
func MergeWith[L, R, T any](a Stream[L], b Stream[R], fL func(*L) T, fR func(*R) T) Stream[T] {
	child := newStreamNode[T]()
	attach(a, child, func(v Value[L], c *streamNode[T]) bool {
		c.reg.Dispatch(Owned(fL(v.Borrow())))
		return true
	})
	attach(b, child, func(v Value[R], c *streamNode[T]) bool {
		c.reg.Dispatch(Owned(fR(v.Borrow())))
		return true
	})
	ka := make([]any, 0, len(a.keepAlive)+len(b.keepAlive)+2)
	ka = append(ka, a, b)
	ka = append(ka, a.keepAlive...)
	ka = append(ka, b.keepAlive...)
	return Stream[T]{node: child, keepAlive: ka}
}

// MergeWithEither is MergeWith sugar for callers who'd rather pattern-match
// on a single Either than supply two separate mapping functions.
func MergeWithEither[L, R, T any](a Stream[L], b Stream[R], f func(mo.Either[L, R]) T) Stream[T] {
	return MergeWith(a, b,
		func(l *L) T { return f(mo.Left[L, R](*l)) },
		func(r *R) T { return f(mo.Right[L, R](*r)) },
	)
}

// Inspect runs f for its side effect on every event and passes the event
// through unchanged.
func Inspect[T any](s Stream[T], f func(*T)) Stream[T] {
	child := newStreamNode[T]()
	return chain(s, child, func(v Value[T], c *streamNode[T]) bool {
		f(v.Borrow())
		c.reg.Dispatch(v)
		return true
	})
}

// Observe registers a terminal callback with no downstream Stream handle.
// Returning false from f unregisters it; otherwise it lives as long as s's
// node does.
func (s Stream[T]) Observe(f func(*T) bool) {
	s.node.reg.Register(func(v Value[T]) bool { return f(v.Borrow()) })
}

// MapN is a one-to-many Map: f is given a sender it may call zero or more
// times per input event.
func MapN[T, U any](s Stream[T], f func(*T, func(U))) Stream[U] {
	child := newStreamNode[U]()
	return chain(s, child, func(v Value[T], c *streamNode[U]) bool {
		f(v.Borrow(), func(u U) { c.reg.Dispatch(Owned(u)) })
		return true
	})
}

// Snapshot samples sig's current value each time s fires, combining it with
// the event via f.
func Snapshot[A, T, U any](sig Signal[A], s Stream[T], f func(Value[A], *T) U) Stream[U] {
	child := newStreamNode[U]()
	str := chain(s, child, func(v Value[T], c *streamNode[U]) bool {
		c.reg.Dispatch(Owned(f(Owned(sig.Sample()), v.Borrow())))
		return true
	})
	str.keepAlive = append(str.keepAlive, sig)
	return str
}
