package reactive

import (
	"sync"
	"weak"
)

// Signal is a time-varying value, sampled on demand rather than pushed.
// Unlike Stream, Signal never runs callbacks on its own: Sample/SampleWith
// compute or read the current value synchronously on the caller's
// goroutine, with no notion of "change events".
//
// The zero value is not usable — obtain a Signal from ConstantSignal,
// FromFn, Hold, Fold, or a combinator applied to an existing Signal.
type Signal[T any] struct {
	sample     func() T
	sampleWith func(func(*T))
	keepAlive  []any
}

// Sample returns the signal's current value, copying it out.
func (sig Signal[T]) Sample() T {
	return sig.sample()
}

// SampleWith calls f with a borrowed read of sig's current value and
// returns whatever f returns. For a held signal f reads the slot in place,
// under its read lock, with no copy; for a computed signal the value is
// sampled into a local and f gets a pointer to that, since every sample
// already materializes a fresh value.
func SampleWith[T, R any](sig Signal[T], f func(*T) R) R {
	var out R
	if sig.sampleWith != nil {
		sig.sampleWith(func(p *T) { out = f(p) })
		return out
	}
	v := sig.sample()
	return f(&v)
}

// ConstantSignal returns a Signal whose value never changes.
func ConstantSignal[T any](v T) Signal[T] {
	return Signal[T]{sample: func() T { return v }}
}

// FromFn returns a computed Signal: every Sample calls f fresh, with no
// caching across calls.
func FromFn[T any](f func() T) Signal[T] {
	return Signal[T]{sample: f}
}

// MapSignal returns a computed Signal that samples sig and applies f on
// every Sample of the result — no caching, same as FromFn.
func MapSignal[T, U any](sig Signal[T], f func(T) U) Signal[U] {
	out := Signal[U]{sample: func() U { return f(sig.Sample()) }}
	out.keepAlive = append([]any{sig}, sig.keepAlive...)
	return out
}

// Switch flattens a signal-of-signal: sampling it samples the outer signal
// to find the current inner signal, then samples that. There is no event
// propagation involved — like every Signal operation, this is purely
// pull-based.
func Switch[T any](sig Signal[Signal[T]]) Signal[T] {
	out := Signal[T]{sample: func() T { return sig.Sample().Sample() }}
	out.keepAlive = append([]any{sig}, sig.keepAlive...)
	return out
}

// heldState is the mutable slot backing Hold, HoldIf, Fold, FoldClone,
// FromChannel and FoldChannel: an RWMutex-guarded value updated from a
// Stream's or channel's dispatch, read by Sample/SampleWith.
type heldState[T any] struct {
	mu    sync.RWMutex
	value T
}

func newHeld[T any](init T) (*heldState[T], Signal[T]) {
	hs := &heldState[T]{value: init}
	sig := Signal[T]{
		sample: func() T {
			hs.mu.RLock()
			defer hs.mu.RUnlock()
			return hs.value
		},
		sampleWith: func(f func(*T)) {
			hs.mu.RLock()
			defer hs.mu.RUnlock()
			f(&hs.value)
		},
	}
	return hs, sig
}

// registerHeldUpdater wires s into hs with weak pruning keyed to hs's own
// liveness: once the Signal handle wrapping hs is unreachable, the next
// dispatch on s drops the registration instead of recomputing forever.
func registerHeldUpdater[T, Acc any](s Stream[T], hs *heldState[Acc], update func(*heldState[Acc], Value[T])) {
	weakHS := weak.Make(hs)
	s.node.reg.RegisterWeak(
		func() bool { return weakHS.Value() != nil },
		func(v Value[T]) bool {
			h := weakHS.Value()
			if h == nil {
				return false
			}
			update(h, v)
			return true
		},
	)
}

// Hold returns a Signal that starts at init and takes on each event's
// value (IntoOwned'd) as it arrives.
func Hold[T any](s Stream[T], init T) Signal[T] {
	hs, sig := newHeld(init)
	registerHeldUpdater(s, hs, func(h *heldState[T], v Value[T]) {
		nv := v.IntoOwned()
		h.mu.Lock()
		h.value = nv
		h.mu.Unlock()
	})
	sig.keepAlive = append([]any{s}, s.keepAlive...)
	return sig
}

// HoldIf is Hold, but an event only updates the signal when pred returns
// true for it.
func HoldIf[T any](s Stream[T], init T, pred func(*T) bool) Signal[T] {
	hs, sig := newHeld(init)
	registerHeldUpdater(s, hs, func(h *heldState[T], v Value[T]) {
		if !pred(v.Borrow()) {
			return
		}
		nv := v.IntoOwned()
		h.mu.Lock()
		h.value = nv
		h.mu.Unlock()
	})
	sig.keepAlive = append([]any{s}, s.keepAlive...)
	return sig
}

// Fold returns a held Signal whose value is the left fold of s's events
// over f, starting from init. The accumulator is moved through f by plain
// Go value assignment — never by calling a user-defined Clone method — so
// an accumulator type that would panic on such a call is never invoked
// that way by Fold.
func Fold[T, Acc any](s Stream[T], init Acc, f func(Acc, *T) Acc) Signal[Acc] {
	hs, sig := newHeld(init)
	registerHeldUpdater(s, hs, func(h *heldState[Acc], v Value[T]) {
		h.mu.RLock()
		cur := h.value
		h.mu.RUnlock()
		next := f(cur, v.Borrow())
		h.mu.Lock()
		h.value = next
		h.mu.Unlock()
	})
	sig.keepAlive = append([]any{s}, s.keepAlive...)
	return sig
}

// FoldClone is Fold with a Cow-shaped callback: f receives the event as a
// Value instead of a bare pointer, so it can choose IntoOwned when it needs
// to retain the event itself (e.g. pushing it into a collection). In Go this
// is operationally identical to Fold — parameter passing already copies Acc
// by value, so there is no separate "clone before mutate" step to elide —
// the two entry points exist so Collect-style callers can work with Value
// directly instead of reaching for IntoOwned themselves.
func FoldClone[T, Acc any](s Stream[T], init Acc, f func(Acc, Value[T]) Acc) Signal[Acc] {
	hs, sig := newHeld(init)
	registerHeldUpdater(s, hs, func(h *heldState[Acc], v Value[T]) {
		h.mu.RLock()
		cur := h.value
		h.mu.RUnlock()
		next := f(cur, v)
		h.mu.Lock()
		h.value = next
		h.mu.Unlock()
	})
	sig.keepAlive = append([]any{s}, s.keepAlive...)
	return sig
}

// cyclicCell is the backing state for Cyclic: f is invoked at most once, on
// the first Sample, so f may hand itself a Signal that recursively reaches
// back into this same cell.
type cyclicCell[T any] struct {
	mu    sync.Mutex
	once  sync.Once
	inner Signal[T]
}

// Cyclic builds a self-referential Signal. f receives a handle to the
// signal being constructed (valid to store and sample later, but sampling
// it before f has returned panics, because the real signal does not exist
// yet) and must return the real signal. The real signal is built lazily, on the
// first call to Sample.
func Cyclic[T any](f func(self Signal[T]) Signal[T]) Signal[T] {
	cell := &cyclicCell[T]{}
	self := Signal[T]{
		sample: func() T {
			cell.mu.Lock()
			inner := cell.inner
			cell.mu.Unlock()
			return inner.Sample()
		},
	}
	return Signal[T]{
		sample: func() T {
			cell.once.Do(func() {
				built := f(self)
				cell.mu.Lock()
				cell.inner = built
				cell.mu.Unlock()
			})
			cell.mu.Lock()
			inner := cell.inner
			cell.mu.Unlock()
			return inner.Sample()
		},
	}
}
