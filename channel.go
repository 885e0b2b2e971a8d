package reactive

import (
	"context"
	"log/slog"
	"sync"
)

// boundedChannelConfig tunes AsBoundedChannel. Zero value: no drop hook.
type boundedChannelConfig[T any] struct {
	onDrop func(T)
}

// WithDropHook calls f, in addition to the package's own slog.Warn, for
// every event AsBoundedChannel drops because the receiver fell behind.
func WithDropHook[T any](f func(T)) Option[boundedChannelConfig[T]] {
	return func(c *boundedChannelConfig[T]) { c.onDrop = f }
}

// AsChannel returns an unbounded channel fed from s: every event is
// delivered, with no event ever dropped for flow-control reasons. Because
// native Go channels are always bounded, unboundedness is implemented with
// a background goroutine draining an internal queue — the queue, not the
// channel, is where back-pressure from a slow receiver accumulates.
//
// A bare <-chan T gives the sender no way to detect that the receiver is
// gone, so unlike the rest of the graph's observers, this one does not
// self-retire when the channel stops being read: the observer and its
// drain goroutine run for as long as s does. Use AsChannelContext and
// cancel ctx to retire both explicitly.
func (s Stream[T]) AsChannel() <-chan T {
	return AsChannelContext(context.Background(), s)
}

// AsChannelContext is AsChannel with an explicit cancellation handle: once
// ctx is done, the observer unregisters on its next dispatch and the drain
// goroutine exits and closes the returned channel, even if nobody is
// reading from it.
func AsChannelContext[T any](ctx context.Context, s Stream[T]) <-chan T {
	out := make(chan T)
	var mu sync.Mutex
	var queue []T
	wake := make(chan struct{}, 1)

	s.Observe(func(v *T) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		mu.Lock()
		queue = append(queue, *v)
		mu.Unlock()
		select {
		case wake <- struct{}{}:
		default:
		}
		return true
	})

	go func() {
		defer close(out)
		for {
			mu.Lock()
			if len(queue) == 0 {
				mu.Unlock()
				select {
				case <-wake:
					continue
				case <-ctx.Done():
					return
				}
			}
			v := queue[0]
			queue = queue[1:]
			mu.Unlock()
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// AsBoundedChannel returns a channel of the given capacity fed from s. When
// the channel's buffer is full, the event is dropped rather than blocking
// the sender — the same select{default:}-and-warn idiom the wider codebase
// uses for any send-side fan-out that must never block the caller.
func AsBoundedChannel[T any](s Stream[T], capacity int, opts ...Option[boundedChannelConfig[T]]) <-chan T {
	cfg := apply(&boundedChannelConfig[T]{}, opts)
	out := make(chan T, capacity)
	s.Observe(func(v *T) bool {
		select {
		case out <- *v:
		default:
			if slog.Default().Enabled(context.Background(), slog.LevelWarn) {
				slog.Warn("reactive: bounded channel full, dropping event")
			}
			if cfg.onDrop != nil {
				cfg.onDrop(*v)
			}
		}
		return true
	})
	return out
}

// FromChannel returns a Signal that starts at init and takes on each value
// received from rx. When rx is closed the signal keeps its last value
// rather than exposing any "closed" state.
func FromChannel[T any](init T, rx <-chan T) Signal[T] {
	hs, sig := newHeld(init)
	go func() {
		for v := range rx {
			hs.mu.Lock()
			hs.value = v
			hs.mu.Unlock()
		}
	}()
	return sig
}

// FoldChannel is FromChannel's Fold counterpart: the signal is the left
// fold, over f, of every value received from rx.
func FoldChannel[T, Acc any](init Acc, rx <-chan T, f func(Acc, T) Acc) Signal[Acc] {
	hs, sig := newHeld(init)
	go func() {
		for v := range rx {
			hs.mu.RLock()
			cur := hs.value
			hs.mu.RUnlock()
			next := f(cur, v)
			hs.mu.Lock()
			hs.value = next
			hs.mu.Unlock()
		}
	}()
	return sig
}
