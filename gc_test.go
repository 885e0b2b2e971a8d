package reactive

import (
	"runtime"
	"testing"
)

// TestDroppedHandlePrunesSubtree is the end-to-end counterpart to
// internal/registry's weak-anchor tests: it drops a downstream Stream
// handle for real, forces a GC cycle, and confirms the parent's weak
// edge (stream.go's attach/chain) actually stops driving that branch
// instead of merely exercising a manually-flipped bool.
func TestDroppedHandlePrunesSubtree(t *testing.T) {
	sink := NewSink[int]()
	var calls int

	func() {
		_ = Map(sink.Stream(), func(v *int) int {
			calls++
			return *v
		})
	}()

	runtime.GC()
	runtime.GC()

	sink.Send(1)
	if calls != 0 {
		t.Fatalf("child callback invoked %d times after its only handle was dropped, want 0", calls)
	}
}

// TestDroppedHeldSignalPrunesUpdater is the Signal-side counterpart: once a
// Hold'd Signal itself becomes unreachable, its updater registration on the
// source stream must stop running rather than leak forever.
func TestDroppedHeldSignalPrunesUpdater(t *testing.T) {
	sink := NewSink[int]()
	var calls int

	func() {
		sig := Hold(Inspect(sink.Stream(), func(*int) { calls++ }), 0)
		_ = sig
	}()

	runtime.GC()
	runtime.GC()

	sink.Send(1)
	if calls != 0 {
		t.Fatalf("inspect callback invoked %d times after the held signal was dropped, want 0", calls)
	}
}
