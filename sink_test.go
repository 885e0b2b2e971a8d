package reactive

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"
)

// TestSendReentrant confirms a Send issued from inside an observer callback
// is queued and drained breadth-first, in the order the nested Sends
// occurred, rather than recursing into another full dispatch before the
// current one returns.
func TestSendReentrant(t *testing.T) {
	sink := NewSink[int]()
	var order []int
	sink.Stream().Observe(func(v *int) bool {
		order = append(order, *v)
		if *v == 1 {
			sink.Send(2)
			sink.Send(3)
		}
		return true
	})

	sink.Send(1)

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// TestSendPanicResetsDispatching confirms a panic unwinding out of Send
// still clears the dispatching flag, so the sink is usable again afterward
// instead of permanently queuing every future Send.
func TestSendPanicResetsDispatching(t *testing.T) {
	sink := NewSink[int]()
	var seen []int
	sink.Stream().Observe(func(v *int) bool {
		seen = append(seen, *v)
		if *v == 1 {
			panic("boom")
		}
		return true
	})

	func() {
		defer func() { recover() }()
		sink.Send(1)
	}()

	sink.Send(2)

	want := []int{1, 2}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

// TestStreamThreading confirms concurrent Sends from multiple goroutines are
// each delivered exactly once, with the fold over them commutative
// regardless of arrival order.
func TestStreamThreading(t *testing.T) {
	sink := NewSink[int]()
	sum := Fold(sink.Stream(), 0, func(acc int, v *int) int { return acc + *v })

	var g errgroup.Group
	const n = 50
	for i := 1; i <= n; i++ {
		i := i
		g.Go(func() error {
			sink.Send(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup.Wait() = %v", err)
	}

	want := n * (n + 1) / 2
	if got := sum.Sample(); got != want {
		t.Fatalf("sum.Sample() = %d, want %d", got, want)
	}
}

// TestMerge confirms Merge interleaves two sources into a single stream
// without dropping events from either side.
func TestMerge(t *testing.T) {
	a := NewSink[int]()
	b := NewSink[int]()
	merged := CollectSlice(Merge(a.Stream(), b.Stream()))

	a.Send(1)
	b.Send(2)
	a.Send(3)

	got := merged.Sample()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestHoldIf confirms HoldIf only updates the signal for events that
// satisfy the predicate.
func TestHoldIf(t *testing.T) {
	sink := NewSink[int]()
	held := HoldIf(sink.Stream(), 0, func(v *int) bool { return *v%2 == 0 })

	sink.Send(1)
	if got := held.Sample(); got != 0 {
		t.Fatalf("held.Sample() = %d, want 0 (odd event ignored)", got)
	}
	sink.Send(4)
	if got := held.Sample(); got != 4 {
		t.Fatalf("held.Sample() = %d, want 4", got)
	}
}

// TestAsChannel confirms every Send is eventually observable on the
// returned channel, in order.
func TestAsChannel(t *testing.T) {
	sink := NewSink[int]()
	ch := sink.Stream().AsChannel()

	go func() {
		for i := 1; i <= 3; i++ {
			sink.Send(i)
		}
	}()

	for want := 1; want <= 3; want++ {
		if got := <-ch; got != want {
			t.Fatalf("received %d, want %d", got, want)
		}
	}
}

// TestAsChannelContextCancel confirms cancelling the context retires the
// observer and closes the channel, even though a bare Go channel can't
// signal a dropped receiver on its own.
func TestAsChannelContextCancel(t *testing.T) {
	sink := NewSink[int]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := AsChannelContext(ctx, sink.Stream())

	sink.Send(1)
	if got := <-ch; got != 1 {
		t.Fatalf("received %d, want 1", got)
	}

	cancel()

	for i := 0; i < 100; i++ {
		if sink.Stream().node.reg.Len() == 0 {
			break
		}
		sink.Send(99)
	}
	if n := sink.Stream().node.reg.Len(); n != 0 {
		t.Fatalf("observer still registered after cancel, reg.Len() = %d, want 0", n)
	}

	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after cancel and observer retirement")
	}
}

// TestAsBoundedChannelDrops confirms a full bounded channel drops an event
// instead of blocking Send.
func TestAsBoundedChannelDrops(t *testing.T) {
	sink := NewSink[int]()
	var dropped []int
	ch := AsBoundedChannel(sink.Stream(), 1, WithDropHook(func(v int) { dropped = append(dropped, v) }))

	sink.Send(1) // fills the buffer
	sink.Send(2) // buffer full, dropped
	sink.Send(3) // buffer full, dropped

	if got := <-ch; got != 1 {
		t.Fatalf("received %d, want 1", got)
	}
	if len(dropped) != 2 || dropped[0] != 2 || dropped[1] != 3 {
		t.Fatalf("dropped = %v, want [2 3]", dropped)
	}
}

// TestFromChannel confirms a signal fed from a Go channel keeps its last
// value once the channel is closed.
func TestFromChannel(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	sig := FromChannel(0, ch)

	var last int
	for i := 0; i < 100; i++ {
		last = sig.Sample()
		if last == 3 {
			break
		}
	}
	if last != 3 {
		t.Fatalf("sig.Sample() settled at %d, want 3", last)
	}
}
