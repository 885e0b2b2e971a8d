// Package reactive is a functional-reactive core: streams of discrete
// events, signals holding a time-varying value, and a combinator algebra
// (map, filter, fold, merge, snapshot, switch, hold, …) connecting them.
//
// A Sink is the only way values enter the graph. Sink.Send propagates a
// value synchronously through every stream and signal derived from it
// before returning, in registration order. There is no scheduler and no
// timer, and the graph itself runs no background goroutine: a Send that
// arrives while a dispatch on the same sink is running (nested, or from
// another goroutine) is queued and delivered by that running dispatch, on
// its goroutine. Only the channel bridges (AsChannel, AsChannelContext,
// FromChannel, FoldChannel) start goroutines of their own.
package reactive
