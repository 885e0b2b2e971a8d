package reactive

import (
	"container/list"
	"strings"

	"github.com/google/btree"
)

// CollectSlice accumulates every event into a slice, in arrival order.
func CollectSlice[T any](s Stream[T]) Signal[[]T] {
	return Fold(s, []T(nil), func(acc []T, v *T) []T {
		return append(acc, *v)
	})
}

// CollectList accumulates every event into a container/list.List.
func CollectList[T any](s Stream[T]) Signal[*list.List] {
	return Fold(s, list.New(), func(acc *list.List, v *T) *list.List {
		acc.PushBack(*v)
		return acc
	})
}

// CollectOrderedSet accumulates every event into a btree.BTreeG ordered by
// less. Inserting a value already present replaces it, matching set
// semantics.
func CollectOrderedSet[T any](s Stream[T], less func(a, b T) bool) Signal[*btree.BTreeG[T]] {
	return Fold(s, btree.NewG(32, less), func(acc *btree.BTreeG[T], v *T) *btree.BTreeG[T] {
		acc.ReplaceOrInsert(*v)
		return acc
	})
}

// CollectString accumulates a stream of runes into a string.
func CollectString(s Stream[rune]) Signal[string] {
	built := Fold(s, &strings.Builder{}, func(acc *strings.Builder, v *rune) *strings.Builder {
		acc.WriteRune(*v)
		return acc
	})
	return MapSignal(built, func(b *strings.Builder) string { return b.String() })
}
