// Package topk keeps the K best items seen so far.
package topk

import (
	"container/heap"
	"sort"
)

// Bounded retains at most k items, best first by the better ordering.
// It is not safe for concurrent use.
type Bounded[T any] struct {
	k    int
	h    *worstFirst[T]
	seen int
}

// New returns a Bounded keeping k items. better(a, b) reports whether a
// ranks ahead of b; it must be a strict ordering.
func New[T any](k int, better func(a, b T) bool) *Bounded[T] {
	if k < 1 {
		k = 1
	}
	return &Bounded[T]{k: k, h: &worstFirst[T]{better: better}}
}

// Push offers v. It reports whether v was retained.
func (b *Bounded[T]) Push(v T) bool {
	b.seen++
	if b.h.Len() < b.k {
		heap.Push(b.h, v)
		return true
	}
	if !b.h.better(v, b.h.items[0]) {
		return false
	}
	b.h.items[0] = v
	heap.Fix(b.h, 0)
	return true
}

// Len returns the number of retained items.
func (b *Bounded[T]) Len() int { return b.h.Len() }

// Seen returns how many items were offered.
func (b *Bounded[T]) Seen() int { return b.seen }

// Sorted returns the retained items, best first. The Bounded is unchanged.
func (b *Bounded[T]) Sorted() []T {
	out := append([]T(nil), b.h.items...)
	sort.SliceStable(out, func(i, j int) bool { return b.h.better(out[i], out[j]) })
	return out
}

// Reset drops all retained items.
func (b *Bounded[T]) Reset() {
	b.h.items = b.h.items[:0]
	b.seen = 0
}

// worstFirst is a heap whose root is the worst retained item.
type worstFirst[T any] struct {
	items  []T
	better func(a, b T) bool
}

func (w *worstFirst[T]) Len() int           { return len(w.items) }
func (w *worstFirst[T]) Less(i, j int) bool { return w.better(w.items[j], w.items[i]) }
func (w *worstFirst[T]) Swap(i, j int)      { w.items[i], w.items[j] = w.items[j], w.items[i] }
func (w *worstFirst[T]) Push(x any)         { w.items = append(w.items, x.(T)) }
func (w *worstFirst[T]) Pop() any {
	n := len(w.items)
	v := w.items[n-1]
	w.items = w.items[:n-1]
	return v
}
