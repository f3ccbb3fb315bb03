package cursor

import "iter"

// Map returns a lazy sequence of f applied to each remaining item of it.
// f runs before the cursor advances, so it may read the view freely but must
// not retain it. Ranging over the result consumes it.
func Map[V, B any](it *Iter[V], f func(V) B) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range it.Seq() {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// FilterMap is Map for functions that may produce nothing. Items for which f
// reports false are skipped.
func FilterMap[V, B any](it *Iter[V], f func(V) (B, bool)) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range it.Seq() {
			b, ok := f(v)
			if !ok {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// CountSeq drains seq and returns the number of items it produced.
func CountSeq[B any](seq iter.Seq[B]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// First returns the first item of seq and stops it.
func First[B any](seq iter.Seq[B]) (B, bool) {
	for b := range seq {
		return b, true
	}
	var zero B
	return zero, false
}
