package cursor

import "iter"

// Raw is the contract every engine cursor implements.
//
// A Raw is created already positioned on its first item (or at end). Next and
// View must only be called while End reports false. Release returns the
// underlying engine resource; Iter calls it exactly once.
type Raw[V any] interface {
	End() bool
	Next()
	View() V
	Release()
}

// Aborter is implemented by raw cursors that need to know when a traversal was
// torn down by a panic rather than finished or abandoned normally.
type Aborter interface {
	Abort()
}

// ErrReporter is implemented by raw cursors that record a sticky error while
// their views are read (for example undecodable engine text).
type ErrReporter interface {
	Err() error
}

type state uint8

const (
	notStarted state = iota
	positioned
	exhausted
)

func (s state) String() string {
	switch s {
	case notStarted:
		return "not-started"
	case positioned:
		return "positioned"
	case exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Iter is a single-pass, lazily evaluated sequence over a Raw cursor.
//
// Iter owns its raw cursor. The zero value is not usable; construct with New.
// Iter is not safe for concurrent use.
type Iter[V any] struct {
	raw    Raw[V]
	state  state
	closed bool
}

// New wraps raw. The caller hands over ownership: raw is released by the
// returned Iter and must not be released elsewhere.
func New[V any](raw Raw[V]) *Iter[V] {
	return &Iter[V]{raw: raw}
}

// Step advances to the next item and returns a view of it. The first call
// returns the item the raw cursor was created on. The view is valid until
// the next call to Step or Close.
//
// Once Step reports false the iterator is exhausted and its cursor has been
// released.
func (it *Iter[V]) Step() (V, bool) {
	var zero V
	if it.closed || it.state == exhausted {
		return zero, false
	}
	if it.raw.End() {
		it.finish()
		return zero, false
	}
	if it.state == positioned {
		it.raw.Next()
	}
	it.state = positioned
	// the end marker is never surfaced as an item
	if it.raw.End() {
		it.finish()
		return zero, false
	}
	return it.raw.View(), true
}

func (it *Iter[V]) finish() {
	it.state = exhausted
	it.Close()
}

// Close releases the underlying cursor. It is safe to call more than once and
// after exhaustion.
func (it *Iter[V]) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.state = exhausted
	it.raw.Release()
}

// Closed reports whether the underlying cursor has been released.
func (it *Iter[V]) Closed() bool { return it.closed }

// Empty reports whether the iterator has no current item. It does not advance.
func (it *Iter[V]) Empty() bool {
	return it.closed || it.state == exhausted || it.raw.End()
}

// Peek returns a view of the current item without advancing. For an iterator
// that has not been stepped yet this is the item the next Step will return.
func (it *Iter[V]) Peek() (V, bool) {
	var zero V
	if it.Empty() {
		return zero, false
	}
	return it.raw.View(), true
}

// Err returns the first error recorded by the raw cursor while its views were
// read, if the cursor reports errors at all.
func (it *Iter[V]) Err() error {
	if r, ok := it.raw.(ErrReporter); ok {
		return r.Err()
	}
	return nil
}

// Seq returns the remaining items as a range-over-func sequence. Ranging
// consumes the iterator: the cursor is released when the loop ends, whether
// by exhaustion, break, return, or panic.
func (it *Iter[V]) Seq() iter.Seq[V] {
	return func(yield func(V) bool) {
		finished := false
		defer func() {
			if !finished && !it.closed {
				if a, ok := it.raw.(Aborter); ok {
					a.Abort()
				}
			}
			it.Close()
		}()
		for {
			v, ok := it.Step()
			if !ok || !yield(v) {
				break
			}
		}
		finished = true
	}
}

// Count drains the iterator and returns the number of items not yet
// returned by Step. Views are never materialized.
func (it *Iter[V]) Count() int {
	defer it.Close()
	if it.closed || it.state == exhausted || it.raw.End() {
		return 0
	}
	if it.state == positioned {
		// the current item was already handed out
		it.raw.Next()
	}
	n := 0
	for !it.raw.End() {
		n++
		it.raw.Next()
	}
	it.state = exhausted
	return n
}

// Any reports whether pred holds for some remaining item. It stops at the
// first match and consumes the iterator.
func (it *Iter[V]) Any(pred func(V) bool) bool {
	for v := range it.Seq() {
		if pred(v) {
			return true
		}
	}
	return false
}

// All reports whether pred holds for every remaining item. It stops at the
// first mismatch and consumes the iterator.
func (it *Iter[V]) All(pred func(V) bool) bool {
	for v := range it.Seq() {
		if !pred(v) {
			return false
		}
	}
	return true
}

// Walk calls fn for each remaining item. A non-nil error from fn stops the
// walk and is returned. Walk consumes the iterator.
func (it *Iter[V]) Walk(fn func(V) error) error {
	for v := range it.Seq() {
		if err := fn(v); err != nil {
			return err
		}
	}
	return it.Err()
}
