// Package cursor turns stateful, mutate-in-place engine cursors into safe,
// single-pass, lazily evaluated sequences.
//
// # The raw protocol
//
// An engine cursor (Raw) is a position inside engine-owned memory. It has
// four operations:
//
//   - End reports whether there is no current item
//   - Next moves to the following item (undefined at end)
//   - View returns a borrowed view of the current item (undefined at end)
//   - Release returns the cursor to the engine
//
// A freshly opened cursor is already positioned on its first item, so a
// conventional "call next, then read" loop would skip it. Iter normalizes
// this into a pull model with a single Step entry point:
//
//	it := cursor.New(raw)
//	defer it.Close()
//	for v, ok := it.Step(); ok; v, ok = it.Step() {
//	    use(v)
//	}
//
// # Borrowed views
//
// A view returned by Step is only valid until the next Step, Close, or the
// end of the enclosing range loop body. Copy what you need into owned values
// before moving on. Combinators such as Map and FilterMap apply their
// function before the cursor advances, which makes them the preferred way to
// extract data:
//
//	names := slices.Collect(cursor.Map(it, func(v PkgView) string {
//	    return v.Name()
//	}))
//
// # Release
//
// Iter calls Release exactly once: on exhaustion, on Close, when a range loop
// over Seq ends early, and when a panic unwinds through such a loop.
package cursor
