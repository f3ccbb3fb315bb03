package apt

import (
	"unicode/utf8"

	"github.com/joshuapare/aptkit/engine"
)

// Session is one checkout of the cache: it holds the exclusive lock from
// Begin until Close. Every cursor opened through a session is released by
// Close at the latest.
//
// A Session must not be used from more than one goroutine.
type Session struct {
	c      *Cache
	eng    engine.Cache
	root   *node
	closed bool
	err    error
}

func newSession(c *Cache, eng engine.Cache) *Session {
	return &Session{c: c, eng: eng, root: newNode(nil, nil)}
}

// Close releases every cursor still open in the session, then the lock.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.root.releaseChildren()
	s.closed = true
	s.c.checkin()
	return nil
}

// Err returns the first sticky error recorded while reading views: text the
// engine returned that is not valid UTF-8, or a required field it did not
// return at all.
func (s *Session) Err() error { return s.err }

// Packages opens a cursor over every package, in engine order.
func (s *Session) Packages() (*PkgIter, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.pkgIter(s.root, false, func() engine.PkgIter { return s.eng.PkgBegin() }), nil
}

// FindByName opens a cursor positioned at the package called name, or an
// exhausted one. name may carry an ":arch" qualifier; without one the native
// architecture is preferred.
func (s *Session) FindByName(name string) (*PkgIter, error) {
	if err := checkArg("package name", name); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, ErrClosed
	}
	return s.pkgIter(s.root, false, func() engine.PkgIter { return s.eng.FindPkg(name) }), nil
}

// FindByNameArch is FindByName for an explicit architecture.
func (s *Session) FindByNameArch(name, arch string) (*PkgIter, error) {
	if err := checkArg("package name", name); err != nil {
		return nil, err
	}
	if err := checkArg("architecture", arch); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, ErrClosed
	}
	return s.pkgIter(s.root, false, func() engine.PkgIter { return s.eng.FindPkgArch(name, arch) }), nil
}

// CompareVersions orders two version strings with the engine's rules and
// returns -1, 0 or +1.
func (s *Session) CompareVersions(a, b string) (int, error) {
	if err := checkArg("version", a); err != nil {
		return 0, err
	}
	if err := checkArg("version", b); err != nil {
		return 0, err
	}
	if s.closed {
		return 0, ErrClosed
	}
	var n int
	s.c.guard("compare versions", func() { n = s.eng.CompareVersions(a, b) })
	switch {
	case n < 0:
		return -1, nil
	case n > 0:
		return 1, nil
	default:
		return 0, nil
	}
}

func (s *Session) fail(err error) {
	if s.err == nil {
		s.err = err
		s.c.log.Warn("engine returned unusable data", "error", err)
	}
}

// required decodes a field the engine must always return.
func (s *Session) required(field string, b []byte) string {
	if b == nil {
		s.fail(&Error{Kind: ErrKindInternal, Msg: "engine returned no " + field})
		return ""
	}
	v, _ := s.optional(field, b)
	return v
}

// optional decodes a field the engine may leave out.
func (s *Session) optional(field string, b []byte) (string, bool) {
	if b == nil {
		return "", false
	}
	if !utf8.Valid(b) {
		s.fail(&EncodingError{Field: field, Raw: append([]byte(nil), b...)})
		return "", false
	}
	return string(b), true
}

// node tracks an open engine cursor and the cursors opened from its current
// position. Releasing a node releases its children first.
type node struct {
	parent   *node
	children map[*node]struct{}
	release  func()
	done     bool
}

func newNode(parent *node, release func()) *node {
	n := &node{parent: parent, release: release}
	if parent != nil {
		if parent.children == nil {
			parent.children = make(map[*node]struct{})
		}
		parent.children[n] = struct{}{}
	}
	return n
}

func (n *node) releaseChildren() {
	for child := range n.children {
		child.releaseAll()
	}
}

func (n *node) releaseAll() {
	if n.done {
		return
	}
	n.releaseChildren()
	n.done = true
	if n.release != nil {
		n.release()
	}
	if n.parent != nil {
		delete(n.parent.children, n)
	}
}

// raw is the state shared by the cursor.Raw implementations of every level.
type raw struct {
	s     *Session
	n     *node
	gen   uint64
	owner bool // a root cursor that owns its session
}

func (s *Session) newRaw(parent *node, owner bool, release func()) *raw {
	r := &raw{s: s, owner: owner}
	r.n = newNode(parent, func() {
		r.gen++
		if !s.c.Poisoned() {
			s.c.guard("release cursor", release)
		}
	})
	return r
}

func (r *raw) live() bool { return !r.n.done && !r.s.closed }

// check panics with ErrStaleView unless gen is the current position.
func (r *raw) check(gen uint64) {
	if r.n.done || gen != r.gen {
		panic(ErrStaleView)
	}
}

// advance moves the engine cursor, releasing the cursors opened from the
// old position first.
func (r *raw) advance(next func()) {
	r.n.releaseChildren()
	r.gen++
	r.s.c.guard("advance cursor", next)
}

func (r *raw) Release() {
	r.n.releaseAll()
	if r.owner {
		_ = r.s.Close()
	}
}

func (r *raw) Abort() { r.s.c.poison("panic during traversal") }

func (r *raw) Err() error { return r.s.err }

// open runs an engine call that creates a cursor, under the poison guard.
func open[T any](s *Session, f func() T) T {
	var it T
	s.c.guard("open cursor", func() { it = f() })
	return it
}
