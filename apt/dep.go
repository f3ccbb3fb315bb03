package apt

import (
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine"
)

// DepIter iterates the dependencies of one version.
type DepIter = cursor.Iter[DepView]

type depRaw struct {
	*raw
	it engine.DepIter
}

func (s *Session) depIter(parent *node, f func() engine.DepIter) *DepIter {
	it := open(s, f)
	r := &depRaw{it: it}
	r.raw = s.newRaw(parent, false, it.Release)
	return cursor.New[DepView](r)
}

func (r *depRaw) End() bool     { return !r.live() || r.it.End() }
func (r *depRaw) Next()         { r.advance(r.it.Next) }
func (r *depRaw) View() DepView { return DepView{r: r, gen: r.gen} }

// DepView is a borrowed view of one dependency. Alternatives ("a | b") are
// reported as consecutive dependencies.
type DepView struct {
	r   *depRaw
	gen uint64
}

func (v DepView) it() engine.DepIter {
	v.r.check(v.gen)
	return v.r.it
}

// DepType names the relationship: Depends, PreDepends, Recommends, ...
func (v DepView) DepType() string { return v.r.s.required("dependency type", v.it().DepType()) }

// CompType is the version operator (<<, <=, =, >=, >>), absent for
// unversioned dependencies.
func (v DepView) CompType() (string, bool) {
	return v.r.s.optional("comparison", v.it().CompType())
}

func (v DepView) TargetVersion() (string, bool) {
	return v.r.s.optional("target version", v.it().TargetVer())
}

// TargetPackage opens a package cursor at the dependency's target, or an
// exhausted one when the engine does not know the target.
func (v DepView) TargetPackage() *PkgIter {
	it := v.it()
	return v.r.s.pkgIter(v.r.n, false, it.TargetPkg)
}
