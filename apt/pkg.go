package apt

import (
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine"
)

// PkgIter iterates packages.
type PkgIter = cursor.Iter[PkgView]

type pkgRaw struct {
	*raw
	it engine.PkgIter
}

func (s *Session) pkgIter(parent *node, owner bool, f func() engine.PkgIter) *PkgIter {
	it := open(s, f)
	r := &pkgRaw{it: it}
	r.raw = s.newRaw(parent, owner, it.Release)
	return cursor.New[PkgView](r)
}

func (r *pkgRaw) End() bool { return !r.live() || r.it.End() }
func (r *pkgRaw) Next()     { r.advance(r.it.Next) }

func (r *pkgRaw) View() PkgView { return PkgView{r: r, gen: r.gen} }

// PkgView is a borrowed view of the package under a cursor. It is valid
// until that cursor moves; reading it afterwards panics with ErrStaleView.
type PkgView struct {
	r   *pkgRaw
	gen uint64
}

func (v PkgView) it() engine.PkgIter {
	v.r.check(v.gen)
	return v.r.it
}

// Name returns the package name.
func (v PkgView) Name() string { return v.r.s.required("package name", v.it().Name()) }

// Arch returns the package architecture.
func (v PkgView) Arch() string { return v.r.s.required("package architecture", v.it().Arch()) }

// FullName returns "name:arch".
func (v PkgView) FullName() string { return v.Name() + ":" + v.Arch() }

// CurrentVersion returns the installed version, if any.
func (v PkgView) CurrentVersion() (string, bool) {
	return v.r.s.optional("current version", v.it().CurrentVersion())
}

// CandidateVersion returns the version the policy would install, if any.
func (v PkgView) CandidateVersion() (string, bool) {
	return v.r.s.optional("candidate version", v.it().CandidateVersion())
}

// PrettyPrint returns the engine's one-line summary of the package.
func (v PkgView) PrettyPrint() string {
	return v.r.s.required("package summary", v.it().Pretty())
}

// Versions opens a cursor over the package's versions, highest first. It is
// released when this view's cursor moves.
func (v PkgView) Versions() *VerIter {
	it := v.it()
	return v.r.s.verIter(v.r.n, it.Versions)
}
