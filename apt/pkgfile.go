package apt

import (
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine"
)

// PkgFileIter iterates index files.
type PkgFileIter = cursor.Iter[PkgFileView]

type pkgFileRaw struct {
	*raw
	it engine.PkgFileIter
}

func (s *Session) pkgFileIter(parent *node, f func() engine.PkgFileIter) *PkgFileIter {
	it := open(s, f)
	r := &pkgFileRaw{it: it}
	r.raw = s.newRaw(parent, false, it.Release)
	return cursor.New[PkgFileView](r)
}

func (r *pkgFileRaw) End() bool         { return !r.live() || r.it.End() }
func (r *pkgFileRaw) Next()             { r.advance(r.it.Next) }
func (r *pkgFileRaw) View() PkgFileView { return PkgFileView{r: r, gen: r.gen} }

// PkgFileView is a borrowed view of an index file and the release metadata
// that came with it.
type PkgFileView struct {
	r   *pkgFileRaw
	gen uint64
}

func (v PkgFileView) it() engine.PkgFileIter {
	v.r.check(v.gen)
	return v.r.it
}

func (v PkgFileView) FileName() string { return v.r.s.required("file name", v.it().FileName()) }
func (v PkgFileView) Archive() string  { return v.r.s.required("archive", v.it().Archive()) }

func (v PkgFileView) Version() (string, bool) {
	return v.r.s.optional("release version", v.it().Version())
}

func (v PkgFileView) Origin() (string, bool) {
	return v.r.s.optional("origin", v.it().Origin())
}

func (v PkgFileView) Codename() (string, bool) {
	return v.r.s.optional("codename", v.it().Codename())
}

func (v PkgFileView) Label() (string, bool) {
	return v.r.s.optional("label", v.it().Label())
}

func (v PkgFileView) Site() (string, bool) {
	return v.r.s.optional("site", v.it().Site())
}

func (v PkgFileView) Component() string { return v.r.s.required("component", v.it().Component()) }

func (v PkgFileView) Architecture() (string, bool) {
	return v.r.s.optional("architecture", v.it().Architecture())
}

func (v PkgFileView) IndexType() string { return v.r.s.required("index type", v.it().IndexType()) }
