package apt

import (
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine"
)

// VerFileIter iterates the origins of one version.
type VerFileIter = cursor.Iter[VerFileView]

type verFileRaw struct {
	*raw
	it  engine.VerFileIter
	rec engine.Record // parser for the current position, opened on demand
}

func (s *Session) verFileIter(parent *node, f func() engine.VerFileIter) *VerFileIter {
	it := open(s, f)
	r := &verFileRaw{it: it}
	r.raw = s.newRaw(parent, false, it.Release)
	return cursor.New[VerFileView](r)
}

func (r *verFileRaw) End() bool { return !r.live() || r.it.End() }

func (r *verFileRaw) Next() {
	r.rec = nil
	r.advance(r.it.Next)
}

func (r *verFileRaw) View() VerFileView { return VerFileView{r: r, gen: r.gen} }

func (r *verFileRaw) record() engine.Record {
	if r.rec == nil {
		r.rec = open(r.s, r.it.Record)
	}
	return r.rec
}

// VerFileView is a borrowed view of one origin of a version: the version's
// entry in a particular index file.
type VerFileView struct {
	r   *verFileRaw
	gen uint64
}

func (v VerFileView) rec() engine.Record {
	v.r.check(v.gen)
	return v.r.record()
}

func (v VerFileView) ShortDesc() (string, bool) {
	return v.r.s.optional("short description", v.rec().ShortDesc())
}

func (v VerFileView) LongDesc() (string, bool) {
	return v.r.s.optional("long description", v.rec().LongDesc())
}

func (v VerFileView) Maintainer() (string, bool) {
	return v.r.s.optional("maintainer", v.rec().Maintainer())
}

func (v VerFileView) Homepage() (string, bool) {
	return v.r.s.optional("homepage", v.rec().Homepage())
}

// File opens a package-file cursor positioned at this origin's index.
func (v VerFileView) File() *PkgFileIter {
	v.r.check(v.gen)
	return v.r.s.pkgFileIter(v.r.n, v.r.it.PkgFile)
}
