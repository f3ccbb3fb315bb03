package apt

import (
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine"
)

// VerIter iterates the versions of one package.
type VerIter = cursor.Iter[VerView]

type verRaw struct {
	*raw
	it engine.VerIter
}

func (s *Session) verIter(parent *node, f func() engine.VerIter) *VerIter {
	it := open(s, f)
	r := &verRaw{it: it}
	r.raw = s.newRaw(parent, false, it.Release)
	return cursor.New[VerView](r)
}

func (r *verRaw) End() bool     { return !r.live() || r.it.End() }
func (r *verRaw) Next()         { r.advance(r.it.Next) }
func (r *verRaw) View() VerView { return VerView{r: r, gen: r.gen} }

// VerView is a borrowed view of one version of a package.
type VerView struct {
	r   *verRaw
	gen uint64
}

func (v VerView) it() engine.VerIter {
	v.r.check(v.gen)
	return v.r.it
}

func (v VerView) Version() string { return v.r.s.required("version string", v.it().Version()) }
func (v VerView) Arch() string    { return v.r.s.required("version architecture", v.it().Arch()) }

func (v VerView) Section() (string, bool) {
	return v.r.s.optional("section", v.it().Section())
}

// SourcePackage names the source package the version was built from.
func (v VerView) SourcePackage() string {
	return v.r.s.required("source package", v.it().SourcePackage())
}

func (v VerView) SourceVersion() string {
	return v.r.s.required("source version", v.it().SourceVersion())
}

// Priority is the pin priority the policy assigns to the version.
func (v VerView) Priority() int32 { return v.it().Priority() }

// PriorityType is the archive's importance label: required, important,
// standard, optional or extra.
func (v VerView) PriorityType() (string, bool) {
	return v.r.s.optional("priority", v.it().PriorityType())
}

// Origins opens a cursor over the index files the version appears in.
func (v VerView) Origins() *VerFileIter {
	it := v.it()
	return v.r.s.verFileIter(v.r.n, it.Files)
}

// Dependencies opens a cursor over the version's relationships.
func (v VerView) Dependencies() *DepIter {
	it := v.it()
	return v.r.s.depIter(v.r.n, it.Depends)
}
