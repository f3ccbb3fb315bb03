package dpkg

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/joshuapare/aptkit/engine"
	"github.com/joshuapare/aptkit/internal/deb822"
)

// cursor is the release bookkeeping shared by every cursor type. Using a
// cursor after Release, or releasing it twice, panics: the caller broke the
// engine contract.
type cursor struct {
	c        *Cache
	released bool
}

func (k *cursor) open(c *Cache) {
	k.c = c
	c.live++
}

func (k *cursor) Release() {
	if k.released {
		panic("dpkg: cursor released twice")
	}
	k.released = true
	k.c.live--
}

func (k *cursor) use() {
	if k.released {
		panic("dpkg: use of released cursor")
	}
	k.c.check()
}

// ---- packages ----

type pkgCursor struct {
	cursor
	ids []int
	all bool
	pos int
}

func (c *Cache) newPkgCursor(ids []int, all bool) *pkgCursor {
	k := &pkgCursor{ids: ids, all: all}
	k.open(c)
	return k
}

func (k *pkgCursor) len() int {
	if k.all {
		return len(k.c.pkgs)
	}
	return len(k.ids)
}

func (k *pkgCursor) End() bool {
	k.use()
	return k.pos >= k.len()
}

func (k *pkgCursor) Next() {
	if k.End() {
		panic("dpkg: Next on exhausted package cursor")
	}
	k.pos++
}

func (k *pkgCursor) cur() *pkg {
	if k.End() {
		panic("dpkg: package cursor is at end")
	}
	if k.all {
		return k.c.pkgs[k.pos]
	}
	return k.c.pkgs[k.ids[k.pos]]
}

func (k *pkgCursor) Name() []byte { return k.cur().name }
func (k *pkgCursor) Arch() []byte { return k.cur().arch }

func (k *pkgCursor) CurrentVersion() []byte {
	if v := k.cur().current; v != nil {
		return v.version
	}
	return nil
}

func (k *pkgCursor) CandidateVersion() []byte {
	if v := k.cur().candidate; v != nil {
		return v.version
	}
	return nil
}

// Pretty renders a package the way APT prints a PkgIterator:
//
//	name [ arch ] < current -> candidate | newest > ( section )
func (k *pkgCursor) Pretty() []byte {
	p := k.cur()
	verStr := func(v *version) string {
		if v == nil {
			return "none"
		}
		return string(v.version)
	}
	var newest *version
	if len(p.versions) > 0 {
		newest = p.versions[0]
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s [ %s ] < %s", p.name, p.arch, verStr(p.current))
	// versions are told apart by their string; arch "all" and native
	// copies of one version print once
	if verStr(p.candidate) != verStr(p.current) {
		fmt.Fprintf(&b, " -> %s", verStr(p.candidate))
	}
	if verStr(newest) != verStr(p.candidate) {
		fmt.Fprintf(&b, " | %s", verStr(newest))
	}
	switch {
	case newest == nil:
		b.WriteString(" > ( none )")
	case newest.section == nil:
		b.WriteString(" > ( unknown )")
	default:
		fmt.Fprintf(&b, " > ( %s )", newest.section)
	}
	return b.Bytes()
}

func (k *pkgCursor) Versions() engine.VerIter {
	v := &verCursor{vers: k.cur().versions}
	v.open(k.c)
	return v
}

// ---- versions ----

type verCursor struct {
	cursor
	vers []*version
	pos  int
}

func (k *verCursor) End() bool {
	k.use()
	return k.pos >= len(k.vers)
}

func (k *verCursor) Next() {
	if k.End() {
		panic("dpkg: Next on exhausted version cursor")
	}
	k.pos++
}

func (k *verCursor) cur() *version {
	if k.End() {
		panic("dpkg: version cursor is at end")
	}
	return k.vers[k.pos]
}

func (k *verCursor) Version() []byte       { return k.cur().version }
func (k *verCursor) Arch() []byte          { return k.cur().arch }
func (k *verCursor) Section() []byte       { return k.cur().section }
func (k *verCursor) SourcePackage() []byte { return k.cur().source }
func (k *verCursor) SourceVersion() []byte { return k.cur().sourceVersion }
func (k *verCursor) PriorityType() []byte  { return k.cur().priorityType }
func (k *verCursor) Priority() int32       { return k.cur().pin }

func (k *verCursor) Files() engine.VerFileIter {
	f := &verFileCursor{ver: k.cur()}
	f.open(k.c)
	return f
}

func (k *verCursor) Depends() engine.DepIter {
	d := &depCursor{ver: k.cur()}
	d.open(k.c)
	return d
}

// ---- version files ----

type verFileCursor struct {
	cursor
	ver *version
	pos int
}

func (k *verFileCursor) End() bool {
	k.use()
	return k.pos >= len(k.ver.files)
}

func (k *verFileCursor) Next() {
	if k.End() {
		panic("dpkg: Next on exhausted version file cursor")
	}
	k.pos++
}

func (k *verFileCursor) cur() verFile {
	if k.End() {
		panic("dpkg: version file cursor is at end")
	}
	return k.ver.files[k.pos]
}

func (k *verFileCursor) Record() engine.Record {
	r := &record{stanza: k.cur().stanza, conv: func(b []byte) []byte { return b }}
	if k.c.cfg.TranscodeLatin1 {
		r.conv = deb822.ToUTF8
	}
	return r
}

// PkgFile positions a package-file cursor at this origin's index. Advancing
// it walks on through the cache's file table, as APT's PkgFileIterator does.
func (k *verFileCursor) PkgFile() engine.PkgFileIter {
	f := &pkgFileCursor{pos: k.cur().file}
	f.open(k.c)
	return f
}

// record parses its stanza on first use.
type record struct {
	stanza []byte
	conv   func([]byte) []byte
	once   sync.Once
	st     deb822.Stanza
	ok     bool
}

func (r *record) get(name string) []byte {
	r.once.Do(func() {
		sc := deb822.NewScanner(r.stanza)
		if sc.Scan() {
			r.st, r.ok = *sc.Stanza(), true
		}
	})
	if !r.ok {
		return nil
	}
	v, ok := r.st.Get(name)
	if !ok {
		return nil
	}
	return r.conv(v)
}

func (r *record) ShortDesc() []byte {
	short, _ := deb822.Description(r.get("Description"))
	return short
}

// LongDesc returns the whole description, synopsis included, with the "."
// paragraph separators turned into blank lines.
func (r *record) LongDesc() []byte {
	desc := r.get("Description")
	if desc == nil {
		return nil
	}
	short, long := deb822.Description(desc)
	if long == nil {
		return short
	}
	out := make([]byte, 0, len(short)+1+len(long))
	out = append(out, short...)
	out = append(out, '\n')
	return append(out, long...)
}

func (r *record) Maintainer() []byte { return r.get("Maintainer") }
func (r *record) Homepage() []byte   { return r.get("Homepage") }

// ---- package files ----

type pkgFileCursor struct {
	cursor
	pos int
}

func (k *pkgFileCursor) End() bool {
	k.use()
	return k.pos >= len(k.c.files)
}

func (k *pkgFileCursor) Next() {
	if k.End() {
		panic("dpkg: Next on exhausted package file cursor")
	}
	k.pos++
}

func (k *pkgFileCursor) cur() *pkgFile {
	if k.End() {
		panic("dpkg: package file cursor is at end")
	}
	return &k.c.files[k.pos]
}

func (k *pkgFileCursor) FileName() []byte     { return k.cur().fileName }
func (k *pkgFileCursor) Archive() []byte      { return k.cur().archive }
func (k *pkgFileCursor) Version() []byte      { return k.cur().version }
func (k *pkgFileCursor) Origin() []byte       { return k.cur().origin }
func (k *pkgFileCursor) Codename() []byte     { return k.cur().codename }
func (k *pkgFileCursor) Label() []byte        { return k.cur().label }
func (k *pkgFileCursor) Site() []byte         { return k.cur().site }
func (k *pkgFileCursor) Component() []byte    { return k.cur().component }
func (k *pkgFileCursor) Architecture() []byte { return k.cur().arch }
func (k *pkgFileCursor) IndexType() []byte    { return k.cur().indexType }

// ---- dependencies ----

type depCursor struct {
	cursor
	ver *version
	pos int
}

func (k *depCursor) End() bool {
	k.use()
	return k.pos >= len(k.ver.deps)
}

func (k *depCursor) Next() {
	if k.End() {
		panic("dpkg: Next on exhausted dependency cursor")
	}
	k.pos++
}

func (k *depCursor) cur() *dep {
	if k.End() {
		panic("dpkg: dependency cursor is at end")
	}
	return &k.ver.deps[k.pos]
}

// TargetPkg resolves the target under the dependency's architecture
// qualifier, or the owning package's architecture when there is none.
func (k *depCursor) TargetPkg() engine.PkgIter {
	d := k.cur()
	arch := d.arch
	if arch == "" {
		arch = string(k.c.pkgs[k.ver.pkg].arch)
	}
	return k.c.FindPkgArch(d.target, arch)
}

func (k *depCursor) TargetVer() []byte { return k.cur().version }
func (k *depCursor) CompType() []byte  { return k.cur().comp }
func (k *depCursor) DepType() []byte   { return k.cur().depType }

var (
	_ engine.PkgIter     = (*pkgCursor)(nil)
	_ engine.VerIter     = (*verCursor)(nil)
	_ engine.VerFileIter = (*verFileCursor)(nil)
	_ engine.PkgFileIter = (*pkgFileCursor)(nil)
	_ engine.DepIter     = (*depCursor)(nil)
)
