package dpkg

// pkgFile is one entry of the package-file table: an index the cache was
// built from and what its Release file says about it.
type pkgFile struct {
	fileName  []byte
	archive   []byte
	version   []byte
	origin    []byte
	codename  []byte
	label     []byte
	site      []byte
	component []byte
	arch      []byte
	indexType []byte
	priority  int32
}

// verFile ties a version to one index it was read from. stanza aliases the
// index contents and is parsed again on demand by record.
type verFile struct {
	file   int
	stanza []byte
}

type dep struct {
	depType []byte
	target  string
	arch    string // empty: the owning version's architecture
	comp    []byte
	version []byte
}

type version struct {
	pkg           int
	version       []byte
	arch          []byte
	section       []byte
	source        []byte
	sourceVersion []byte
	priorityType  []byte
	installed     bool
	pin           int32
	files         []verFile
	deps          []dep
}

type pkg struct {
	name      []byte
	arch      []byte
	versions  []*version // highest first
	current   *version
	candidate *version
}

func (p *pkg) key() string { return string(p.name) + ":" + string(p.arch) }

// entry is a parsed stanza before it is merged into the package table.
type entry struct {
	name          []byte
	arch          []byte // as written; "all" is kept
	version       []byte
	section       []byte
	source        []byte
	sourceVersion []byte
	priorityType  []byte
	installed     bool
	present       bool // status entries that still have a version on disk
	deps          []dep
	stanza        []byte
}
