// Package engine defines the boundary between aptkit and a package-cache
// engine: the component that actually knows which packages, versions and
// index files exist.
//
// The interfaces mirror a native cursor API. Every value returned by an
// engine is a position into engine-owned state:
//
//   - cursors are created already positioned on their first item, or at end
//   - Next moves a cursor in place; data read before Next is no longer valid
//   - every cursor must be released exactly once
//   - a nil byte slice means "no value" (a null pointer in a C engine)
//
// Byte slices returned by accessors are borrowed from the engine and are
// only valid until the cursor moves or is released. Engines are not safe for
// concurrent use; package apt serializes all access.
package engine

// Opener creates the engine's root state. Each successful call must be paired
// with exactly one Cache.Close.
type Opener func() (Cache, error)

// Cache is the engine's root state.
type Cache interface {
	// Close releases the root state. No cursor obtained from it may be used
	// afterwards.
	Close() error

	// PkgBegin opens a cursor over every package, in engine order.
	PkgBegin() PkgIter

	// FindPkg opens a cursor positioned at the package called name, or at
	// end. name may carry an ":arch" qualifier.
	FindPkg(name string) PkgIter

	// FindPkgArch opens a cursor positioned at name for arch, or at end.
	FindPkgArch(name, arch string) PkgIter

	// CompareVersions orders two version strings: negative, zero or
	// positive as a sorts before, equal to, or after b.
	CompareVersions(a, b string) int
}

// Iter is the part of the cursor protocol shared by every level.
type Iter interface {
	End() bool
	Next()
	Release()
}

// PkgIter is a cursor over packages.
type PkgIter interface {
	Iter
	Name() []byte
	Arch() []byte
	CurrentVersion() []byte
	CandidateVersion() []byte
	// Pretty returns an engine formatted one-line summary.
	Pretty() []byte
	// Versions opens a cursor over the package's versions, highest first.
	Versions() VerIter
}

// VerIter is a cursor over the versions of one package.
type VerIter interface {
	Iter
	Version() []byte
	Arch() []byte
	Section() []byte
	SourcePackage() []byte
	SourceVersion() []byte
	// PriorityType is the Debian "Priority:" field (required, optional, ...).
	PriorityType() []byte
	// Priority is the pin priority the engine's policy assigns.
	Priority() int32
	// Files opens a cursor over the index files this version was read from.
	Files() VerFileIter
	// Depends opens a cursor over the version's dependencies.
	Depends() DepIter
}

// VerFileIter is a cursor over the origins of one version.
type VerFileIter interface {
	Iter
	// Record returns a parser over the version's stanza in the current file.
	Record() Record
	// PkgFile opens a cursor positioned at the current origin's index file.
	PkgFile() PkgFileIter
}

// Record reads descriptive fields of a version from its index stanza.
type Record interface {
	ShortDesc() []byte
	LongDesc() []byte
	Maintainer() []byte
	Homepage() []byte
}

// PkgFileIter is a cursor over index files.
type PkgFileIter interface {
	Iter
	FileName() []byte
	Archive() []byte
	Version() []byte
	Origin() []byte
	Codename() []byte
	Label() []byte
	Site() []byte
	Component() []byte
	Architecture() []byte
	IndexType() []byte
}

// DepIter is a cursor over the dependencies of one version.
type DepIter interface {
	Iter
	// TargetPkg opens a package cursor at the dependency's target package,
	// or at end when the engine does not know it.
	TargetPkg() PkgIter
	TargetVer() []byte
	CompType() []byte
	DepType() []byte
}
