package dpkg

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/aptkit/engine"
	"github.com/joshuapare/aptkit/internal/debver"
	"github.com/joshuapare/aptkit/internal/listfile"
)

// Cache is an in-memory package cache built from a dpkg status file and APT
// lists. It implements engine.Cache and, like the native engine it stands
// in for, is not safe for concurrent use.
type Cache struct {
	cfg    Config
	log    *slog.Logger
	native string
	archs  []string

	files  []pkgFile
	pkgs   []*pkg
	byKey  map[string]int
	byName map[string]*roaring.Bitmap
	lists  []*listfile.File

	live   int
	closed bool
}

var _ engine.Cache = (*Cache)(nil)

// Open builds a cache from the files cfg points at. Missing inputs yield an
// empty cache; unreadable or unsupported index files are skipped with a
// warning.
func Open(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.logger()
	log.Debug("opening dpkg cache", "root", cfg.Root)
	return build(cfg, log)
}

// Close releases the mapped index files. Cursors still open become unusable.
func (c *Cache) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if n := c.LiveCursors(); n > 0 {
		c.log.Warn("closing cache with live cursors", "live", n)
	}
	return c.closeLists()
}

func (c *Cache) closeLists() error {
	var errs []error
	for _, f := range c.lists {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	c.lists = nil
	return errors.Join(errs...)
}

// LiveCursors reports how many cursors have been opened and not released.
func (c *Cache) LiveCursors() int { return c.live }

func (c *Cache) PkgBegin() engine.PkgIter {
	c.check()
	return c.newPkgCursor(nil, true)
}

// FindPkg prefers the native architecture and otherwise takes the package
// registered first. "name:arch" is looked up exactly.
func (c *Cache) FindPkg(name string) engine.PkgIter {
	c.check()
	if n, arch, ok := strings.Cut(name, ":"); ok {
		return c.FindPkgArch(n, arch)
	}
	if id, ok := c.byKey[name+":"+c.native]; ok {
		return c.newPkgCursor([]int{id}, false)
	}
	if bm, ok := c.byName[name]; ok && !bm.IsEmpty() {
		return c.newPkgCursor([]int{int(bm.Minimum())}, false)
	}
	return c.newPkgCursor(nil, false)
}

func (c *Cache) FindPkgArch(name, arch string) engine.PkgIter {
	c.check()
	if arch == "" || arch == "all" || arch == "native" {
		arch = c.native
	}
	if id, ok := c.byKey[name+":"+arch]; ok {
		return c.newPkgCursor([]int{id}, false)
	}
	return c.newPkgCursor(nil, false)
}

func (c *Cache) CompareVersions(a, b string) int {
	return debver.Compare(a, b)
}

func (c *Cache) check() {
	if c.closed {
		panic("dpkg: use of closed cache")
	}
}
