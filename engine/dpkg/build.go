package dpkg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/aptkit/internal/deb822"
	"github.com/joshuapare/aptkit/internal/debver"
	"github.com/joshuapare/aptkit/internal/listfile"
)

// parsed is the result of reading one index. file stays open for as long as
// the cache uses the stanzas that alias it.
type parsed struct {
	idx     index
	file    *listfile.File
	entries []entry
	skipped bool
}

// build reads every index under cfg and assembles the package tables.
func build(cfg Config, log *slog.Logger) (*Cache, error) {
	c := &Cache{
		cfg:    cfg,
		log:    log,
		native: cfg.nativeArch(),
		byKey:  make(map[string]int),
		byName: make(map[string]*roaring.Bitmap),
	}
	// everything that can fail runs before the first index is opened
	archs, err := readArchs(cfg, c.native)
	if err != nil {
		return nil, err
	}
	c.archs = archs
	indexes, err := discover(cfg, log)
	if err != nil {
		return nil, err
	}

	limit := cfg.Parallelism
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]parsed, len(indexes))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, idx := range indexes {
		g.Go(func() error {
			results[i] = parseIndex(idx, cfg.TranscodeLatin1, log)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.skipped {
			continue
		}
		c.lists = append(c.lists, r.file)
		fileID := len(c.files)
		c.files = append(c.files, r.idx.meta)
		for i := range r.entries {
			c.merge(fileID, &r.entries[i])
		}
	}
	c.finish()
	log.Debug("dpkg cache built", "files", len(c.files), "packages", len(c.pkgs))
	return c, nil
}

func parseIndex(idx index, transcode bool, log *slog.Logger) parsed {
	f, err := listfile.Open(idx.path)
	if err != nil {
		log.Warn("skipping unreadable index", "file", idx.path, "error", err)
		return parsed{idx: idx, skipped: true}
	}
	conv := func(b []byte) []byte { return b }
	if transcode {
		conv = deb822.ToUTF8
	}

	var entries []entry
	sc := deb822.NewScanner(f.Bytes())
	for sc.Scan() {
		e, ok := readEntry(sc.Stanza(), idx.kind, conv)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		// keep what was read before the damage, as apt does for partial lists
		log.Warn("index is malformed", "file", idx.path, "error", err, "stanzas", len(entries))
	}
	return parsed{idx: idx, file: f, entries: entries}
}

func readEntry(s *deb822.Stanza, kind indexKind, conv func([]byte) []byte) (entry, bool) {
	get := func(name string) []byte {
		v, ok := s.Get(name)
		if !ok {
			return nil
		}
		return conv(v)
	}
	e := entry{
		name:         get("Package"),
		arch:         get("Architecture"),
		version:      get("Version"),
		section:      get("Section"),
		priorityType: get("Priority"),
		stanza:       s.Raw,
		present:      true,
	}
	if len(e.name) == 0 {
		return entry{}, false
	}
	if kind == kindStatus {
		e.installed, e.present = statusState(s.String("Status"))
	}
	if len(e.version) == 0 {
		e.present = false
	}
	e.source, e.sourceVersion = sourceOf(get("Source"))
	e.deps = parseDeps(s, conv)
	return e, true
}

// statusState interprets dpkg's "want flag state" triple. Packages that only
// left configuration files behind have no installed version.
func statusState(status string) (installed, present bool) {
	f := strings.Fields(status)
	if len(f) != 3 {
		return false, false
	}
	switch f[2] {
	case "not-installed", "config-files":
		return false, false
	default:
		return true, true
	}
}

// sourceOf splits "Source: name (version)".
func sourceOf(v []byte) (name, version []byte) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return nil, nil
	}
	i := bytes.IndexByte(v, '(')
	if i < 0 {
		return v, nil
	}
	name = bytes.TrimSpace(v[:i])
	version = bytes.TrimSpace(bytes.TrimSuffix(bytes.TrimSpace(v[i+1:]), []byte(")")))
	return name, version
}

func readArchs(cfg Config, native string) ([]string, error) {
	archs := []string{native}
	add := func(a string) {
		if a != "" && !slices.Contains(archs, a) {
			archs = append(archs, a)
		}
	}
	for _, a := range cfg.ForeignArchitectures {
		add(a)
	}
	f, err := os.Open(cfg.path(cfg.ArchFile))
	if errors.Is(err, fs.ErrNotExist) {
		return archs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read architectures: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		add(strings.TrimSpace(sc.Text()))
	}
	return archs, sc.Err()
}

// merge adds one stanza read from file to the package table.
func (c *Cache) merge(file int, e *entry) {
	arch := string(e.arch)
	if arch == "" || arch == "all" {
		arch = c.native
	}
	key := string(e.name) + ":" + arch
	id, ok := c.byKey[key]
	if !ok {
		id = len(c.pkgs)
		c.pkgs = append(c.pkgs, &pkg{name: e.name, arch: []byte(arch)})
		c.byKey[key] = id
		bm := c.byName[string(e.name)]
		if bm == nil {
			bm = roaring.New()
			c.byName[string(e.name)] = bm
		}
		bm.Add(uint32(id))
	}
	if !e.present {
		return
	}

	p := c.pkgs[id]
	verArch := e.arch
	if len(verArch) == 0 {
		verArch = p.arch
	}
	for _, v := range p.versions {
		if bytes.Equal(v.version, e.version) && bytes.Equal(v.arch, verArch) {
			v.files = append(v.files, verFile{file: file, stanza: e.stanza})
			v.installed = v.installed || e.installed
			if v.section == nil {
				v.section = e.section
			}
			if v.priorityType == nil {
				v.priorityType = e.priorityType
			}
			return
		}
	}
	p.versions = append(p.versions, &version{
		pkg:           id,
		version:       e.version,
		arch:          verArch,
		section:       e.section,
		source:        e.source,
		sourceVersion: e.sourceVersion,
		priorityType:  e.priorityType,
		installed:     e.installed,
		files:         []verFile{{file: file, stanza: e.stanza}},
		deps:          e.deps,
	})
}

// finish orders versions and applies the pin policy.
func (c *Cache) finish() {
	for _, p := range c.pkgs {
		slices.SortStableFunc(p.versions, func(a, b *version) int {
			return debver.Compare(string(b.version), string(a.version))
		})
		for _, v := range p.versions {
			if v.source == nil {
				v.source = p.name
			}
			if v.sourceVersion == nil {
				v.sourceVersion = v.version
			}
			for _, vf := range v.files {
				v.pin = max(v.pin, c.files[vf.file].priority)
			}
			if v.installed && p.current == nil {
				p.current = v
			}
		}
		p.candidate = candidate(p)
	}
}

// candidate picks the version with the highest pin, preferring the highest
// version among equal pins. A pin below 1000 never downgrades the installed
// version.
func candidate(p *pkg) *version {
	var best *version
	for _, v := range p.versions {
		if best == nil || v.pin > best.pin {
			best = v
		}
	}
	if best == nil {
		return nil
	}
	if cur := p.current; cur != nil && best.pin < 1000 &&
		debver.Compare(string(best.version), string(cur.version)) < 0 {
		return cur
	}
	return best
}
