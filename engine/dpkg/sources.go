package dpkg

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joshuapare/aptkit/internal/deb822"
	"github.com/joshuapare/aptkit/internal/listfile"
)

// Index types reported through PkgFileIter.IndexType, as APT names them.
const (
	IndexTypeStatus   = "Debian dpkg status file"
	IndexTypePackages = "Debian Package Index"
)

// Pin priorities assigned by the built-in policy.
const (
	PriorityStatus       = 100
	PriorityDefault      = 500
	PriorityNotAutomatic = 1
	PriorityAutoUpgrades = 100
)

type indexKind uint8

const (
	kindStatus indexKind = iota
	kindPackages
)

func (k indexKind) String() string {
	if k == kindStatus {
		return "status"
	}
	return "packages"
}

// index is one file the cache is built from, plus the metadata APT keeps
// for it in its package-file table.
type index struct {
	kind indexKind
	path string
	meta pkgFile
}

// release is the subset of a Release file the policy and origins need.
type release struct {
	origin, label, suite, version, codename []byte
	notAutomatic, autoUpgrades              bool
}

// listName is what an index file name encodes: the repository URI with '/'
// replaced by '_', e.g. deb.debian.org_debian_dists_bookworm_main_binary-amd64_Packages.
type listName struct {
	site      string
	prefix    string // everything before the suite-relative part
	suite     string
	component string
	arch      string
}

func parseListName(base string) (listName, bool) {
	base = listfile.TrimExt(base)
	if !strings.HasSuffix(base, "_Packages") {
		return listName{}, false
	}
	base = strings.TrimSuffix(base, "_Packages")

	var ln listName
	if i := strings.IndexByte(base, '_'); i > 0 {
		ln.site = base[:i]
	} else {
		ln.site = base
	}

	i := strings.Index(base, "_dists_")
	if i < 0 {
		// flat repository: "<uri>_._Packages"
		ln.prefix = base
		return ln, true
	}
	ln.prefix = base[:i+len("_dists")]
	parts := strings.Split(base[i+len("_dists_"):], "_")
	ln.suite = parts[0]
	rest := parts[1:]
	if n := len(rest); n > 0 && strings.HasPrefix(rest[n-1], "binary-") {
		ln.arch = strings.TrimPrefix(rest[n-1], "binary-")
		rest = rest[:n-1]
	}
	ln.component = strings.Join(rest, "/")
	return ln, true
}

func (ln listName) releaseCandidates(dir string) []string {
	base := ln.prefix
	if ln.suite != "" {
		base += "_" + ln.suite
	}
	return []string{
		filepath.Join(dir, base+"_InRelease"),
		filepath.Join(dir, base+"_Release"),
	}
}

func readRelease(path string) (release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return release{}, err
	}
	stanzas, err := deb822.Parse(deb822.StripSignature(data))
	if err != nil {
		return release{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(stanzas) == 0 {
		return release{}, fmt.Errorf("parse %s: no fields", path)
	}
	s := stanzas[0]
	get := func(name string) []byte {
		v, ok := s.Get(name)
		if !ok {
			return nil
		}
		return append([]byte{}, v...)
	}
	return release{
		origin:       get("Origin"),
		label:        get("Label"),
		suite:        get("Suite"),
		version:      get("Version"),
		codename:     get("Codename"),
		notAutomatic: strings.EqualFold(s.String("NotAutomatic"), "yes"),
		autoUpgrades: strings.EqualFold(s.String("ButAutomaticUpgrades"), "yes"),
	}, nil
}

func (r release) priority() int32 {
	switch {
	case r.notAutomatic && r.autoUpgrades:
		return PriorityAutoUpgrades
	case r.notAutomatic:
		return PriorityNotAutomatic
	default:
		return PriorityDefault
	}
}

// discover lists the indexes under cfg in build order: the status file
// first, then APT lists sorted by name.
func discover(cfg Config, log *slog.Logger) ([]index, error) {
	var out []index

	status := cfg.path(cfg.StatusFile)
	switch _, err := os.Stat(status); {
	case err == nil:
		out = append(out, index{
			kind: kindStatus,
			path: status,
			meta: pkgFile{
				fileName:  []byte(status),
				archive:   []byte("now"),
				component: []byte("now"),
				indexType: []byte(IndexTypeStatus),
				priority:  PriorityStatus,
			},
		})
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("no dpkg status file", "path", status)
	default:
		return nil, fmt.Errorf("stat status file: %w", err)
	}

	dir := cfg.path(cfg.ListsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("no apt lists directory", "path", dir)
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lists directory: %w", err)
	}

	// one index per list; prefer the uncompressed copy if both exist
	chosen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if _, ok := parseListName(name); !ok {
			continue
		}
		c := listfile.Detect(name)
		if !c.Supported() {
			log.Warn("skipping index with unsupported compression", "file", name, "compression", c.String())
			continue
		}
		key := listfile.TrimExt(name)
		if prev, ok := chosen[key]; ok && listfile.Detect(prev) == listfile.None {
			continue
		}
		chosen[key] = name
	}
	names := make([]string, 0, len(chosen))
	for _, name := range chosen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ln, _ := parseListName(name)
		path := filepath.Join(dir, name)
		rel := release{}
		for _, cand := range ln.releaseCandidates(dir) {
			r, err := readRelease(cand)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				log.Warn("ignoring unreadable release file", "file", cand, "error", err)
				break
			}
			rel = r
			break
		}
		archive := rel.suite
		if archive == nil {
			archive = []byte(ln.suite)
		}
		meta := pkgFile{
			fileName:  []byte(path),
			archive:   archive,
			version:   rel.version,
			origin:    rel.origin,
			codename:  rel.codename,
			label:     rel.label,
			site:      []byte(ln.site),
			component: []byte(ln.component),
			indexType: []byte(IndexTypePackages),
			priority:  rel.priority(),
		}
		if ln.arch != "" {
			meta.arch = []byte(ln.arch)
		}
		out = append(out, index{kind: kindPackages, path: path, meta: meta})
	}
	return out, nil
}
