package apt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/aptkit/engine"
	"github.com/joshuapare/aptkit/engine/dpkg"
	"github.com/joshuapare/aptkit/internal/testutil"
)

// fixture is a Cache over the Debian test root plus access to the engine
// instance currently open, for release accounting.
type fixture struct {
	*Cache
	eng   *dpkg.Cache
	opens int
	hook  func(engine.Cache) engine.Cache
}

func fixtureConfig(t *testing.T) dpkg.Config {
	t.Helper()
	root := testutil.DebianRoot(t)
	cfg := dpkg.DefaultConfig()
	cfg.Root = root.Dir
	cfg.Architecture = testutil.FixtureArch
	return cfg
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWith(t, fixtureConfig(t), nil, opts...)
}

func newFixtureWith(t *testing.T, cfg dpkg.Config, hook func(engine.Cache) engine.Cache, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{hook: hook}
	f.Cache = New(func() (engine.Cache, error) {
		d, err := dpkg.Open(cfg)
		if err != nil {
			return nil, err
		}
		f.eng = d
		f.opens++
		if f.hook != nil {
			return f.hook(d), nil
		}
		return d, nil
	}, opts...)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// live reports the engine cursors not yet released.
func (f *fixture) live(t *testing.T) int {
	t.Helper()
	require.NotNil(t, f.eng, "engine not opened yet")
	return f.eng.LiveCursors()
}

// hookEngine overrides selected engine entry points.
type hookEngine struct {
	engine.Cache
	findPkg func(name string) engine.PkgIter
	compare func(a, b string) int
}

func (h *hookEngine) FindPkg(name string) engine.PkgIter {
	if h.findPkg != nil {
		return h.findPkg(name)
	}
	return h.Cache.FindPkg(name)
}

func (h *hookEngine) CompareVersions(a, b string) int {
	if h.compare != nil {
		return h.compare(a, b)
	}
	return h.Cache.CompareVersions(a, b)
}

// nameless drops the package name, which the engine must always provide.
type nameless struct{ engine.PkgIter }

func (nameless) Name() []byte { return nil }

func pkgNames(it *PkgIter) []string {
	var out []string
	for v := range it.Seq() {
		out = append(out, v.FullName())
	}
	return out
}
