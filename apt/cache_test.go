package apt

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine"
	"github.com/joshuapare/aptkit/engine/dpkg"
	"github.com/joshuapare/aptkit/internal/testutil"
)

func TestIter_CountMatchesMap(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	it, err := c.Iter(ctx)
	require.NoError(t, err)
	n := it.Count()

	it, err = c.Iter(ctx)
	require.NoError(t, err)
	require.Equal(t, n, cursor.CountSeq(cursor.Map(it, PkgView.FullName)))
	require.Equal(t, 7, n)
	require.Zero(t, c.live(t))
}

func TestIter_TwoTraversalsAgree(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	it, err := c.Iter(ctx)
	require.NoError(t, err)
	first := pkgNames(it)
	it, err = c.Iter(ctx)
	require.NoError(t, err)
	second := pkgNames(it)

	require.Equal(t, len(first), len(second))
	sort.Strings(first)
	sort.Strings(second)
	require.Equal(t, first, second)
	require.Equal(t, 1, c.opens)
}

func TestFindByName(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	it, err := c.FindByName(ctx, "apt")
	require.NoError(t, err)
	require.False(t, it.Empty())
	pkg, ok := it.Peek()
	require.True(t, ok)
	require.Equal(t, "apt", pkg.Name())
	require.Equal(t, "amd64", pkg.Arch())
	it.Close()

	it, err = c.FindByName(ctx, "definitely-nonexistent-xyz")
	require.NoError(t, err)
	require.True(t, it.Empty())
	require.Zero(t, it.Count())

	it, err = c.FindByName(ctx, "libc6:i386")
	require.NoError(t, err)
	require.Equal(t, []string{"libc6:i386"}, pkgNames(it))

	it, err = c.FindByNameArch(ctx, "libc6", "i386")
	require.NoError(t, err)
	require.Equal(t, []string{"libc6:i386"}, pkgNames(it))

	it, err = c.FindByNameArch(ctx, "hello", "i386")
	require.NoError(t, err)
	require.True(t, it.Empty())
	it.Close()

	require.Zero(t, c.live(t))
}

func TestInvalidArgument_BeforeLock(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	// hold the lock: argument errors must not wait for it
	s, err := c.Begin(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, err = c.FindByName(ctx, "ap\x00t")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.FindByNameArch(ctx, "apt", "amd\x0064")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.CompareVersions(ctx, "1.0\x00", "1.0")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.FindByName("\x00")
	require.ErrorIs(t, err, ErrInvalidArgument)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, ErrKindInvalidArgument, ae.Kind)
	require.False(t, c.Poisoned())
}

func TestCompareVersions(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()
	cmp := func(a, b string) int {
		n, err := c.CompareVersions(ctx, a, b)
		require.NoError(t, err)
		return n
	}
	require.Equal(t, -1, cmp("3.0", "3.1"))
	require.Equal(t, 1, cmp("3.1", "3.0"))
	require.Equal(t, 0, cmp("3.0", "3.0"))
	require.Equal(t, -1, cmp("3.0~1", "3.0"))

	versions := []string{"3.1", "3.0", "3.0~1"}
	sort.Slice(versions, func(i, j int) bool { return c.Compare(versions[i], versions[j]) < 0 })
	require.Equal(t, []string{"3.0~1", "3.0", "3.1"}, versions)
}

func TestCompareVersions_NormalizesSign(t *testing.T) {
	c := newFixtureWith(t, fixtureConfig(t), func(e engine.Cache) engine.Cache {
		return &hookEngine{Cache: e, compare: func(a, b string) int { return len(a) - len(b) }}
	})
	n, err := c.CompareVersions(context.Background(), "100", "1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = c.CompareVersions(context.Background(), "1", "100")
	require.NoError(t, err)
	require.Equal(t, -1, n)
}

func TestReload(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, c.Reload(ctx))
	}
	it, err := c.Iter(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, it.Count(), 0)
	require.Equal(t, 3, c.opens)
}

func TestReload_PicksUpChanges(t *testing.T) {
	root := testutil.NewRoot(t).Status("Package: a\nStatus: install ok installed\nVersion: 1\nArchitecture: amd64\n")
	cfg := dpkg.DefaultConfig()
	cfg.Root = root.Dir
	cfg.Architecture = "amd64"
	c := newFixtureWith(t, cfg, nil)
	ctx := context.Background()

	it, err := c.Iter(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, it.Count())

	root.Status("Package: a\nStatus: install ok installed\nVersion: 1\nArchitecture: amd64\n\n" +
		"Package: b\nStatus: install ok installed\nVersion: 2\nArchitecture: amd64\n")
	require.NoError(t, c.Reload(ctx))

	it, err = c.Iter(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a:amd64", "b:amd64"}, pkgNames(it))
}

func TestReload_WaitsForSessions(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	it, err := c.Iter(ctx)
	require.NoError(t, err)
	_, ok := it.Step()
	require.True(t, ok)

	done := make(chan error, 1)
	go func() { done <- c.Reload(ctx) }()

	select {
	case <-done:
		t.Fatal("reload finished while a root cursor was open")
	case <-time.After(50 * time.Millisecond):
	}

	it.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not finish after the cursor closed")
	}
}

func TestLock_TimeoutInsteadOfDeadlock(t *testing.T) {
	c := newFixture(t)

	it, err := c.Iter(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.FindByName(ctx, "apt")
	require.ErrorIs(t, err, ErrLockTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = c.TryBegin()
	require.ErrorIs(t, err, ErrBusy)

	it.Close()
	s, err := c.TryBegin()
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestLock_WithLockTimeoutOption(t *testing.T) {
	c := newFixture(t, WithLockTimeout(10*time.Millisecond))
	s, err := c.Begin(context.Background())
	require.NoError(t, err)
	defer s.Close()

	_, err = c.CompareVersions(context.Background(), "1", "2")
	require.ErrorIs(t, err, ErrLockTimeout)
}

func TestLock_DefaultTimeout(t *testing.T) {
	require.Equal(t, DefaultLockTimeout, New(nil).lockTimeout)
	require.Zero(t, New(nil, WithLockTimeout(0)).lockTimeout)
	require.Equal(t, DefaultLockTimeout, Singleton().lockTimeout)
}

func TestLock_ExhaustionReleases(t *testing.T) {
	c := newFixture(t)
	it, err := c.Iter(context.Background())
	require.NoError(t, err)
	for _, ok := it.Step(); ok; _, ok = it.Step() {
	}
	s, err := c.TryBegin()
	require.NoError(t, err)
	s.Close()
}

func TestLock_BreakReleases(t *testing.T) {
	c := newFixture(t)
	it, err := c.Iter(context.Background())
	require.NoError(t, err)
	for range it.Seq() {
		break
	}
	require.Zero(t, c.live(t))
	s, err := c.TryBegin()
	require.NoError(t, err)
	s.Close()
	require.False(t, c.Poisoned())
}

func TestPoison_PanicInTraversal(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()
	it, err := c.Iter(ctx)
	require.NoError(t, err)

	require.Panics(t, func() {
		for range it.Seq() {
			panic("consumer failure")
		}
	})
	require.True(t, c.Poisoned())

	// the lock was handed back, so waiters see the poison instead of hanging
	require.True(t, c.lock.TryAcquire(1))
	c.lock.Release(1)

	_, err = c.Iter(ctx)
	require.ErrorIs(t, err, ErrPoisoned)
	require.ErrorIs(t, c.Reload(ctx), ErrPoisoned)
	_, err = c.TryBegin()
	require.ErrorIs(t, err, ErrPoisoned)
	require.Panics(t, func() { c.Compare("1", "2") })
}

func TestPoison_PanicInEngine(t *testing.T) {
	c := newFixtureWith(t, fixtureConfig(t), func(e engine.Cache) engine.Cache {
		return &hookEngine{Cache: e, findPkg: func(string) engine.PkgIter { panic("engine failure") }}
	})
	require.Panics(t, func() { _, _ = c.FindByName(context.Background(), "apt") })
	require.True(t, c.Poisoned())
	require.True(t, c.lock.TryAcquire(1))
	c.lock.Release(1)
	require.ErrorIs(t, c.Close(), ErrPoisoned)
}

func TestDo(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()

	var names []string
	err := c.Do(ctx, func(s *Session) error {
		it, err := s.FindByName("bash")
		if err != nil {
			return err
		}
		names = pkgNames(it)
		return errors.New("done")
	})
	require.EqualError(t, err, "done")
	require.Equal(t, []string{"bash:amd64"}, names)
	require.False(t, c.Poisoned())

	require.Panics(t, func() {
		_ = c.Do(ctx, func(*Session) error { panic("boom") })
	})
	require.True(t, c.Poisoned())
}

func TestClose(t *testing.T) {
	c := newFixture(t)
	ctx := context.Background()
	it, err := c.Iter(ctx)
	require.NoError(t, err)
	it.Close()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	_, err = c.Iter(ctx)
	require.ErrorIs(t, err, ErrClosed)
	_, err = c.TryBegin()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Reload(ctx), ErrClosed)
}

func TestOpenError(t *testing.T) {
	boom := errors.New("no database")
	c := New(func() (engine.Cache, error) { return nil, boom })
	_, err := c.Iter(context.Background())
	require.ErrorIs(t, err, ErrEngine)
	require.ErrorIs(t, err, boom)

	// the lock is not leaked by a failed checkout
	require.True(t, c.lock.TryAcquire(1))
	c.lock.Release(1)
}

func TestSingleton(t *testing.T) {
	root := testutil.DebianRoot(t)
	t.Setenv("APTKIT_ROOT", root.Dir)
	t.Setenv("APTKIT_ARCHITECTURE", testutil.FixtureArch)
	t.Setenv(dpkg.EnvConfig, "")

	c := Singleton()
	require.Same(t, c, Singleton())

	it, err := c.FindByName(context.Background(), "apt")
	require.NoError(t, err)
	require.False(t, it.Empty())
	it.Close()
	require.NoError(t, c.Reload(context.Background()))
}
