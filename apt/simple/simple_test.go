package simple

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/aptkit/apt"
	"github.com/joshuapare/aptkit/cursor"
	"github.com/joshuapare/aptkit/engine/dpkg"
	"github.com/joshuapare/aptkit/internal/testutil"
)

func fixtureCache(t *testing.T) *apt.Cache {
	t.Helper()
	cfg := dpkg.DefaultConfig()
	cfg.Root = testutil.DebianRoot(t).Dir
	cfg.Architecture = testutil.FixtureArch
	c := apt.New(cfg.Opener())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func packageVersions(t *testing.T, c *apt.Cache, name string) BinaryPackageVersions {
	t.Helper()
	it, err := c.FindByName(context.Background(), name)
	require.NoError(t, err)
	got, ok := cursor.First(cursor.Map(it, NewBinaryPackageVersions))
	require.True(t, ok)
	return got
}

func TestBinaryPackageVersions(t *testing.T) {
	c := fixtureCache(t)

	libc := packageVersions(t, c, "libc6")
	require.Equal(t, BinaryPackage{
		Name:             "libc6",
		Arch:             "amd64",
		CurrentVersion:   "2.36-9+deb12u4",
		CandidateVersion: "2.36-9+deb12u7",
	}, libc.Package)
	require.Equal(t, "libc6:amd64 @ 2.36-9+deb12u4 -> 2.36-9+deb12u7 + 2 versions", libc.String())

	require.Equal(t, Version{
		Version:       "2.36-9+deb12u7",
		Arch:          "amd64",
		Section:       "libs",
		SourcePackage: "glibc",
		SourceVersion: "2.36-9+deb12u7",
		Priority:      500,
		PriorityType:  "optional",
		Details: VersionDetails{
			ShortDesc:  "GNU C Library: Shared libraries",
			LongDesc:   "GNU C Library: Shared libraries",
			Maintainer: "GNU Libc Maintainers <debian-glibc@lists.debian.org>",
		},
	}, libc.Versions[0])
	require.Equal(t, "2.36-9+deb12u7:amd64 in libs from glibc:2.36-9+deb12u7 at 500", libc.Versions[0].String())

	old := packageVersions(t, c, "oldpkg")
	require.Equal(t, "oldpkg:amd64", old.Package.String())
	require.Empty(t, old.Versions)
}

func TestVersion_StringWithoutSection(t *testing.T) {
	v := Version{Version: "1.0", Arch: "all", SourcePackage: "src", SourceVersion: "1.0", Priority: 100}
	require.Equal(t, "1.0:all from src:1.0 at 100", v.String())
}

func TestVersionOrigins(t *testing.T) {
	c := fixtureCache(t)
	it, err := c.FindByName(context.Background(), "apt")
	require.NoError(t, err)
	defer it.Close()
	pkg, ok := it.Step()
	require.True(t, ok)

	vo, ok := cursor.First(cursor.Map(pkg.Versions(), NewVersionOrigins))
	require.True(t, ok)
	require.Equal(t, "2.6.1", vo.Version.Version)
	// details come from the first origin, the status file, which has no homepage
	require.Equal(t, "commandline package manager", vo.Version.Details.ShortDesc)
	require.Empty(t, vo.Version.Details.Homepage)
	require.Len(t, vo.Origins, 2)

	status := vo.Origins[0]
	require.Equal(t, "now", status.Archive)
	require.Equal(t, dpkg.IndexTypeStatus, status.IndexType)
	require.Equal(t, status.FileName, status.String())

	main := vo.Origins[1]
	require.Equal(t, Origin{
		FileName:     main.FileName,
		Archive:      "stable",
		Version:      "12.5",
		Origin:       "Debian",
		Codename:     "bookworm",
		Label:        "Debian",
		Site:         "deb.debian.org",
		Component:    "main",
		Architecture: "amd64",
		IndexType:    dpkg.IndexTypePackages,
	}, main)
	require.Contains(t, main.FileName, testutil.MainList)
	require.Equal(t, "deb.debian.org stable/main amd64 (o=Debian,l=Debian,n=bookworm) "+main.FileName, main.String())
}

func TestDependency(t *testing.T) {
	c := fixtureCache(t)
	it, err := c.FindByName(context.Background(), "apt")
	require.NoError(t, err)
	defer it.Close()
	pkg, _ := it.Step()
	vers := pkg.Versions()
	defer vers.Close()
	v, _ := vers.Step()

	deps := slices.Collect(cursor.Map(v.Dependencies(), NewDependency))
	var lines []string
	for _, d := range deps {
		lines = append(lines, d.String())
	}
	require.Equal(t, []string{
		"Depends: libc6:amd64 (>= 2.34)",
		"Depends: <unknown> (>= 2.6.1)",
		"Depends: <unknown>",
		"Depends: <unknown>",
		"Recommends: <unknown>",
	}, lines)
}
