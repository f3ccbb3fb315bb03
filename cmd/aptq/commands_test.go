package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/aptkit/internal/debver"
)

func TestListCommand(t *testing.T) {
	tests := []struct {
		name           string
		installed      bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name: "all packages",
			wantContain: []string{
				"apt [ amd64 ] < 2.6.1 > ( admin )",
				"libc6 [ amd64 ] < 2.36-9+deb12u4 -> 2.36-9+deb12u7 > ( libs )",
				"hello [ amd64 ] < none -> 2.10-3 | 2.10-5~bpo12+1 > ( devel )",
				"oldpkg [ amd64 ] < none > ( none )",
				"libc6 [ i386 ]",
			},
		},
		{
			name:           "installed only",
			installed:      true,
			wantContain:    []string{"apt [ amd64 ]", "bash [ amd64 ]", "libc6 [ amd64 ]"},
			wantNotContain: []string{"hello", "oldpkg", "epochpkg", "[ i386 ]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCommand(t, false)
			listInstalled = tt.installed

			output, err := captureOutput(t, func() error {
				return runList(context.Background())
			})
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestListCommand_JSON(t *testing.T) {
	setupCommand(t, true)
	output, err := captureOutput(t, func() error {
		return runList(context.Background())
	})
	require.NoError(t, err)

	var got struct {
		Count    int `json:"count"`
		Packages []struct {
			Name string `json:"name"`
			Arch string `json:"arch"`
		} `json:"packages"`
	}
	assertJSON(t, output, &got)
	require.Equal(t, 7, got.Count)
	require.Len(t, got.Packages, 7)
	require.Equal(t, "apt", got.Packages[0].Name)
	require.Equal(t, "i386", got.Packages[6].Arch)
}

func TestPolicyCommand(t *testing.T) {
	setupCommand(t, false)
	output, err := captureOutput(t, func() error {
		return runPolicy(context.Background(), "hello")
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"hello [ amd64 ] < none -> 2.10-3 | 2.10-5~bpo12+1 > ( devel )",
		"2.10-5~bpo12+1:amd64 in devel from hello:2.10-5~bpo12+1 at 100",
		"2.10-3:amd64 in devel from hello:2.10-3 at 500",
		"bookworm-backports/main",
		"stable/main",
	})

	// highest version first
	require.Less(t, strings.Index(output, "2.10-5~bpo12+1:amd64"), strings.Index(output, "2.10-3:amd64"))
}

func TestPolicyCommand_Unknown(t *testing.T) {
	setupCommand(t, false)
	_, err := captureOutput(t, func() error {
		return runPolicy(context.Background(), "no-such-package")
	})
	require.ErrorContains(t, err, "unrecognised package: no-such-package")
}

func TestPolicyCommand_JSON(t *testing.T) {
	setupCommand(t, true)
	output, err := captureOutput(t, func() error {
		return runPolicy(context.Background(), "libc6:i386")
	})
	require.NoError(t, err)

	var got struct {
		Package struct {
			Arch string `json:"arch"`
		} `json:"package"`
		Versions []any `json:"versions"`
	}
	assertJSON(t, output, &got)
	require.Equal(t, "i386", got.Package.Arch)
	require.Len(t, got.Versions, 1)
}

func TestSourcesCommand(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		want    []string
	}{
		{
			name:    "every archive",
			archive: "",
			want: []string{
				"apt=2.6.1",
				"bash=5.2.15-2",
				"epochpkg=1:0.9-1",
				"glibc=2.36-9+deb12u4",
				"glibc=2.36-9+deb12u7",
				"hello=2.10-3",
				"hello=2.10-5~bpo12+1",
			},
		},
		{
			name:    "backports",
			archive: "bookworm-backports",
			want:    []string{"hello=2.10-5~bpo12+1"},
		},
		{
			name:    "installed",
			archive: "now",
			want: []string{
				"apt=2.6.1",
				"bash=5.2.15-2",
				"glibc=2.36-9+deb12u4",
			},
		},
		{
			name:    "unknown archive",
			archive: "sid",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCommand(t, false)
			output, err := captureOutput(t, func() error {
				return runSources(context.Background(), tt.archive)
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, strings.Fields(output))
		})
	}
}

func TestEpochsCommand(t *testing.T) {
	setupCommand(t, false)
	output, err := captureOutput(t, func() error {
		return runEpochs(context.Background())
	})
	require.NoError(t, err)
	require.Equal(t, "epochpkg:amd64\n", output)
}

func TestCompareCommand(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"3.0~1", "3.0", "3.0~1 < 3.0"},
		{"1:0.1", "9.9", "1:0.1 > 9.9"},
		{"0:1.0", "1.0", "0:1.0 = 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			setupCommand(t, false)
			output, err := captureOutput(t, func() error {
				return runCompare(context.Background(), tt.a, tt.b)
			})
			require.NoError(t, err)
			require.Equal(t, tt.want+"\n", output)
		})
	}
}

func TestCompareCommand_RejectsNUL(t *testing.T) {
	setupCommand(t, false)
	_, err := captureOutput(t, func() error {
		return runCompare(context.Background(), "1.0\x00", "1.0")
	})
	require.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	setupCommand(t, false)
	output, err := captureOutput(t, func() error {
		return runShow(context.Background(), "apt")
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"Package: apt",
		"Version: 2.6.1",
		"Section: admin",
		"Priority: important",
		"Pin-Priority: 500",
		"Maintainer: APT Development Team <deity@lists.debian.org>",
		"Depends: libc6:amd64 (>= 2.34)",
		"Depends: <unknown> (>= 2.6.1)",
		"Recommends: <unknown>",
		"Description: commandline package manager",
	})
	assertNotContains(t, output, []string{"Source:"})
}

func TestShowCommand_Version(t *testing.T) {
	setupCommand(t, false)
	showVersion = "2.36-9+deb12u4"
	output, err := captureOutput(t, func() error {
		return runShow(context.Background(), "libc6")
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"Version: 2.36-9+deb12u4",
		"Source: glibc (2.36-9+deb12u4)",
		"Pin-Priority: 100",
		"Breaks: <unknown> (<< 1:0.9.git20220818-1)",
	})

	showVersion = "9.9"
	_, err = captureOutput(t, func() error {
		return runShow(context.Background(), "libc6")
	})
	require.ErrorContains(t, err, "has no version 9.9")

	// an explicit zero epoch names the same version
	showVersion = "0:2.36-9+deb12u4"
	output, err = captureOutput(t, func() error {
		return runShow(context.Background(), "libc6")
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"Version: 2.36-9+deb12u4"})
}

func TestShowCommand_InvalidVersion(t *testing.T) {
	setupCommand(t, false)
	showVersion = "not a version"
	_, err := captureOutput(t, func() error {
		return runShow(context.Background(), "libc6")
	})
	require.ErrorIs(t, err, debver.ErrInvalid)
}

func TestShowCommand_NoVersions(t *testing.T) {
	setupCommand(t, false)
	_, err := captureOutput(t, func() error {
		return runShow(context.Background(), "oldpkg")
	})
	require.ErrorContains(t, err, "has no versions")
}

func TestShowCommand_JSON(t *testing.T) {
	setupCommand(t, true)
	output, err := captureOutput(t, func() error {
		return runShow(context.Background(), "hello")
	})
	require.NoError(t, err)

	var got struct {
		Version struct {
			Version  string `json:"version"`
			Priority int    `json:"priority"`
		} `json:"version"`
		Dependencies []any `json:"dependencies"`
	}
	assertJSON(t, output, &got)
	require.Equal(t, "2.10-3", got.Version.Version)
	require.Equal(t, 500, got.Version.Priority)
	require.Len(t, got.Dependencies, 2)
}

func TestReloadCommand(t *testing.T) {
	setupCommand(t, true)
	output, err := captureOutput(t, func() error {
		return runReload(context.Background())
	})
	require.NoError(t, err)

	var got struct {
		Before int `json:"before"`
		After  int `json:"after"`
	}
	assertJSON(t, output, &got)
	require.Equal(t, 7, got.Before)
	require.Equal(t, 7, got.After)
}

func TestConfigCommand(t *testing.T) {
	root := setupCommand(t, false)
	output, err := captureOutput(t, runConfig)
	require.NoError(t, err)
	assertContains(t, output, []string{
		"root = ", root.Dir,
		"architecture = ", "amd64",
		"status_file = ", "var/lib/dpkg/status",
	})
	assertNotContains(t, output, []string{"Logger", "logger"})
}

func TestQuietSuppressesOutput(t *testing.T) {
	setupCommand(t, false)
	quiet = true
	t.Cleanup(func() { quiet = false })
	output, err := captureOutput(t, func() error {
		return runList(context.Background())
	})
	require.NoError(t, err)
	require.Empty(t, output)
}
