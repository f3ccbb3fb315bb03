package testutil

import "testing"

// FixtureArch is the native architecture the Debian fixture is built for.
const FixtureArch = "amd64"

// List file names used by the Debian fixture.
const (
	MainList      = "deb.debian.org_debian_dists_bookworm_main_binary-amd64_Packages"
	MainI386List  = "deb.debian.org_debian_dists_bookworm_main_binary-i386_Packages"
	BackportsList = "deb.debian.org_debian_dists_bookworm-backports_main_binary-amd64_Packages.gz"
	MainRelease   = "deb.debian.org_debian_dists_bookworm_InRelease"
	BackportsRel  = "deb.debian.org_debian_dists_bookworm-backports_Release"
)

// FixtureStatus is the dpkg status database of the Debian fixture.
const FixtureStatus = `Package: apt
Status: install ok installed
Priority: important
Section: admin
Installed-Size: 4156
Maintainer: APT Development Team <deity@lists.debian.org>
Architecture: amd64
Version: 2.6.1
Depends: libc6 (>= 2.34), libapt-pkg6.0 (>= 2.6.1), adduser | base-passwd
Recommends: ca-certificates
Description: commandline package manager
 This package provides commandline tools for searching and
 managing as well as querying information about packages.
 .
 apt-get is the command-line tool for handling packages.

Package: bash
Essential: yes
Status: install ok installed
Priority: required
Section: shells
Maintainer: Matthias Klose <doko@debian.org>
Architecture: amd64
Source: bash (5.2.15-2)
Version: 5.2.15-2+b2
Pre-Depends: libc6 (>= 2.36), libtinfo6 (>= 6)
Description: GNU Bourne Again SHell

Package: oldpkg
Status: deinstall ok config-files
Priority: optional
Section: misc
Architecture: amd64
Version: 0.1-1
Description: removed package with leftover configuration

Package: libc6
Status: install ok installed
Priority: optional
Section: libs
Maintainer: GNU Libc Maintainers <debian-glibc@lists.debian.org>
Architecture: amd64
Source: glibc
Version: 2.36-9+deb12u4
Breaks: hurd (<< 1:0.9.git20220818-1)
Description: GNU C Library: Shared libraries
`

// FixtureMain is the bookworm main index for amd64.
const FixtureMain = `Package: apt
Version: 2.6.1
Installed-Size: 4156
Maintainer: APT Development Team <deity@lists.debian.org>
Architecture: amd64
Depends: libc6 (>= 2.34), libapt-pkg6.0 (>= 2.6.1), adduser | base-passwd
Recommends: ca-certificates
Description: commandline package manager
 This package provides commandline tools for searching and
 managing as well as querying information about packages.
 .
 apt-get is the command-line tool for handling packages.
Homepage: https://wiki.debian.org/Apt
Section: admin
Priority: important

Package: bash
Source: bash (5.2.15-2)
Version: 5.2.15-2+b2
Architecture: amd64
Maintainer: Matthias Klose <doko@debian.org>
Description: GNU Bourne Again SHell
Homepage: http://tiswww.case.edu/php/chet/bash/bashtop.html
Section: shells
Priority: required

Package: libc6
Source: glibc
Version: 2.36-9+deb12u7
Architecture: amd64
Maintainer: GNU Libc Maintainers <debian-glibc@lists.debian.org>
Description: GNU C Library: Shared libraries
Section: libs
Priority: optional

Package: epochpkg
Version: 1:0.9-1
Architecture: all
Maintainer: Nobody <nobody@example.org>
Depends: python3:any, libc6:i386 (>= 2.36) [amd64]
Description: package with an epoch
Section: misc
Priority: optional

Package: hello
Version: 2.10-3
Architecture: amd64
Maintainer: Santiago Vila <sanvila@debian.org>
Depends: libc6 (>= 2.34)
Conflicts: hello-traditional
Description: example package based on GNU hello
Homepage: https://www.gnu.org/software/hello/
Section: devel
Priority: optional
`

// FixtureMainI386 is the bookworm main index for the foreign i386 architecture.
const FixtureMainI386 = `Package: libc6
Source: glibc
Version: 2.36-9+deb12u7
Architecture: i386
Maintainer: GNU Libc Maintainers <debian-glibc@lists.debian.org>
Description: GNU C Library: Shared libraries
Section: libs
Priority: optional
`

// FixtureBackports is the bookworm-backports index, stored gzip compressed.
const FixtureBackports = `Package: hello
Version: 2.10-5~bpo12+1
Architecture: amd64
Maintainer: Santiago Vila <sanvila@debian.org>
Description: example package based on GNU hello
Section: devel
Priority: optional
`

// FixtureInRelease is the clearsigned Release file of bookworm.
const FixtureInRelease = `-----BEGIN PGP SIGNED MESSAGE-----
Hash: SHA256

Origin: Debian
Label: Debian
Suite: stable
Version: 12.5
Codename: bookworm
Architectures: amd64 arm64 i386
Components: main contrib non-free-firmware
-----BEGIN PGP SIGNATURE-----

iQIzBAEBCAAdFiEE
-----END PGP SIGNATURE-----
`

// FixtureBackportsRelease marks bookworm-backports as NotAutomatic with
// automatic upgrades, as Debian does.
const FixtureBackportsRelease = `Origin: Debian Backports
Label: Debian Backports
Suite: bookworm-backports
Codename: bookworm-backports
NotAutomatic: yes
ButAutomaticUpgrades: yes
`

// DebianRoot writes a small bookworm system: four status entries, a main
// index for amd64 and i386, and a compressed backports index.
//
// Resulting packages, in build order: apt, bash, oldpkg, libc6 (status),
// hello (backports), epochpkg (main), libc6:i386.
func DebianRoot(t *testing.T) *Root {
	t.Helper()
	return NewRoot(t).
		Status(FixtureStatus).
		Arch("i386").
		List(MainList, FixtureMain).
		List(MainI386List, FixtureMainI386).
		List(BackportsList, FixtureBackports).
		List(MainRelease, FixtureInRelease).
		List(BackportsRel, FixtureBackportsRelease)
}
