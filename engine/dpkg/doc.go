// Package dpkg is a self-contained package-cache engine for Debian systems.
//
// It reads the dpkg status database and the indexes APT downloaded into
// /var/lib/apt/lists, and serves them through the cursor interfaces of
// package engine. Index files are memory mapped when stored plain, and
// decompressed into memory when APT keeps them gzip, zstd or lz4
// compressed. Files are parsed concurrently and merged in a fixed order:
// the status file first, then the lists sorted by name.
//
// Candidate versions follow APT's default policy: every archive is pinned
// at 500, NotAutomatic archives at 1 (100 with ButAutomaticUpgrades), and
// the installed version at 100. The highest pin wins, then the highest
// version, and the installed version is never downgraded.
package dpkg
