package main

import "github.com/joshuapare/aptkit/apt"

// installed reports whether pkg has a current version.
func installed(pkg apt.PkgView) bool {
	_, ok := pkg.CurrentVersion()
	return ok
}
