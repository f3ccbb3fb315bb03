// Package debver orders Debian package versions the way dpkg and APT do.
//
// Parsing and comparison come from pault.ag/go/debian/version. Index files
// and callers may still hand over strings that fail policy validation, so
// Compare splits leniently and orders whatever it is given, as APT does.
package debver

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pault.ag/go/debian/version"
)

// ErrInvalid is returned by Parse for strings that are not valid versions.
var ErrInvalid = errors.New("debver: invalid version")

// Parse validates s against the Debian policy syntax.
func Parse(s string) (version.Version, error) {
	v, err := version.Parse(strings.TrimSpace(s))
	if err != nil {
		return version.Version{}, fmt.Errorf("%w %q: %v", ErrInvalid, s, err)
	}
	if v.Version == "" {
		return version.Version{}, fmt.Errorf("%w %q: empty upstream version", ErrInvalid, s)
	}
	return v, nil
}

// Split divides s into epoch, upstream and revision without validating it.
// A colon after anything but digits is part of the upstream version. An
// epoch too large for uint saturates.
func Split(s string) version.Version {
	var v version.Version
	if i := strings.IndexByte(s, ':'); i >= 0 && allDigits(s[:i]) {
		epoch, _ := strconv.ParseUint(s[:i], 10, 0)
		v.Epoch = uint(epoch)
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		v.Revision = s[i+1:]
		s = s[:i]
	}
	v.Version = s
	return v
}

// Compare returns -1, 0 or +1 as a sorts before, equal to, or after b.
func Compare(a, b string) int {
	return cmp.Compare(version.Compare(Split(a), Split(b)), 0)
}

// HasEpoch reports whether s carries a non-zero epoch.
func HasEpoch(s string) bool { return Split(s).Epoch > 0 }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
