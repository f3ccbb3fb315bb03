package dpkg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/aptkit/internal/deb822"
)

func TestParseRelation(t *testing.T) {
	tests := []struct {
		in        string
		target    string
		arch      string
		comp, ver string
		ok        bool
	}{
		{in: "libc6", target: "libc6", ok: true},
		{in: " libc6 (>= 2.34) ", target: "libc6", comp: ">=", ver: "2.34", ok: true},
		{in: "hurd (<< 1:0.9)", target: "hurd", comp: "<<", ver: "1:0.9", ok: true},
		{in: "foo (< 2)", target: "foo", comp: "<=", ver: "2", ok: true},
		{in: "foo (> 2)", target: "foo", comp: ">=", ver: "2", ok: true},
		{in: "foo (=1.0)", target: "foo", comp: "=", ver: "1.0", ok: true},
		{in: "python3:any", target: "python3", ok: true},
		{in: "libc6:i386 (>= 2.36) [amd64]", target: "libc6", arch: "i386", comp: ">=", ver: "2.36", ok: true},
		{in: "debhelper-compat (= 13) <!nocheck>", target: "debhelper-compat", comp: "=", ver: "13", ok: true},
		{in: "gcc [!armel]", target: "gcc", ok: true},
		{in: "", ok: false},
		{in: "foo (>= )", ok: false},
		{in: "foo (~ 1)", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := parseRelation(tt.in)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			require.Equal(t, tt.target, d.target)
			require.Equal(t, tt.arch, d.arch)
			if tt.comp == "" {
				require.Nil(t, d.comp)
				require.Nil(t, d.version)
			} else {
				require.Equal(t, tt.comp, string(d.comp))
				require.Equal(t, tt.ver, string(d.version))
			}
		})
	}
}

func TestParseDeps_AlternativesAndOrder(t *testing.T) {
	stanzas, err := deb822.Parse([]byte("Package: x\nRecommends: r\nDepends: a (>= 1) | b, c\nPre-Depends: p\n"))
	require.NoError(t, err)
	deps := parseDeps(&stanzas[0], func(b []byte) []byte { return b })

	var got []string
	for _, d := range deps {
		got = append(got, string(d.depType)+" "+d.target)
	}
	require.Equal(t, []string{"Depends a", "Depends b", "Depends c", "PreDepends p", "Recommends r"}, got)
}
