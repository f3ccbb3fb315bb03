package debver

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pault.ag/go/debian/version"
)

// dpkg --compare-versions results
func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"3.0", "3.1", -1},
		{"3.1", "3.0", 1},
		{"3.0", "3.0", 0},
		{"3.0~1", "3.0", -1},
		{"3.0~~", "3.0~", -1},
		{"3.0~", "3.0", -1},
		{"3.0", "3.0+1", -1},
		{"3.0a", "3.0", 1},
		{"3.0a", "3.0+", -1},
		{"1:0.1", "9.9", 1},
		{"0:1.0", "1.0", 0},
		{"1.0-1", "1.0-2", -1},
		{"1.0-10", "1.0-9", 1},
		{"1.0", "1.0-0", 0},
		{"1.01", "1.1", 0},
		{"2.6.1", "2.6.10", -1},
		{"7.88.1-10+deb12u5", "7.88.1-10+deb12u4", 1},
		{"1.2.3-1ubuntu1", "1.2.3-1", 1},
		{"", "", 0},
		{"", "0", 0},
		{"a", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			require.Equal(t, tt.want, Compare(tt.a, tt.b))
			require.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestCompare_SortOrder(t *testing.T) {
	versions := []string{"3.0", "3.1", "3.0~1"}
	slices.SortFunc(versions, Compare)
	require.Equal(t, []string{"3.0~1", "3.0", "3.1"}, versions)
}

func TestSplit(t *testing.T) {
	require.Equal(t, version.Version{Epoch: 2, Version: "1.4-2", Revision: "3"}, Split("2:1.4-2-3"))
	require.Equal(t, version.Version{Version: "1.0"}, Split("1.0"))

	// a colon after a non-numeric prefix is not an epoch
	v := Split("abc:1.0")
	require.Zero(t, v.Epoch)
	require.Equal(t, "abc:1.0", v.Version)
}

func TestHasEpoch(t *testing.T) {
	require.True(t, HasEpoch("1:0.9-1"))
	require.False(t, HasEpoch("0:1.0"))
	require.False(t, HasEpoch("2.36-9+deb12u4"))
	require.False(t, HasEpoch("abc:1.0"))
}

func TestParse(t *testing.T) {
	v, err := Parse(" 1:2.36-9+deb12u4 ")
	require.NoError(t, err)
	require.Equal(t, version.Version{Epoch: 1, Version: "2.36", Revision: "9+deb12u4"}, v)

	for _, bad := range []string{"", "x:1.0", "1.0 beta", "1:-3"} {
		_, err = Parse(bad)
		require.ErrorIs(t, err, ErrInvalid, bad)
	}
}
