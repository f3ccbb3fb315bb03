// Package testutil builds throwaway filesystem roots holding a dpkg status
// database and APT lists, for tests that need a real engine.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Default locations below a root, matching dpkg.DefaultConfig.
const (
	StatusPath = "var/lib/dpkg/status"
	ListsPath  = "var/lib/apt/lists"
	ArchPath   = "var/lib/dpkg/arch"
)

// Root is a directory laid out like the parts of a Debian system the
// engine reads.
type Root struct {
	t   *testing.T
	Dir string
}

// NewRoot creates an empty root in a test temp directory.
func NewRoot(t *testing.T) *Root {
	t.Helper()
	return &Root{t: t, Dir: t.TempDir()}
}

// Path joins rel onto the root.
func (r *Root) Path(rel string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(rel))
}

// WriteFile writes data at rel, creating parent directories.
func (r *Root) WriteFile(rel string, data []byte) string {
	r.t.Helper()
	p := r.Path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		r.t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		r.t.Fatalf("write %s: %v", rel, err)
	}
	return p
}

// Status writes the dpkg status database.
func (r *Root) Status(stanzas string) *Root {
	r.t.Helper()
	r.WriteFile(StatusPath, []byte(stanzas))
	return r
}

// Arch writes dpkg's foreign architecture list.
func (r *Root) Arch(archs ...string) *Root {
	r.t.Helper()
	var b bytes.Buffer
	for _, a := range archs {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	r.WriteFile(ArchPath, b.Bytes())
	return r
}

// List writes an APT list file. The extension of name selects the
// compression: ".gz", ".zst" and ".xz" are encoded, anything else is written
// as is.
func (r *Root) List(name, content string) *Root {
	r.t.Helper()
	data := []byte(content)
	switch filepath.Ext(name) {
	case ".gz":
		data = Gzip(r.t, data)
	case ".zst":
		data = Zstd(r.t, data)
	case ".xz":
		data = Xz(r.t, data)
	}
	r.WriteFile(filepath.Join(ListsPath, name), data)
	return r
}

// Gzip compresses data.
func Gzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	return b.Bytes()
}

// Zstd compresses data.
func Zstd(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

// Xz compresses data.
func Xz(t *testing.T, data []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw, err := xz.NewWriter(&b)
	if err != nil {
		t.Fatalf("xz: %v", err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("xz: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("xz: %v", err)
	}
	return b.Bytes()
}
