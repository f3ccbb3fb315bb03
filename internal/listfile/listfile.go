// Package listfile opens APT index files, decompressing them when APT was
// configured to keep its lists compressed (Acquire::GzipIndexes and the
// zstd/lz4/xz variants).
package listfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/joshuapare/aptkit/internal/mmfile"
)

// ErrUnsupportedCompression is returned for compressions that have no
// decoder here (bzip2).
var ErrUnsupportedCompression = errors.New("listfile: unsupported compression")

// Compression identifies how an index file is stored on disk.
type Compression uint8

const (
	None Compression = iota
	Gzip
	Zstd
	LZ4
	XZ
	LZMA
	Bzip2
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case Bzip2:
		return "bzip2"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Supported reports whether files with this compression can be opened.
func (c Compression) Supported() bool {
	return c <= LZMA
}

var extensions = map[string]Compression{
	".gz":   Gzip,
	".zst":  Zstd,
	".lz4":  LZ4,
	".xz":   XZ,
	".bz2":  Bzip2,
	".lzma": LZMA,
}

// Detect returns the compression implied by the file name's extension.
func Detect(name string) Compression {
	if c, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return c
	}
	return None
}

// TrimExt strips a compression extension from name, if any.
func TrimExt(name string) string {
	if Detect(name) == None {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// File holds the uncompressed contents of an index file.
type File struct {
	Path        string
	Compression Compression
	data        []byte
	mm          *mmfile.File
}

// Open returns the uncompressed contents of the index at path. Plain files
// are mapped; compressed ones are decoded into memory.
func Open(path string) (*File, error) {
	c := Detect(path)
	if !c.Supported() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedCompression, path, c)
	}
	if c == None {
		mm, err := mmfile.Open(path)
		if err != nil {
			return nil, err
		}
		return &File{Path: path, Compression: None, data: mm.Bytes(), mm: mm}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := decompress(c, bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("listfile: decompress %s: %w", path, err)
	}
	return &File{Path: path, Compression: c, data: data}, nil
}

// Bytes returns the uncompressed contents. They stay valid until Close.
func (f *File) Bytes() []byte { return f.data }

// Close releases the contents.
func (f *File) Close() error {
	f.data = nil
	if f.mm != nil {
		return f.mm.Close()
	}
	return nil
}

func decompress(c Compression, r io.Reader) ([]byte, error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case LZ4:
		return io.ReadAll(lz4.NewReader(r))
	case XZ:
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.ReadAll(zr)
	case LZMA:
		zr, err := lzma.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
}
