// Package mmfile maps index files read-only into memory.
package mmfile

import "sync"

// File is a read-only view of a file's contents. Bytes stays valid until
// Close; slices taken from it must not outlive the File.
type File struct {
	data  []byte
	once  sync.Once
	unmap func() error
	err   error
}

// Open maps the file at path. Empty files yield an empty, valid File.
func Open(path string) (*File, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	return &File{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped contents.
func (f *File) Bytes() []byte { return f.data }

// Close releases the mapping. Subsequent calls return the first result.
func (f *File) Close() error {
	f.once.Do(func() {
		if f.unmap != nil {
			f.err = f.unmap()
		}
		f.data = nil
	})
	return f.err
}
