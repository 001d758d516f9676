//go:build hdf5

package h5layout

import (
	"gonum.org/v1/hdf5"
)

// File is an HDF5 file opened read-only.
type File struct {
	f *hdf5.File
}

func Open(path string) (*File, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

func (f *File) Has(name string) bool {
	return f.f.LinkExists(name)
}

func (f *File) Close() error {
	return f.f.Close()
}
