package volume

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/emfs/pkg/namespace/path"
)

// File is a handle of the volume file.
type File struct {
	handle
}

// IsDir implements Entry.
func (f *File) IsDir() bool {
	return false
}

// Refresh re-resolves the handle.
func (f *File) Refresh() error {
	return f.refresh()
}

func (f *File) requireResolved() error {
	if err := f.refresh(); err != nil {
		return err
	}
	if f.state != Resolved {
		return fmt.Errorf("%w: %s", ErrFileNotFound, f.path)
	}
	return nil
}

// Length returns payload size as of the last resolution.
func (f *File) Length() int64 {
	return f.entry.Size
}

// Extension returns file name extension including the dot.
func (f *File) Extension() string {
	return path.Ext(f.path)
}

// DirectoryName returns canonical path of the directory containing f.
func (f *File) DirectoryName() string {
	p, _ := path.Parent(f.path)
	return p
}

// Directory returns handle of the directory containing f.
func (f *File) Directory() (*Directory, error) {
	return f.parent()
}

// OpenRead returns a reader of the file content and updates the file
// access time.
func (f *File) OpenRead() (*Reader, error) {
	data, err := f.v.idx.ReadPayload(f.path)
	if err != nil {
		return nil, err
	}

	if !f.v.readOnly {
		if err := f.v.idx.Touch(f.path); err != nil {
			return nil, err
		}
	}

	if err := f.refresh(); err != nil {
		return nil, err
	}

	return &Reader{Reader: bytes.NewReader(data)}, nil
}

// ensure creates the file if it is missing and returns its content.
// Access time of an existing file is updated.
func (f *File) ensure() ([]byte, error) {
	data, err := f.v.idx.ReadPayload(f.path)
	if err == nil {
		if !f.v.readOnly {
			if err := f.v.idx.Touch(f.path); err != nil {
				return nil, err
			}
		}
		return data, f.refresh()
	}
	if !isNotFound(err) {
		return nil, err
	}

	if _, err := f.v.idx.CreateFile(f.path); err != nil {
		return nil, err
	}

	f.state = Unresolved
	return nil, f.refresh()
}

// OpenWrite opens the file for writing from the beginning creating it if
// necessary. Existing content is overwritten but not truncated, use
// Writer.Truncate for that. The parent directory must exist.
func (f *File) OpenWrite() (*Writer, error) {
	data, err := f.ensure()
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, buf: data}, nil
}

// OpenAppend opens the file for writing at its end creating it if
// necessary.
func (f *File) OpenAppend() (*Writer, error) {
	data, err := f.ensure()
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, buf: data, pos: len(data)}, nil
}

// Create is the same as OpenWrite.
func (f *File) Create() (*Writer, error) {
	return f.OpenWrite()
}

// CopyTo copies the file to dest. Existing dest is overwritten only if
// overwrite is set.
func (f *File) CopyTo(dest string, overwrite bool) (*File, error) {
	if err := f.requireResolved(); err != nil {
		return nil, err
	}

	dest, err := path.File(dest)
	if err != nil {
		return nil, err
	}

	if err := f.v.idx.CopyFile(f.path, dest, overwrite); err != nil {
		return nil, err
	}
	return f.v.File(dest)
}

// MoveTo renames the file to dest. The parent of dest must exist and
// dest must be free. The handle points to dest afterwards.
func (f *File) MoveTo(dest string) error {
	if err := f.requireResolved(); err != nil {
		return err
	}

	dest, err := path.File(dest)
	if err != nil {
		return err
	}

	if err := f.v.idx.Rename(f.path, dest); err != nil {
		return err
	}
	return f.rebind(dest)
}

// Delete removes the file.
func (f *File) Delete() error {
	if err := f.v.idx.Remove(f.path); err != nil {
		return err
	}

	f.state = Deleted
	return f.refresh()
}
