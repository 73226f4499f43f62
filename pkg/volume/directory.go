package volume

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
)

// Directory is a handle of the volume directory.
type Directory struct {
	handle
}

// IsDir implements Entry.
func (d *Directory) IsDir() bool {
	return true
}

// Refresh re-resolves the handle.
func (d *Directory) Refresh() error {
	return d.refresh()
}

func (d *Directory) requireResolved() error {
	if err := d.refresh(); err != nil {
		return err
	}
	if d.state != Resolved {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, d.path)
	}
	return nil
}

// Create creates the directory and all its missing ancestors. Existing
// directory is left intact.
func (d *Directory) Create() error {
	if err := d.v.idx.CreateDirectory(d.path); err != nil {
		return err
	}
	d.state = Unresolved
	return d.refresh()
}

// CreateSubdirectory creates directory rel relative to d.
func (d *Directory) CreateSubdirectory(rel string) (*Directory, error) {
	p, err := path.Directory(path.Join(d.path, rel))
	if err != nil {
		return nil, err
	}

	sub := &Directory{handle{v: d.v, path: p}}
	if err := sub.Create(); err != nil {
		return nil, err
	}
	return sub, nil
}

func (d *Directory) children() ([]namespace.Entry, error) {
	if err := d.requireResolved(); err != nil {
		return nil, err
	}
	return d.v.idx.ListChildren(d.path)
}

// Files returns handles of the files located right in d.
func (d *Directory) Files() ([]*File, error) {
	return d.files(nil)
}

// FilesMatching returns handles of the files located right in d whose
// names match the wildcard pattern.
func (d *Directory) FilesMatching(pattern string) ([]*File, error) {
	re, err := path.Pattern(pattern)
	if err != nil {
		return nil, err
	}
	return d.files(re)
}

func (d *Directory) files(re *regexp.Regexp) ([]*File, error) {
	entries, err := d.children()
	if err != nil {
		return nil, err
	}

	var res []*File
	for i := range entries {
		if entries[i].IsDir() || re != nil && !re.MatchString(entries[i].Path) {
			continue
		}
		res = append(res, &File{handle{v: d.v, path: entries[i].Path, state: Resolved, entry: entries[i]}})
	}
	return res, nil
}

// Directories returns handles of the immediate subdirectories of d.
func (d *Directory) Directories() ([]*Directory, error) {
	return d.directories(nil)
}

// DirectoriesMatching returns handles of the immediate subdirectories of
// d whose names match the wildcard pattern.
func (d *Directory) DirectoriesMatching(pattern string) ([]*Directory, error) {
	re, err := path.Pattern(pattern)
	if err != nil {
		return nil, err
	}
	return d.directories(re)
}

func (d *Directory) directories(re *regexp.Regexp) ([]*Directory, error) {
	entries, err := d.children()
	if err != nil {
		return nil, err
	}

	var res []*Directory
	for i := range entries {
		if !entries[i].IsDir() || re != nil && !re.MatchString(strings.TrimSuffix(entries[i].Path, path.Separator)) {
			continue
		}
		res = append(res, &Directory{handle{v: d.v, path: entries[i].Path, state: Resolved, entry: entries[i]}})
	}
	return res, nil
}

// Entries returns handles of all the immediate children of d sorted by
// path.
func (d *Directory) Entries() ([]Entry, error) {
	entries, err := d.children()
	if err != nil {
		return nil, err
	}

	res := make([]Entry, 0, len(entries))
	for i := range entries {
		h := handle{v: d.v, path: entries[i].Path, state: Resolved, entry: entries[i]}
		if entries[i].IsDir() {
			res = append(res, &Directory{h})
		} else {
			res = append(res, &File{h})
		}
	}
	return res, nil
}

// Delete removes the empty directory.
func (d *Directory) Delete() error {
	if err := d.requireResolved(); err != nil {
		return err
	}

	if err := d.v.idx.DeleteDirectory(d.path); err != nil {
		return err
	}

	d.state = Deleted
	return d.refresh()
}

// MoveTo moves the directory with all its content to dest. The parent of
// dest must exist. The handle points to dest afterwards.
func (d *Directory) MoveTo(dest string) error {
	if err := d.requireResolved(); err != nil {
		return err
	}

	dest, err := path.Directory(dest)
	if err != nil {
		return err
	}

	if err := d.v.idx.MoveSubtree(d.path, dest); err != nil {
		return err
	}
	return d.rebind(dest)
}

// Parent returns the handle of the parent directory or nil for the root.
func (d *Directory) Parent() (*Directory, error) {
	return d.parent()
}

// Root returns the root directory handle.
func (d *Directory) Root() *Directory {
	return d.v.Root()
}
