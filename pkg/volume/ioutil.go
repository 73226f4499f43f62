package volume

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
)

// SkipDir is returned by WalkFunc to skip the content of the directory.
var SkipDir = errors.New("skip this directory")

// WalkFunc is called by Walk for every visited entry.
type WalkFunc func(e namespace.Entry) error

// Exists checks whether a file or directory with path p exists.
func (v *Volume) Exists(p string) (bool, error) {
	ok, err := v.FileExists(p)
	if err != nil || ok {
		return ok, err
	}
	return v.DirExists(p)
}

// FileExists checks whether file p exists.
func (v *Volume) FileExists(p string) (bool, error) {
	if strings.HasSuffix(p, path.Separator) || strings.HasSuffix(p, path.AltSeparator) {
		return false, nil
	}

	f, err := path.File(p)
	if err != nil {
		return false, err
	}
	return v.idx.Exists(f)
}

// DirExists checks whether directory p exists.
func (v *Volume) DirExists(p string) (bool, error) {
	p, err := path.Directory(p)
	if err != nil {
		return false, err
	}
	return v.idx.Exists(p)
}

// ReadFile returns the content of file p.
func (v *Volume) ReadFile(p string) ([]byte, error) {
	f, err := v.File(p)
	if err != nil {
		return nil, err
	}

	r, err := f.OpenRead()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (v *Volume) write(p string, data []byte, appendMode bool) error {
	f, err := v.File(p)
	if err != nil {
		return err
	}

	var w *Writer
	if appendMode {
		w, err = f.OpenAppend()
	} else {
		w, err = f.OpenWrite()
		if err == nil {
			err = w.Truncate(0)
		}
	}
	if err != nil {
		if w != nil {
			_ = w.Close()
		}
		return err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// WriteFile replaces the content of file p creating it if necessary.
func (v *Volume) WriteFile(p string, data []byte) error {
	return v.write(p, data, false)
}

// AppendFile appends data to file p creating it if necessary.
func (v *Volume) AppendFile(p string, data []byte) error {
	return v.write(p, data, true)
}

// ReadText returns the content of file p as a string.
func (v *Volume) ReadText(p string) (string, error) {
	data, err := v.ReadFile(p)
	return string(data), err
}

// WriteText replaces the content of file p with s.
func (v *Volume) WriteText(p string, s string) error {
	return v.WriteFile(p, []byte(s))
}

// ReadLines returns lines of file p without line terminators.
func (v *Volume) ReadLines(p string) ([]string, error) {
	data, err := v.ReadFile(p)
	if err != nil {
		return nil, err
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(nil, len(data)+bufio.MaxScanTokenSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func joinLines(lines []string) []byte {
	var b bytes.Buffer
	for i := range lines {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// WriteLines replaces the content of file p with newline terminated lines.
func (v *Volume) WriteLines(p string, lines []string) error {
	return v.WriteFile(p, joinLines(lines))
}

// AppendLines appends newline terminated lines to file p.
func (v *Volume) AppendLines(p string, lines []string) error {
	return v.AppendFile(p, joinLines(lines))
}

// CopyFile copies file src to dst.
func (v *Volume) CopyFile(src, dst string, overwrite bool) error {
	f, err := v.File(src)
	if err != nil {
		return err
	}
	_, err = f.CopyTo(dst, overwrite)
	return err
}

// MoveFile renames file src to dst.
func (v *Volume) MoveFile(src, dst string) error {
	f, err := v.File(src)
	if err != nil {
		return err
	}
	return f.MoveTo(dst)
}

// Remove deletes file p. Missing file is not an error.
func (v *Volume) Remove(p string) error {
	f, err := v.File(p)
	if err != nil {
		return err
	}

	err = f.Delete()
	if isNotFound(err) {
		return nil
	}
	return err
}

// MkdirAll creates directory p with all missing ancestors.
func (v *Volume) MkdirAll(p string) error {
	d, err := v.Directory(p)
	if err != nil {
		return err
	}
	return d.Create()
}

// RemoveDir deletes empty directory p. Missing directory is not an error.
func (v *Volume) RemoveDir(p string) error {
	d, err := v.Directory(p)
	if err != nil {
		return err
	}

	err = d.Delete()
	if isNotFound(err) {
		return nil
	}
	return err
}

// RemoveAll deletes directory p with all its content. The root directory
// itself is kept. Missing directory is not an error.
func (v *Volume) RemoveAll(p string) error {
	dir, err := path.Directory(p)
	if err != nil {
		return err
	}

	var files, dirs []string
	err = v.Walk(dir, func(e namespace.Entry) error {
		if e.IsDir() {
			dirs = append(dirs, e.Path)
		} else {
			files = append(files, e.Path)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	for i := range files {
		if err := v.idx.Remove(files[i]); err != nil {
			return err
		}
	}

	// Walk visits parents first, so delete in reverse order.
	for i := len(dirs) - 1; i >= 0; i-- {
		if path.IsRoot(dirs[i]) {
			continue
		}
		if err := v.idx.DeleteDirectory(dirs[i]); err != nil {
			return err
		}
	}
	return nil
}

// MoveDir moves directory src with its content to dst.
func (v *Volume) MoveDir(src, dst string) error {
	d, err := v.Directory(src)
	if err != nil {
		return err
	}
	return d.MoveTo(dst)
}

// ReadDir returns immediate children of directory p sorted by path.
func (v *Volume) ReadDir(p string) ([]namespace.Entry, error) {
	dir, err := path.Directory(p)
	if err != nil {
		return nil, err
	}

	ok, err := v.idx.Exists(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	return v.idx.ListChildren(dir)
}

// Glob returns immediate children of directory p whose names match the
// wildcard pattern.
func (v *Volume) Glob(p string, pattern string) ([]namespace.Entry, error) {
	re, err := path.Pattern(pattern)
	if err != nil {
		return nil, err
	}

	entries, err := v.ReadDir(p)
	if err != nil {
		return nil, err
	}

	res := entries[:0]
	for i := range entries {
		if re.MatchString(strings.TrimSuffix(entries[i].Path, path.Separator)) {
			res = append(res, entries[i])
		}
	}
	return res, nil
}

// GetTimes returns creation, last access and last write times of entry p.
// Directory paths must end with a separator.
func (v *Volume) GetTimes(p string) (namespace.Times, error) {
	e, err := v.lookup(p)
	if err != nil {
		return namespace.Times{}, err
	}
	return namespace.Times{
		Creation: &e.CreationTime,
		Access:   &e.LastAccessTime,
		Write:    &e.LastWriteTime,
	}, nil
}

// Chtimes sets last access and last write times of entry p.
func (v *Volume) Chtimes(p string, atime, mtime time.Time) error {
	e, err := v.lookup(p)
	if err != nil {
		return err
	}
	return v.idx.SetTimes(e.Path, namespace.Times{Access: &atime, Write: &mtime})
}

// lookup resolves p as a file if it can denote one, as a directory
// otherwise.
func (v *Volume) lookup(p string) (namespace.Entry, error) {
	if f, err := path.File(p); err == nil {
		e, err := v.idx.Lookup(f)
		if !isNotFound(err) {
			return e, err
		}
	}

	d, err := path.Directory(p)
	if err != nil {
		return namespace.Entry{}, err
	}
	return v.idx.Lookup(d)
}

// Walk traverses directory p depth-first calling fn for p itself and
// every entry below it. Children are visited in path order. If fn
// returns SkipDir for a directory, its content is skipped.
func (v *Volume) Walk(p string, fn WalkFunc) error {
	dir, err := path.Directory(p)
	if err != nil {
		return err
	}

	e, err := v.idx.Lookup(dir)
	if err != nil {
		return err
	}
	return v.walk(e, fn)
}

func (v *Volume) walk(e namespace.Entry, fn WalkFunc) error {
	if err := fn(e); err != nil {
		if errors.Is(err, SkipDir) && e.IsDir() {
			return nil
		}
		return err
	}

	if !e.IsDir() {
		return nil
	}

	children, err := v.idx.ListChildren(e.Path)
	if err != nil {
		return err
	}

	for i := range children {
		if err := v.walk(children[i], fn); err != nil {
			return err
		}
	}
	return nil
}

// ImportFile copies the host file src into the volume file dst.
func (v *Volume) ImportFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read host file: %w", err)
	}
	return v.WriteFile(dst, data)
}

// ExportFile copies the volume file src to the host file dst.
func (v *Volume) ExportFile(src, dst string) error {
	data, err := v.ReadFile(src)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write host file: %w", err)
	}
	return nil
}
