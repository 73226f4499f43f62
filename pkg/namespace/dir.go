package namespace

import (
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
)

// CreateDirectory creates canonical directory dir with every missing
// ancestor. Existing directories are left intact. Returns ErrPathCollision
// if a file occupies any of the paths.
func (x *Index) CreateDirectory(dir string) (err error) {
	defer x.elapsed("CreateDirectory", &err)()

	if err := checkDir(dir); err != nil {
		return err
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		return ensureDirectories(tx, dir, time.Now())
	})

	x.write("CREATE DIRECTORY", dir, err)
	return storeError(err)
}

func ensureDirectories(tx recordstore.Tx, dir string, now time.Time) error {
	for _, p := range path.Ancestors(dir) {
		ok, err := exists(tx, p)
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		if !path.IsRoot(p) {
			ok, err = exists(tx, strings.TrimSuffix(p, path.Separator))
			if err != nil {
				return err
			}
			if ok {
				return fmt.Errorf("%w: file %s", ErrPathCollision, strings.TrimSuffix(p, path.Separator))
			}
		}

		if _, err := tx.Put(recordstore.Record{Meta: newMeta(p, now), Revision: now}); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDirectory removes canonical directory dir. Missing directory is
// not an error.
func (x *Index) DeleteDirectory(dir string) (err error) {
	defer x.elapsed("DeleteDirectory", &err)()

	if err := checkDir(dir); err != nil {
		return err
	}
	if path.IsRoot(dir) {
		return ErrRootProtected
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		id, err := tx.Lookup(KeyPath, dir)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}

		err = tx.FindIndexed(KeyPath, dir, true, func(rec recordstore.Record) error {
			if path.IsChild(rec.Meta[KeyPath], dir) {
				return fmt.Errorf("%w: %s", ErrDirectoryNotEmpty, dir)
			}
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Delete(id)
	})

	x.forget(dir)
	x.write("DELETE DIRECTORY", dir, err)
	return storeError(err)
}

// MoveSubtree renames canonical directory oldDir to newDir re-pointing
// every descendant. All the changes are applied atomically.
func (x *Index) MoveSubtree(oldDir, newDir string) (err error) {
	defer x.elapsed("MoveSubtree", &err)()

	if err := checkDir(oldDir); err != nil {
		return err
	}
	if err := checkDir(newDir); err != nil {
		return err
	}
	if path.IsRoot(oldDir) {
		return ErrRootProtected
	}
	if strings.HasPrefix(newDir, oldDir) {
		return fmt.Errorf("%w: can't move %s into itself", ErrInvalidPath, oldDir)
	}

	var moved int
	err = x.st.Update(func(tx recordstore.Tx) error {
		ok, err := exists(tx, oldDir)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, oldDir)
		}

		if err := checkTarget(tx, newDir); err != nil {
			return err
		}

		return tx.FindIndexed(KeyPath, oldDir, true, func(rec recordstore.Record) error {
			rec.Meta[KeyPath] = path.Rebase(rec.Meta[KeyPath], oldDir, newDir)
			moved++
			return tx.UpdateMeta(rec.ID, rec.Meta)
		})
	})

	x.purge()
	x.write("MOVE SUBTREE", oldDir+" -> "+newDir, err)
	if err == nil {
		x.log.Debug("subtree moved", fieldCount(moved))
	}
	return storeError(err)
}

// checkTarget verifies that canonical p can become a new entry: its
// parent exists and neither file nor directory occupies it.
func checkTarget(tx recordstore.Reader, p string) error {
	parent, err := path.Parent(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	ok, err := exists(tx, parent)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, parent)
	}

	file, dir := strings.TrimSuffix(p, path.Separator), p
	if !path.IsDir(p) {
		dir = p + path.Separator
	}

	for _, candidate := range []string{file, dir} {
		ok, err := exists(tx, candidate)
		if err != nil {
			return err
		}
		if ok {
			if candidate == file {
				return fmt.Errorf("%w: %s", ErrFileExists, file)
			}
			return fmt.Errorf("%w: directory %s", ErrPathCollision, dir)
		}
	}
	return nil
}
