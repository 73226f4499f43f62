package namespace

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, recordstore.ErrNotFound)
}

func fieldCount(n int) zap.Field {
	return zap.Int("count", n)
}

// lookupFile resolves canonical file p inside the transaction.
func lookupFile(r recordstore.Reader, p string) (recordstore.Record, error) {
	id, err := r.Lookup(KeyPath, p)
	if err != nil {
		if isNotFound(err) {
			return recordstore.Record{}, fmt.Errorf("%w: %s", ErrFileNotFound, p)
		}
		return recordstore.Record{}, err
	}

	return r.Get(id)
}

// CreateFile creates an empty file at canonical path p. The parent
// directory must exist. Returns ErrFileExists if the file exists and
// ErrAccessDenied if p names a directory.
func (x *Index) CreateFile(p string) (e Entry, err error) {
	defer x.elapsed("CreateFile", &err)()

	if err := checkFile(p); err != nil {
		return Entry{}, err
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		ok, err := exists(tx, p+path.Separator)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: %s is a directory", ErrAccessDenied, p)
		}

		if err := checkTarget(tx, p); err != nil {
			return err
		}

		now := time.Now()
		rec := recordstore.Record{Payload: []byte{}, Meta: newMeta(p, now), Revision: now}
		rec.ID, err = tx.Put(rec)
		if err != nil {
			return err
		}

		e = entryFromRecord(rec)
		return nil
	})

	x.write("CREATE FILE", p, err)
	return e, storeError(err)
}

// Rename moves canonical file oldPath to newPath. The parent of newPath
// must exist and newPath must be free.
func (x *Index) Rename(oldPath, newPath string) (err error) {
	defer x.elapsed("Rename", &err)()

	if err := checkFile(oldPath); err != nil {
		return err
	}
	if err := checkFile(newPath); err != nil {
		return err
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		rec, err := lookupFile(tx, oldPath)
		if err != nil {
			return err
		}

		if err := checkTarget(tx, newPath); err != nil {
			return err
		}

		rec.Meta[KeyPath] = newPath
		return tx.UpdateMeta(rec.ID, rec.Meta)
	})

	x.forget(oldPath, newPath)
	x.write("RENAME", oldPath+" -> "+newPath, err)
	return storeError(err)
}

// CopyFile copies payload of canonical file src to dst. Existing dst is
// overwritten only if overwrite is set, otherwise ErrFileExists is
// returned.
func (x *Index) CopyFile(src, dst string, overwrite bool) (err error) {
	defer x.elapsed("CopyFile", &err)()

	if err := checkFile(src); err != nil {
		return err
	}
	if err := checkFile(dst); err != nil {
		return err
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		rec, err := lookupFile(tx, src)
		if err != nil {
			return err
		}

		target, err := lookupFile(tx, dst)
		switch {
		case err == nil:
			if !overwrite {
				return fmt.Errorf("%w: %s", ErrFileExists, dst)
			}
			return tx.UpdatePayload(target.ID, rec.Payload)
		case !errors.Is(err, ErrFileNotFound):
			return err
		}

		if err := checkTarget(tx, dst); err != nil {
			return err
		}

		now := time.Now()
		_, err = tx.Put(recordstore.Record{Payload: rec.Payload, Meta: newMeta(dst, now), Revision: now})
		return err
	})

	x.write("COPY", src+" -> "+dst, err)
	return storeError(err)
}

// Remove deletes canonical file p. Returns ErrFileNotFound if it is
// missing.
func (x *Index) Remove(p string) (err error) {
	defer x.elapsed("Remove", &err)()

	if err := checkFile(p); err != nil {
		return err
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		id, err := tx.Lookup(KeyPath, p)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, p)
			}
			return err
		}
		return tx.Delete(id)
	})

	x.forget(p)
	x.write("REMOVE", p, err)
	return storeError(err)
}

// WritePayload replaces payload of canonical file p and updates its last
// write time.
func (x *Index) WritePayload(p string, data []byte) (err error) {
	defer x.elapsed("WritePayload", &err)()

	if err := checkFile(p); err != nil {
		return err
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		id, err := tx.Lookup(KeyPath, p)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, p)
			}
			return err
		}
		return tx.UpdatePayload(id, data)
	})

	x.write("WRITE", p, err)
	return storeError(err)
}

// ReadPayload returns payload of canonical file p.
func (x *Index) ReadPayload(p string) (data []byte, err error) {
	defer x.elapsed("ReadPayload", &err)()

	if err := checkFile(p); err != nil {
		return nil, err
	}

	rec, err := x.get(p)
	if err != nil {
		return nil, notFound(p, err)
	}
	return rec.Payload, nil
}

// Touch sets last access time of canonical entry p to now.
func (x *Index) Touch(p string) error {
	now := time.Now()
	return x.SetTimes(p, Times{Access: &now})
}

// SetTimes updates timestamps of canonical entry p.
func (x *Index) SetTimes(p string, t Times) (err error) {
	defer x.elapsed("SetTimes", &err)()

	if err := checkCanonical(p); err != nil {
		return err
	}
	for _, ts := range []*time.Time{t.Creation, t.Access, t.Write} {
		if ts != nil && !recordstore.TimeInRange(*ts) {
			return fmt.Errorf("%w: %s", ErrTimeOutOfRange, ts)
		}
	}

	err = x.st.Update(func(tx recordstore.Tx) error {
		id, err := tx.Lookup(KeyPath, p)
		if err != nil {
			return notFound(p, err)
		}

		if t.Creation != nil || t.Access != nil {
			rec, err := tx.Get(id)
			if err != nil {
				return err
			}
			if t.Creation != nil {
				rec.Meta.SetTime(KeyCreationTime, *t.Creation)
			}
			if t.Access != nil {
				rec.Meta.SetTime(KeyAccessTime, *t.Access)
			}
			if err := tx.UpdateMeta(id, rec.Meta); err != nil {
				return err
			}
		}

		if t.Write != nil {
			return tx.SetRevision(id, *t.Write)
		}
		return nil
	})

	x.write("SET TIMES", p, err)
	return storeError(err)
}
