package memstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/boltstore"
	"go.uber.org/zap"
)

const imageFileName = "image.db"

// Rebuild implements recordstore.Storage. Records in memory are never
// encrypted, so only the password of the persisted image is changed.
func (s *Store) Rebuild(newPassword string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.records == nil {
		return recordstore.ErrClosed
	}
	if s.readOnly {
		return recordstore.ErrReadOnly
	}

	s.password = newPassword
	s.log.Info("record store rebuilt", zap.Bool("protected", newPassword != ""))
	return nil
}

// WriteTo writes bbolt image of the store to w. The image can be opened
// with boltstore using the same password.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	var n int64

	err := s.withImage(func(path string) error {
		bs := s.imageStore(path)
		if err := bs.Open(false); err != nil {
			return err
		}
		defer bs.Close()

		if err := bs.Init(); err != nil {
			return err
		}

		if err := recordstore.Copy(bs, s); err != nil {
			return err
		}

		var err error
		n, err = bs.WriteTo(w)
		return err
	})
	if err != nil {
		return n, fmt.Errorf("write store image: %w", err)
	}
	return n, nil
}

// ReadFrom replaces the content of the store with the records of the
// bbolt image read from r. Returns recordstore.ErrWrongPassword if the
// image is protected with another password.
func (s *Store) ReadFrom(r io.Reader) (int64, error) {
	var n int64

	err := s.withImage(func(path string) error {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}

		n, err = io.Copy(f, r)
		if cErr := f.Close(); err == nil {
			err = cErr
		}
		if err != nil {
			return err
		}

		bs := s.imageStore(path)
		if err := bs.Open(true); err != nil {
			return err
		}
		defer bs.Close()

		if err := bs.Init(); err != nil {
			return err
		}

		return s.Update(func(tx recordstore.Tx) error {
			err := tx.Find(nil, func(rec recordstore.Record) error {
				return tx.Delete(rec.ID)
			})
			if err != nil {
				return err
			}

			return bs.Iterate(func(rec recordstore.Record) error {
				_, err := tx.Put(rec)
				return err
			})
		})
	})
	if err != nil {
		return n, fmt.Errorf("read store image: %w", err)
	}
	return n, nil
}

func (s *Store) imageStore(path string) *boltstore.Store {
	s.mtx.RLock()
	password := s.password
	s.mtx.RUnlock()

	return boltstore.New(
		boltstore.WithPath(path),
		boltstore.WithPassword(password),
		boltstore.WithCompression(s.compress),
		boltstore.WithUniqueIndex(s.cfg.indexes...),
		boltstore.WithNoSync(true),
		boltstore.WithLogger(s.log),
	)
}

// withImage calls f with a path to a file in a temporary directory which
// is removed afterwards.
func (s *Store) withImage(f func(path string) error) error {
	dir, err := os.MkdirTemp("", "emfs-image-*")
	if err != nil {
		return fmt.Errorf("create temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.log.Warn("could not remove temporary image directory",
				zap.String("path", dir), zap.Error(err))
		}
	}()

	return f(filepath.Join(dir, imageFileName))
}
