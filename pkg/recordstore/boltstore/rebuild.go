package boltstore

import (
	"fmt"
	"io"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/crypt"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Rebuild re-encodes every record with a key derived from newPassword in
// a single transaction. Empty newPassword removes the protection.
func (s *Store) Rebuild(newPassword string) (err error) {
	defer recordstore.BboltFatalHandler(&err)

	if s.db == nil {
		return recordstore.ErrClosed
	}
	if s.readOnly {
		return recordstore.ErrReadOnly
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	var (
		oldCodec = codec{cipher: s.cipher, compression: &s.compression}
		newC     *crypt.Cipher
		count    int
	)

	err = s.db.Update(func(tx *bbolt.Tx) error {
		c, err := setPassword(tx, newPassword)
		if err != nil {
			return err
		}
		newC = c
		newCodec := codec{cipher: newC, compression: &s.compression}

		b, err := tx.CreateBucketIfNotExists(recordsBucket)
		if err != nil {
			return fmt.Errorf("can't create records bucket: %w", err)
		}

		var recs []recordstore.Record
		err = b.ForEach(func(k, v []byte) error {
			var id recordstore.ID
			if err := id.Decode(k); err != nil {
				return fmt.Errorf("invalid record key %x: %w", k, err)
			}

			rec, err := oldCodec.decode(id, v)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
		if err != nil {
			return err
		}

		for i := range recs {
			data, err := newCodec.encode(recs[i])
			if err != nil {
				return err
			}
			if err := b.Put(recs[i].ID[:], data); err != nil {
				return err
			}
		}
		count = len(recs)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuild store: %w", err)
	}

	s.cipher = newC
	s.password = newPassword
	s.protected = newC != nil

	s.log.Info("record store rebuilt",
		zap.Int("records", count),
		zap.Bool("protected", s.protected))

	return nil
}

// WriteTo writes consistent database image to w.
func (s *Store) WriteTo(w io.Writer) (n int64, err error) {
	defer recordstore.BboltFatalHandler(&err)

	if s.db == nil {
		return 0, recordstore.ErrClosed
	}

	err = s.db.View(func(tx *bbolt.Tx) error {
		n, err = tx.WriteTo(w)
		return err
	})
	return n, err
}
