package boltstore

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	storelog "github.com/nspcc-dev/emfs/pkg/internal/log"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"go.etcd.io/bbolt"
)

type tx struct {
	s     *Store
	tx    *bbolt.Tx
	codec codec
}

// View implements recordstore.Storage.
func (s *Store) View(f func(recordstore.Reader) error) (err error) {
	defer recordstore.BboltFatalHandler(&err)

	if s.db == nil {
		return recordstore.ErrClosed
	}

	c := s.currentCodec()
	return s.db.View(func(btx *bbolt.Tx) error {
		return f(&tx{s: s, tx: btx, codec: c})
	})
}

// Update implements recordstore.Storage.
func (s *Store) Update(f func(recordstore.Tx) error) (err error) {
	defer recordstore.BboltFatalHandler(&err)

	if s.db == nil {
		return recordstore.ErrClosed
	}
	if s.readOnly {
		return recordstore.ErrReadOnly
	}

	c := s.currentCodec()
	return s.db.Update(func(btx *bbolt.Tx) error {
		return f(&tx{s: s, tx: btx, codec: c})
	})
}

func (t *tx) get(id recordstore.ID) (recordstore.Record, error) {
	b := t.tx.Bucket(recordsBucket)
	if b == nil {
		return recordstore.Record{}, recordstore.ErrNotFound
	}

	data := b.Get(id[:])
	if data == nil {
		return recordstore.Record{}, recordstore.ErrNotFound
	}

	return t.codec.decode(id, data)
}

func (t *tx) Get(id recordstore.ID) (recordstore.Record, error) {
	return t.get(id)
}

func (t *tx) Lookup(key, value string) (recordstore.ID, error) {
	var id recordstore.ID

	b := t.tx.Bucket(indexBucketName(key))
	if b == nil || value == "" {
		return id, recordstore.ErrNotFound
	}

	data := b.Get([]byte(value))
	if data == nil {
		return id, recordstore.ErrNotFound
	}

	return id, id.Decode(data)
}

func (t *tx) FindIndexed(key, value string, prefix bool, h recordstore.Handler) error {
	b := t.tx.Bucket(indexBucketName(key))
	if b == nil {
		return nil
	}

	// Identifiers are collected first so that the handler may modify
	// the store inside a writable transaction.
	var ids []recordstore.ID

	v := []byte(value)
	c := b.Cursor()
	for k, data := c.Seek(v); k != nil; k, data = c.Next() {
		if prefix && !bytes.HasPrefix(k, v) || !prefix && !bytes.Equal(k, v) {
			break
		}

		var id recordstore.ID
		if err := id.Decode(data); err != nil {
			return fmt.Errorf("invalid index %s entry %q: %w", key, k, err)
		}
		ids = append(ids, id)
	}

	return t.handle(ids, h)
}

func (t *tx) Find(f recordstore.Filter, h recordstore.Handler) error {
	b := t.tx.Bucket(recordsBucket)
	if b == nil {
		return nil
	}

	var recs []recordstore.Record
	err := b.ForEach(func(k, v []byte) error {
		var id recordstore.ID
		if err := id.Decode(k); err != nil {
			return fmt.Errorf("invalid record key %x: %w", k, err)
		}

		rec, err := t.codec.decode(id, v)
		if err != nil {
			return err
		}

		if f == nil || f(rec.Meta) {
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range recs {
		if err := h(recs[i]); err != nil {
			if errors.Is(err, recordstore.ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (t *tx) handle(ids []recordstore.ID, h recordstore.Handler) error {
	for _, id := range ids {
		rec, err := t.get(id)
		if errors.Is(err, recordstore.ErrNotFound) {
			// Removed by the handler itself.
			continue
		}
		if err != nil {
			return err
		}

		if err := h(rec); err != nil {
			if errors.Is(err, recordstore.ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (t *tx) Put(rec recordstore.Record) (recordstore.ID, error) {
	if rec.ID.IsZero() {
		rec.ID = recordstore.NewID()
	}
	if rec.Revision.IsZero() {
		rec.Revision = time.Now()
	}
	if rec.Meta == nil {
		rec.Meta = recordstore.Meta{}
	}

	var old recordstore.Meta
	prev, err := t.get(rec.ID)
	switch {
	case err == nil:
		old = prev.Meta
	case !errors.Is(err, recordstore.ErrNotFound):
		return rec.ID, err
	}

	if err := t.updateIndexes(rec.ID, old, rec.Meta); err != nil {
		return rec.ID, err
	}

	if err := t.putRaw(rec); err != nil {
		return rec.ID, err
	}

	storelog.Write(t.s.log, storelog.IDField(rec.ID), storelog.OpField("PUT"),
		storelog.StorageTypeField(Type))

	return rec.ID, nil
}

func (t *tx) putRaw(rec recordstore.Record) error {
	data, err := t.codec.encode(rec)
	if err != nil {
		return err
	}

	b, err := t.tx.CreateBucketIfNotExists(recordsBucket)
	if err != nil {
		return fmt.Errorf("can't create records bucket: %w", err)
	}

	return b.Put(rec.ID[:], data)
}

// updateIndexes moves unique index entries of the record from old meta
// to the new one. Returns recordstore.ErrIndexCollision if any new value
// belongs to another record.
func (t *tx) updateIndexes(id recordstore.ID, old, meta recordstore.Meta) error {
	for _, key := range t.s.indexes {
		value := meta[key]
		if value == "" {
			continue
		}

		b := t.tx.Bucket(indexBucketName(key))
		if b == nil {
			continue
		}

		if data := b.Get([]byte(value)); data != nil && !bytes.Equal(data, id[:]) {
			storelog.Write(t.s.log, storelog.IDField(id), storelog.OpField("INDEX COLLISION"),
				storelog.IndexField(key, value))
			return fmt.Errorf("%w: %s=%q", recordstore.ErrIndexCollision, key, value)
		}
	}

	for _, key := range t.s.indexes {
		b, err := t.tx.CreateBucketIfNotExists(indexBucketName(key))
		if err != nil {
			return fmt.Errorf("can't create index bucket %s: %w", key, err)
		}

		oldValue, newValue := old[key], meta[key]
		if oldValue == newValue {
			continue
		}

		if oldValue != "" {
			if err := b.Delete([]byte(oldValue)); err != nil {
				return err
			}
		}
		if newValue != "" {
			if err := b.Put([]byte(newValue), id[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *tx) UpdateMeta(id recordstore.ID, meta recordstore.Meta) error {
	rec, err := t.get(id)
	if err != nil {
		return err
	}

	if meta == nil {
		meta = recordstore.Meta{}
	}

	if err := t.updateIndexes(id, rec.Meta, meta); err != nil {
		return err
	}

	rec.Meta = meta
	return t.putRaw(rec)
}

func (t *tx) UpdatePayload(id recordstore.ID, payload []byte) error {
	rec, err := t.get(id)
	if err != nil {
		return err
	}

	rec.Payload = payload
	rec.Revision = time.Now()

	storelog.Write(t.s.log, storelog.IDField(id), storelog.OpField("UPDATE PAYLOAD"),
		storelog.StorageTypeField(Type))

	return t.putRaw(rec)
}

func (t *tx) SetRevision(id recordstore.ID, revision time.Time) error {
	rec, err := t.get(id)
	if err != nil {
		return err
	}

	rec.Revision = revision
	return t.putRaw(rec)
}

func (t *tx) Delete(id recordstore.ID) error {
	rec, err := t.get(id)
	if err != nil {
		return err
	}

	if err := t.updateIndexes(id, rec.Meta, nil); err != nil {
		return err
	}

	if err := t.tx.Bucket(recordsBucket).Delete(id[:]); err != nil {
		return err
	}

	storelog.Write(t.s.log, storelog.IDField(id), storelog.OpField("DELETE"),
		storelog.StorageTypeField(Type))

	return nil
}
