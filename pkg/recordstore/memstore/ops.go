package memstore

import (
	"time"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
)

// Get implements recordstore.Reader.
func (s *Store) Get(id recordstore.ID) (rec recordstore.Record, err error) {
	err = s.View(func(r recordstore.Reader) error {
		rec, err = r.Get(id)
		return err
	})
	return rec, err
}

// Lookup implements recordstore.Reader.
func (s *Store) Lookup(key, value string) (id recordstore.ID, err error) {
	err = s.View(func(r recordstore.Reader) error {
		id, err = r.Lookup(key, value)
		return err
	})
	return id, err
}

// FindIndexed implements recordstore.Reader.
func (s *Store) FindIndexed(key, value string, prefix bool, h recordstore.Handler) error {
	return s.View(func(r recordstore.Reader) error {
		return r.FindIndexed(key, value, prefix, h)
	})
}

// Find implements recordstore.Reader.
func (s *Store) Find(f recordstore.Filter, h recordstore.Handler) error {
	return s.View(func(r recordstore.Reader) error {
		return r.Find(f, h)
	})
}

// Iterate implements recordstore.Storage.
func (s *Store) Iterate(h recordstore.Handler) error {
	return s.Find(nil, h)
}

// Put implements recordstore.Writer.
func (s *Store) Put(rec recordstore.Record) (id recordstore.ID, err error) {
	err = s.Update(func(tx recordstore.Tx) error {
		id, err = tx.Put(rec)
		return err
	})
	return id, err
}

// UpdateMeta implements recordstore.Writer.
func (s *Store) UpdateMeta(id recordstore.ID, meta recordstore.Meta) error {
	return s.Update(func(tx recordstore.Tx) error {
		return tx.UpdateMeta(id, meta)
	})
}

// UpdatePayload implements recordstore.Writer.
func (s *Store) UpdatePayload(id recordstore.ID, payload []byte) error {
	return s.Update(func(tx recordstore.Tx) error {
		return tx.UpdatePayload(id, payload)
	})
}

// SetRevision implements recordstore.Writer.
func (s *Store) SetRevision(id recordstore.ID, revision time.Time) error {
	return s.Update(func(tx recordstore.Tx) error {
		return tx.SetRevision(id, revision)
	})
}

// Delete implements recordstore.Writer.
func (s *Store) Delete(id recordstore.ID) error {
	return s.Update(func(tx recordstore.Tx) error {
		return tx.Delete(id)
	})
}
