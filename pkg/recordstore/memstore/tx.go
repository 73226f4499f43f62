package memstore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	storelog "github.com/nspcc-dev/emfs/pkg/internal/log"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
)

// tx operates on the store under its lock. Writable transaction keeps
// an undo log to restore the state if the callback fails.
type tx struct {
	s    *Store
	undo []func()
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *tx) Get(id recordstore.ID) (recordstore.Record, error) {
	rec, ok := t.s.records[id]
	if !ok {
		return recordstore.Record{}, recordstore.ErrNotFound
	}
	return rec.Clone(), nil
}

func (t *tx) Lookup(key, value string) (recordstore.ID, error) {
	idx, ok := t.s.indexes[key]
	if !ok {
		return recordstore.ID{}, recordstore.ErrNotFound
	}

	id, ok := idx.ids[value]
	if !ok {
		return recordstore.ID{}, recordstore.ErrNotFound
	}
	return id, nil
}

func (t *tx) FindIndexed(key, value string, prefix bool, h recordstore.Handler) error {
	idx, ok := t.s.indexes[key]
	if !ok {
		return nil
	}

	var ids []recordstore.ID
	if !prefix {
		if id, ok := idx.ids[value]; ok {
			ids = append(ids, id)
		}
	} else {
		from, _ := slices.BinarySearch(idx.sorted, value)
		for _, v := range idx.sorted[from:] {
			if !strings.HasPrefix(v, value) {
				break
			}
			ids = append(ids, idx.ids[v])
		}
	}

	return t.handle(ids, h)
}

func (t *tx) Find(f recordstore.Filter, h recordstore.Handler) error {
	var ids []recordstore.ID
	for id, rec := range t.s.records {
		if f == nil || f(rec.Meta) {
			ids = append(ids, id)
		}
	}

	return t.handle(ids, h)
}

func (t *tx) handle(ids []recordstore.ID, h recordstore.Handler) error {
	for _, id := range ids {
		rec, ok := t.s.records[id]
		if !ok {
			continue
		}

		if err := h(rec.Clone()); err != nil {
			if errors.Is(err, recordstore.ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// set replaces the record remembering the previous state.
func (t *tx) set(rec recordstore.Record) {
	id := rec.ID
	if prev, ok := t.s.records[id]; ok {
		t.undo = append(t.undo, func() { t.s.records[id] = prev })
	} else {
		t.undo = append(t.undo, func() { delete(t.s.records, id) })
	}
	t.s.records[id] = rec
}

func (t *tx) updateIndexes(id recordstore.ID, old, meta recordstore.Meta) error {
	for key, idx := range t.s.indexes {
		value := meta[key]
		if value == "" {
			continue
		}

		if other, ok := idx.ids[value]; ok && other != id {
			storelog.Write(t.s.log, storelog.IDField(id), storelog.OpField("INDEX COLLISION"),
				storelog.IndexField(key, value))
			return fmt.Errorf("%w: %s=%q", recordstore.ErrIndexCollision, key, value)
		}
	}

	for key, idx := range t.s.indexes {
		oldValue, newValue := old[key], meta[key]
		if oldValue == newValue {
			continue
		}

		if oldValue != "" {
			idx.delete(oldValue)
			t.undo = append(t.undo, func() { idx.put(oldValue, id) })
		}
		if newValue != "" {
			idx.put(newValue, id)
			t.undo = append(t.undo, func() { idx.delete(newValue) })
		}
	}
	return nil
}

func (t *tx) Put(rec recordstore.Record) (recordstore.ID, error) {
	rec = rec.Clone()
	if rec.ID.IsZero() {
		rec.ID = recordstore.NewID()
	}
	if rec.Revision.IsZero() {
		rec.Revision = time.Now()
	}
	if rec.Payload == nil {
		rec.Payload = []byte{}
	}

	var old recordstore.Meta
	if prev, ok := t.s.records[rec.ID]; ok {
		old = prev.Meta
	}

	if err := t.updateIndexes(rec.ID, old, rec.Meta); err != nil {
		return rec.ID, err
	}

	t.set(rec)

	storelog.Write(t.s.log, storelog.IDField(rec.ID), storelog.OpField("PUT"),
		storelog.StorageTypeField(Type))

	return rec.ID, nil
}

func (t *tx) UpdateMeta(id recordstore.ID, meta recordstore.Meta) error {
	rec, ok := t.s.records[id]
	if !ok {
		return recordstore.ErrNotFound
	}

	meta = meta.Clone()
	if err := t.updateIndexes(id, rec.Meta, meta); err != nil {
		return err
	}

	rec.Meta = meta
	t.set(rec)
	return nil
}

func (t *tx) UpdatePayload(id recordstore.ID, payload []byte) error {
	rec, ok := t.s.records[id]
	if !ok {
		return recordstore.ErrNotFound
	}

	rec.Payload = append([]byte{}, payload...)
	rec.Revision = time.Now()
	t.set(rec)

	storelog.Write(t.s.log, storelog.IDField(id), storelog.OpField("UPDATE PAYLOAD"),
		storelog.StorageTypeField(Type))

	return nil
}

func (t *tx) SetRevision(id recordstore.ID, revision time.Time) error {
	rec, ok := t.s.records[id]
	if !ok {
		return recordstore.ErrNotFound
	}

	rec.Revision = revision
	t.set(rec)
	return nil
}

func (t *tx) Delete(id recordstore.ID) error {
	rec, ok := t.s.records[id]
	if !ok {
		return recordstore.ErrNotFound
	}

	if err := t.updateIndexes(id, rec.Meta, nil); err != nil {
		return err
	}

	delete(t.s.records, id)
	t.undo = append(t.undo, func() { t.s.records[id] = rec })

	storelog.Write(t.s.log, storelog.IDField(id), storelog.OpField("DELETE"),
		storelog.StorageTypeField(Type))

	return nil
}
