// Package memstore implements record store kept in memory.
package memstore

import (
	"slices"
	"sync"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
)

// Type is in-memory store type.
const Type = "memory"

// Store is a record store kept entirely in memory. It can be persisted
// with WriteTo and restored with ReadFrom using bbolt image format.
type Store struct {
	*cfg

	mtx      sync.RWMutex
	opened   bool
	readOnly bool
	records  map[recordstore.ID]recordstore.Record
	indexes  map[string]*index
}

var _ recordstore.Storage = (*Store)(nil)

// index is a unique index: values mapped to identifiers plus the values
// in ascending order for prefix scans.
type index struct {
	ids    map[string]recordstore.ID
	sorted []string
}

func newIndex() *index {
	return &index{ids: make(map[string]recordstore.ID)}
}

func (i *index) put(value string, id recordstore.ID) {
	if _, ok := i.ids[value]; !ok {
		pos, _ := slices.BinarySearch(i.sorted, value)
		i.sorted = slices.Insert(i.sorted, pos, value)
	}
	i.ids[value] = id
}

func (i *index) delete(value string) {
	if _, ok := i.ids[value]; !ok {
		return
	}
	delete(i.ids, value)

	if pos, found := slices.BinarySearch(i.sorted, value); found {
		i.sorted = slices.Delete(i.sorted, pos, pos+1)
	}
}

// New creates new in-memory Store.
func New(opts ...Option) *Store {
	c := defaultCfg()
	for i := range opts {
		opts[i](c)
	}

	return &Store{
		cfg: c,
	}
}

// Open implements recordstore.Storage.
func (s *Store) Open(readOnly bool) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.opened = true
	s.readOnly = readOnly
	return nil
}

// Init implements recordstore.Storage.
func (s *Store) Init() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.opened {
		return recordstore.ErrClosed
	}

	if s.records == nil {
		s.records = make(map[recordstore.ID]recordstore.Record)
	}
	if s.indexes == nil {
		s.indexes = make(map[string]*index, len(s.cfg.indexes))
		for _, key := range s.cfg.indexes {
			s.indexes[key] = newIndex()
		}
	}
	return nil
}

// Close implements recordstore.Storage. All the records are dropped.
func (s *Store) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.opened = false
	s.records = nil
	s.indexes = nil
	return nil
}

// Type implements recordstore.Storage.
func (s *Store) Type() string {
	return Type
}

// Path implements recordstore.Storage. In-memory store has no path.
func (s *Store) Path() string {
	return ""
}

// Protected returns true if the persisted image is password protected.
func (s *Store) Protected() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.password != ""
}

// View implements recordstore.Storage.
func (s *Store) View(f func(recordstore.Reader) error) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.records == nil {
		return recordstore.ErrClosed
	}

	return f(&tx{s: s})
}

// Update implements recordstore.Storage. Changes made by f are rolled
// back if it returns an error.
func (s *Store) Update(f func(recordstore.Tx) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.records == nil {
		return recordstore.ErrClosed
	}
	if s.readOnly {
		return recordstore.ErrReadOnly
	}

	t := &tx{s: s}
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
	}()

	if err := f(t); err != nil {
		t.rollback()
		return err
	}
	return nil
}
