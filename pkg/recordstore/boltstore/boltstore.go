// Package boltstore implements record store on top of a single bbolt file.
package boltstore

import (
	"sync"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/compression"
	"github.com/nspcc-dev/emfs/pkg/recordstore/crypt"
	"go.etcd.io/bbolt"
)

// Type is bbolt store type.
const Type = "bolt"

// Store is a record store persisted in a bbolt database. Records live in
// a single bucket keyed by their identifiers, every unique index has its
// own bucket mapping values to identifiers.
type Store struct {
	*cfg

	compression compression.Config

	// mtx protects cipher which is replaced by Rebuild.
	mtx    sync.RWMutex
	cipher *crypt.Cipher

	db          *bbolt.DB
	readOnly    bool
	initialized bool
	protected   bool
}

var _ recordstore.Storage = (*Store)(nil)

var (
	recordsBucket = []byte("records")
	infoBucket    = []byte("info")
)

const indexBucketPrefix = "idx_"

func indexBucketName(key string) []byte {
	return []byte(indexBucketPrefix + key)
}

// New creates new Store instance. It must be opened and initialized
// before use.
func New(opts ...Option) *Store {
	c := defaultCfg()
	for i := range opts {
		opts[i](c)
	}

	return &Store{
		cfg:         c,
		compression: compression.Config{Enabled: c.compress},
	}
}

// Type implements recordstore.Storage.
func (s *Store) Type() string {
	return Type
}

// Path implements recordstore.Storage.
func (s *Store) Path() string {
	return s.path
}

// Protected returns true if records of the opened store are encrypted.
// Unlike Init, it doesn't require the password.
func (s *Store) Protected() bool {
	return s.protected
}

func (s *Store) currentCodec() codec {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return codec{cipher: s.cipher, compression: &s.compression}
}
