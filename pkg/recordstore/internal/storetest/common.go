// Package storetest contains tests every recordstore.Storage implementation
// must pass.
package storetest

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/boltstore"
	"github.com/stretchr/testify/require"
)

// IndexKey is the metadata key which must be declared as unique index by
// Constructor.
const IndexKey = "path"

// Constructor constructs record store with unique IndexKey index.
// Each call must create a component using different file-system path.
// Returned store must NOT be opened.
type Constructor = func(t *testing.T) recordstore.Storage

// TestAll runs every generic test. imageOpts are used to open the
// persisted image of the store, e.g. to pass the password.
func TestAll(t *testing.T, cons Constructor, imageOpts ...boltstore.Option) {
	t.Run("get", func(t *testing.T) {
		TestGet(t, cons)
	})
	t.Run("update", func(t *testing.T) {
		TestUpdate(t, cons)
	})
	t.Run("delete", func(t *testing.T) {
		TestDelete(t, cons)
	})
	t.Run("index", func(t *testing.T) {
		TestIndex(t, cons)
	})
	t.Run("iterate", func(t *testing.T) {
		TestIterate(t, cons)
	})
	t.Run("transaction", func(t *testing.T) {
		TestTransaction(t, cons)
	})
	t.Run("image", func(t *testing.T) {
		TestImage(t, cons, imageOpts...)
	})
}

func TestInfo(t *testing.T, cons Constructor, expectedType string, expectedPath string) {
	s := cons(t)
	require.Equal(t, expectedType, s.Type())
	require.Equal(t, expectedPath, s.Path())
}

// open opens and initializes s closing it on test cleanup.
func open(t *testing.T, s recordstore.Storage) recordstore.Storage {
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewRecord returns a record with random payload of the given size
// indexed by key.
func NewRecord(key string, size int) recordstore.Record {
	payload := make([]byte, size)
	_, _ = rand.Read(payload)

	return recordstore.Record{
		Payload: payload,
		Meta:    recordstore.Meta{IndexKey: key, "kind": "file"},
	}
}

func prepare(t *testing.T, count int, s recordstore.Storage) []recordstore.Record {
	recs := make([]recordstore.Record, count)

	for i := range recs {
		recs[i] = NewRecord(fmt.Sprintf("/dir/file%02d", i), 1+i*100)

		id, err := s.Put(recs[i])
		require.NoError(t, err)
		require.False(t, id.IsZero())
		recs[i].ID = id
	}

	return recs
}

func requireRecord(t *testing.T, expected, actual recordstore.Record) {
	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.Payload, actual.Payload)
	require.Equal(t, expected.Meta, actual.Meta)
}
