package boltstore_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/boltstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/internal/storetest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStore(t *testing.T, opts ...boltstore.Option) recordstore.Storage {
	return boltstore.New(append([]boltstore.Option{
		boltstore.WithPath(filepath.Join(t.TempDir(), "store.db")),
		boltstore.WithUniqueIndex(storetest.IndexKey),
		boltstore.WithNoSync(true),
		boltstore.WithLogger(zaptest.NewLogger(t)),
	}, opts...)...)
}

func TestGeneric(t *testing.T) {
	storetest.TestAll(t, func(t *testing.T) recordstore.Storage {
		return newStore(t)
	})
}

func TestGenericCompressed(t *testing.T) {
	storetest.TestAll(t, func(t *testing.T) recordstore.Storage {
		return newStore(t, boltstore.WithCompression(true))
	})
}

func TestGenericEncrypted(t *testing.T) {
	storetest.TestAll(t, func(t *testing.T) recordstore.Storage {
		return newStore(t, boltstore.WithPassword("secret"), boltstore.WithCompression(true))
	}, boltstore.WithPassword("secret"))
}

func TestControl(t *testing.T) {
	storetest.TestControl(t, func(t *testing.T) recordstore.Storage {
		return newStore(t)
	})
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	storetest.TestInfo(t, func(*testing.T) recordstore.Storage {
		return boltstore.New(boltstore.WithPath(path))
	}, boltstore.Type, path)
}

func openStore(t *testing.T, path string, opts ...boltstore.Option) (*boltstore.Store, error) {
	s := boltstore.New(append([]boltstore.Option{
		boltstore.WithPath(path),
		boltstore.WithUniqueIndex(storetest.IndexKey),
	}, opts...)...)

	require.NoError(t, s.Open(false))
	if err := s.Init(); err != nil {
		require.NoError(t, s.Close())
		return nil, err
	}
	return s, nil
}

func TestPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	payload := bytes.Repeat([]byte("plaintext payload "), 10)

	s, err := openStore(t, path, boltstore.WithPassword("secret"))
	require.NoError(t, err)
	require.True(t, s.Protected())

	id, err := s.Put(recordstore.Record{Payload: payload, Meta: recordstore.Meta{storetest.IndexKey: "/f"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, bytes.Contains(raw, payload[:16]))

	t.Run("wrong", func(t *testing.T) {
		_, err := openStore(t, path, boltstore.WithPassword("wrong"))
		require.ErrorIs(t, err, recordstore.ErrWrongPassword)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := openStore(t, path)
		require.ErrorIs(t, err, recordstore.ErrWrongPassword)
	})

	t.Run("protected without password", func(t *testing.T) {
		s := boltstore.New(boltstore.WithPath(path))
		require.NoError(t, s.Open(true))
		require.True(t, s.Protected())
		require.NoError(t, s.Close())
	})

	t.Run("change", func(t *testing.T) {
		s, err := openStore(t, path, boltstore.WithPassword("secret"))
		require.NoError(t, err)
		require.NoError(t, s.Rebuild("new"))
		require.NoError(t, s.Close())

		_, err = openStore(t, path, boltstore.WithPassword("secret"))
		require.ErrorIs(t, err, recordstore.ErrWrongPassword)

		s, err = openStore(t, path, boltstore.WithPassword("new"))
		require.NoError(t, err)

		rec, err := s.Get(id)
		require.NoError(t, err)
		require.Equal(t, payload, rec.Payload)

		found, err := s.Lookup(storetest.IndexKey, "/f")
		require.NoError(t, err)
		require.Equal(t, id, found)
		require.NoError(t, s.Close())
	})

	t.Run("remove", func(t *testing.T) {
		s, err := openStore(t, path, boltstore.WithPassword("new"))
		require.NoError(t, err)
		require.NoError(t, s.Rebuild(""))
		require.False(t, s.Protected())
		require.NoError(t, s.Close())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.True(t, bytes.Contains(raw, payload[:16]))

		s, err = openStore(t, path)
		require.NoError(t, err)
		require.False(t, s.Protected())

		rec, err := s.Get(id)
		require.NoError(t, err)
		require.Equal(t, payload, rec.Payload)
		require.NoError(t, s.Close())

		_, err = openStore(t, path, boltstore.WithPassword("new"))
		require.ErrorIs(t, err, recordstore.ErrWrongPassword)
	})
}

func TestCompressionFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	payload := bytes.Repeat([]byte("compressible "), 100)

	s, err := openStore(t, path, boltstore.WithCompression(true))
	require.NoError(t, err)

	id, err := s.Put(recordstore.Record{Payload: payload})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Compressed records are readable regardless of the setting.
	s, err = openStore(t, path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	rec, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, payload, rec.Payload)
}
