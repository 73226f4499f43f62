package storetest

import (
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/stretchr/testify/require"
)

// TestControl checks correctness of a read-only mode.
// cons must return a persistent storage which is NOT opened.
func TestControl(t *testing.T, cons Constructor) {
	s := cons(t)
	require.NoError(t, s.Open(false))
	require.NoError(t, s.Init())

	recs := prepare(t, 10, s)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Get(recs[0].ID)
	require.ErrorIs(t, err, recordstore.ErrClosed)

	require.NoError(t, s.Open(true))
	require.NoError(t, s.Init())
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	for i := range recs {
		rec, err := s.Get(recs[i].ID)
		require.NoError(t, err)
		requireRecord(t, recs[i], rec)
	}

	t.Run("put fails", func(t *testing.T) {
		_, err := s.Put(NewRecord("/new", 1))
		require.ErrorIs(t, err, recordstore.ErrReadOnly)
	})
	t.Run("delete fails", func(t *testing.T) {
		require.ErrorIs(t, s.Delete(recs[0].ID), recordstore.ErrReadOnly)
	})
	t.Run("rebuild fails", func(t *testing.T) {
		require.ErrorIs(t, s.Rebuild("password"), recordstore.ErrReadOnly)
	})
}
