package storetest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/boltstore"
	"github.com/stretchr/testify/require"
)

// TestImage checks that the persisted image can be opened as a bbolt store
// configured with opts.
func TestImage(t *testing.T, cons Constructor, opts ...boltstore.Option) {
	s := open(t, cons(t))
	recs := prepare(t, 5, s)

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	path := filepath.Join(t.TempDir(), "image.db")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	bs := boltstore.New(append([]boltstore.Option{
		boltstore.WithPath(path),
		boltstore.WithUniqueIndex(IndexKey),
	}, opts...)...)
	require.NoError(t, bs.Open(true))
	require.NoError(t, bs.Init())
	t.Cleanup(func() { require.NoError(t, bs.Close()) })

	for i := range recs {
		rec, err := bs.Get(recs[i].ID)
		require.NoError(t, err)
		requireRecord(t, recs[i], rec)

		id, err := bs.Lookup(IndexKey, recs[i].Meta[IndexKey])
		require.NoError(t, err)
		require.Equal(t, recs[i].ID, id)
	}

	t.Run("copy", func(t *testing.T) {
		dst := open(t, cons(t))
		require.NoError(t, recordstore.Copy(dst, bs))

		for i := range recs {
			rec, err := dst.Get(recs[i].ID)
			require.NoError(t, err)
			requireRecord(t, recs[i], rec)
		}
	})
}
