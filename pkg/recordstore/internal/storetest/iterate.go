package storetest

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/stretchr/testify/require"
)

func TestIterate(t *testing.T, cons Constructor) {
	s := open(t, cons(t))
	recs := prepare(t, 10, s)

	t.Run("all", func(t *testing.T) {
		seen := make(map[recordstore.ID]recordstore.Record)
		err := s.Iterate(func(rec recordstore.Record) error {
			seen[rec.ID] = rec
			return nil
		})
		require.NoError(t, err)
		require.Len(t, seen, len(recs))

		for i := range recs {
			requireRecord(t, recs[i], seen[recs[i].ID])
		}
	})

	t.Run("filter", func(t *testing.T) {
		require.NoError(t, s.UpdateMeta(recs[3].ID, recordstore.Meta{IndexKey: "/dir/x", "kind": "dir"}))

		var found []recordstore.ID
		err := s.Find(func(m recordstore.Meta) bool {
			return m["kind"] == "dir"
		}, func(rec recordstore.Record) error {
			found = append(found, rec.ID)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []recordstore.ID{recs[3].ID}, found)
	})

	t.Run("stop", func(t *testing.T) {
		var n int
		err := s.Iterate(func(recordstore.Record) error {
			n++
			return recordstore.ErrStop
		})
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("handler error", func(t *testing.T) {
		errTest := errors.New("test")
		err := s.Iterate(func(recordstore.Record) error {
			return errTest
		})
		require.ErrorIs(t, err, errTest)
	})
}
