package storetest

import (
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T, cons Constructor) {
	s := open(t, cons(t))

	paths := []string{"/a", "/a/b", "/a/b/c.txt", "/a/bc", "/ab", "/b"}
	ids := make(map[string]recordstore.ID, len(paths))
	for _, p := range paths {
		id, err := s.Put(NewRecord(p, 4))
		require.NoError(t, err)
		ids[p] = id
	}

	t.Run("lookup", func(t *testing.T) {
		for p, id := range ids {
			res, err := s.Lookup(IndexKey, p)
			require.NoError(t, err)
			require.Equal(t, id, res)
		}

		_, err := s.Lookup(IndexKey, "/missing")
		require.ErrorIs(t, err, recordstore.ErrNotFound)

		_, err = s.Lookup("unknown", "/a")
		require.ErrorIs(t, err, recordstore.ErrNotFound)
	})

	t.Run("collision", func(t *testing.T) {
		_, err := s.Put(NewRecord("/a/b", 1))
		require.ErrorIs(t, err, recordstore.ErrIndexCollision)

		err = s.UpdateMeta(ids["/b"], recordstore.Meta{IndexKey: "/a"})
		require.ErrorIs(t, err, recordstore.ErrIndexCollision)

		rec, err := s.Get(ids["/b"])
		require.NoError(t, err)
		require.Equal(t, "/b", rec.Meta[IndexKey])
	})

	t.Run("overwrite keeps own value", func(t *testing.T) {
		rec, err := s.Get(ids["/b"])
		require.NoError(t, err)
		rec.Payload = []byte("rewritten")

		_, err = s.Put(rec)
		require.NoError(t, err)
	})

	t.Run("exact", func(t *testing.T) {
		var found []string
		err := s.FindIndexed(IndexKey, "/a/b", false, func(rec recordstore.Record) error {
			found = append(found, rec.Meta[IndexKey])
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []string{"/a/b"}, found)
	})

	t.Run("prefix", func(t *testing.T) {
		var found []string
		err := s.FindIndexed(IndexKey, "/a/", true, func(rec recordstore.Record) error {
			found = append(found, rec.Meta[IndexKey])
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []string{"/a/b", "/a/b/c.txt", "/a/bc"}, found)
	})

	t.Run("rename", func(t *testing.T) {
		err := s.UpdateMeta(ids["/ab"], recordstore.Meta{IndexKey: "/renamed"})
		require.NoError(t, err)

		_, err = s.Lookup(IndexKey, "/ab")
		require.ErrorIs(t, err, recordstore.ErrNotFound)

		id, err := s.Lookup(IndexKey, "/renamed")
		require.NoError(t, err)
		require.Equal(t, ids["/ab"], id)
	})

	t.Run("unindexed record", func(t *testing.T) {
		id, err := s.Put(recordstore.Record{Meta: recordstore.Meta{"kind": "orphan"}})
		require.NoError(t, err)

		_, err = s.Put(recordstore.Record{Meta: recordstore.Meta{"kind": "orphan"}})
		require.NoError(t, err)

		require.NoError(t, s.Delete(id))
	})
}
