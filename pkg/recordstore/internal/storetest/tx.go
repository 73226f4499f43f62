package storetest

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/stretchr/testify/require"
)

func TestTransaction(t *testing.T, cons Constructor) {
	s := open(t, cons(t))
	recs := prepare(t, 5, s)

	t.Run("commit", func(t *testing.T) {
		err := s.Update(func(tx recordstore.Tx) error {
			return tx.FindIndexed(IndexKey, "/dir/", true, func(rec recordstore.Record) error {
				rec.Meta[IndexKey] = "/moved" + rec.Meta[IndexKey][len("/dir"):]
				return tx.UpdateMeta(rec.ID, rec.Meta)
			})
		})
		require.NoError(t, err)

		for i := range recs {
			rec, err := s.Get(recs[i].ID)
			require.NoError(t, err)
			require.Equal(t, "/moved"+recs[i].Meta[IndexKey][len("/dir"):], rec.Meta[IndexKey])
			recs[i] = rec
		}
	})

	t.Run("rollback", func(t *testing.T) {
		errTest := errors.New("injected fault")

		var created recordstore.ID
		err := s.Update(func(tx recordstore.Tx) error {
			var n int
			err := tx.FindIndexed(IndexKey, "/moved/", true, func(rec recordstore.Record) error {
				if n++; n == 3 {
					return errTest
				}
				rec.Meta[IndexKey] = "/back" + rec.Meta[IndexKey][len("/moved"):]
				return tx.UpdateMeta(rec.ID, rec.Meta)
			})
			if err != nil {
				return err
			}
			return nil
		})
		require.ErrorIs(t, err, errTest)

		err = s.Update(func(tx recordstore.Tx) error {
			var err error
			created, err = tx.Put(NewRecord("/created", 1))
			if err != nil {
				return err
			}
			if err := tx.UpdatePayload(recs[0].ID, []byte("lost")); err != nil {
				return err
			}
			if err := tx.Delete(recs[1].ID); err != nil {
				return err
			}
			return errTest
		})
		require.ErrorIs(t, err, errTest)

		_, err = s.Get(created)
		require.ErrorIs(t, err, recordstore.ErrNotFound)
		_, err = s.Lookup(IndexKey, "/created")
		require.ErrorIs(t, err, recordstore.ErrNotFound)

		for i := range recs {
			rec, err := s.Get(recs[i].ID)
			require.NoError(t, err)
			requireRecord(t, recs[i], rec)

			id, err := s.Lookup(IndexKey, recs[i].Meta[IndexKey])
			require.NoError(t, err)
			require.Equal(t, recs[i].ID, id)
		}

		var n int
		require.NoError(t, s.FindIndexed(IndexKey, "/back/", true, func(recordstore.Record) error {
			n++
			return nil
		}))
		require.Zero(t, n)
	})

	t.Run("read in transaction", func(t *testing.T) {
		err := s.Update(func(tx recordstore.Tx) error {
			id, err := tx.Put(NewRecord("/fresh", 1))
			if err != nil {
				return err
			}

			rec, err := tx.Get(id)
			if err != nil {
				return err
			}
			require.Equal(t, "/fresh", rec.Meta[IndexKey])

			found, err := tx.Lookup(IndexKey, "/fresh")
			require.NoError(t, err)
			require.Equal(t, id, found)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("view", func(t *testing.T) {
		err := s.View(func(r recordstore.Reader) error {
			_, err := r.Get(recs[0].ID)
			return err
		})
		require.NoError(t, err)
	})
}
