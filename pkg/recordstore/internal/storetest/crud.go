package storetest

import (
	"testing"
	"time"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T, cons Constructor) {
	s := open(t, cons(t))
	recs := prepare(t, 10, s)

	for i := range recs {
		rec, err := s.Get(recs[i].ID)
		require.NoError(t, err)
		requireRecord(t, recs[i], rec)
		require.False(t, rec.Revision.IsZero())
	}

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(recordstore.NewID())
		require.ErrorIs(t, err, recordstore.ErrNotFound)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		rec, err := s.Get(recs[1].ID)
		require.NoError(t, err)
		rec.Payload[0]++
		rec.Meta["kind"] = "changed"

		rec, err = s.Get(recs[1].ID)
		require.NoError(t, err)
		requireRecord(t, recs[1], rec)
	})

	t.Run("explicit id and revision", func(t *testing.T) {
		rec := NewRecord("/explicit", 10)
		rec.ID = recordstore.NewID()
		rec.Revision = time.Unix(1_600_000_000, 42)

		id, err := s.Put(rec)
		require.NoError(t, err)
		require.Equal(t, rec.ID, id)

		res, err := s.Get(id)
		require.NoError(t, err)
		requireRecord(t, rec, res)
		require.True(t, rec.Revision.Equal(res.Revision))
	})

	t.Run("empty payload", func(t *testing.T) {
		id, err := s.Put(recordstore.Record{Meta: recordstore.Meta{IndexKey: "/empty"}})
		require.NoError(t, err)

		res, err := s.Get(id)
		require.NoError(t, err)
		require.Empty(t, res.Payload)
	})
}

func TestUpdate(t *testing.T, cons Constructor) {
	s := open(t, cons(t))
	recs := prepare(t, 3, s)

	t.Run("payload", func(t *testing.T) {
		before, err := s.Get(recs[0].ID)
		require.NoError(t, err)

		payload := []byte("new payload")
		require.NoError(t, s.UpdatePayload(recs[0].ID, payload))

		rec, err := s.Get(recs[0].ID)
		require.NoError(t, err)
		require.Equal(t, payload, rec.Payload)
		require.Equal(t, recs[0].Meta, rec.Meta)
		require.False(t, rec.Revision.Before(before.Revision))
	})

	t.Run("meta", func(t *testing.T) {
		meta := recordstore.Meta{IndexKey: "/other/name", "kind": "file"}
		require.NoError(t, s.UpdateMeta(recs[1].ID, meta))

		rec, err := s.Get(recs[1].ID)
		require.NoError(t, err)
		require.Equal(t, meta, rec.Meta)
		require.Equal(t, recs[1].Payload, rec.Payload)
	})

	t.Run("revision", func(t *testing.T) {
		ts := time.Unix(1_000_000, 0)
		require.NoError(t, s.SetRevision(recs[2].ID, ts))

		rec, err := s.Get(recs[2].ID)
		require.NoError(t, err)
		require.True(t, ts.Equal(rec.Revision))
	})

	t.Run("missing", func(t *testing.T) {
		id := recordstore.NewID()
		require.ErrorIs(t, s.UpdatePayload(id, nil), recordstore.ErrNotFound)
		require.ErrorIs(t, s.UpdateMeta(id, nil), recordstore.ErrNotFound)
		require.ErrorIs(t, s.SetRevision(id, time.Now()), recordstore.ErrNotFound)
	})
}

func TestDelete(t *testing.T, cons Constructor) {
	s := open(t, cons(t))
	recs := prepare(t, 5, s)

	require.NoError(t, s.Delete(recs[0].ID))

	_, err := s.Get(recs[0].ID)
	require.ErrorIs(t, err, recordstore.ErrNotFound)

	_, err = s.Lookup(IndexKey, recs[0].Meta[IndexKey])
	require.ErrorIs(t, err, recordstore.ErrNotFound)

	require.ErrorIs(t, s.Delete(recs[0].ID), recordstore.ErrNotFound)

	for i := 1; i < len(recs); i++ {
		_, err := s.Get(recs[i].ID)
		require.NoError(t, err)
	}

	t.Run("index value is free again", func(t *testing.T) {
		_, err := s.Put(NewRecord(recs[0].Meta[IndexKey], 1))
		require.NoError(t, err)
	})
}
