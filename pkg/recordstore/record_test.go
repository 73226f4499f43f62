package recordstore_test

import (
	"testing"
	"time"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	id := recordstore.NewID()
	require.False(t, id.IsZero())
	require.True(t, recordstore.ID{}.IsZero())
	require.NotEqual(t, id, recordstore.NewID())

	var res recordstore.ID
	require.NoError(t, res.DecodeString(id.String()))
	require.Equal(t, id, res)

	require.Error(t, res.DecodeString("0OIl"))
	require.Error(t, res.Decode(make([]byte, recordstore.IDSize-1)))
}

func TestMeta(t *testing.T) {
	t.Run("time", func(t *testing.T) {
		m := recordstore.Meta{}
		ts := time.Unix(1_700_000_000, 123456789)
		m.SetTime("ts", ts)

		res, ok := m.Time("ts")
		require.True(t, ok)
		require.True(t, ts.Equal(res))

		_, ok = m.Time("missing")
		require.False(t, ok)

		m["bad"] = "not a number"
		_, ok = m.Time("bad")
		require.False(t, ok)
	})

	t.Run("encoding is deterministic", func(t *testing.T) {
		a := recordstore.Meta{"b": "2", "a": "1", "c": ""}
		b := recordstore.Meta{"c": "", "a": "1", "b": "2"}

		wa, wb := io.NewBufBinWriter(), io.NewBufBinWriter()
		a.EncodeBinary(wa.BinWriter)
		b.EncodeBinary(wb.BinWriter)
		require.NoError(t, wa.Err)

		data := wa.Bytes()
		require.Equal(t, data, wb.Bytes())

		var res recordstore.Meta
		r := io.NewBinReaderFromBuf(data)
		res.DecodeBinary(r)
		require.NoError(t, r.Err)
		require.Equal(t, a, res)
	})

	t.Run("clone", func(t *testing.T) {
		var m recordstore.Meta
		require.NotNil(t, m.Clone())

		m = recordstore.Meta{"k": "v"}
		c := m.Clone()
		c["k"] = "other"
		require.Equal(t, "v", m["k"])
	})
}

func TestRecordClone(t *testing.T) {
	r := recordstore.Record{
		ID:      recordstore.NewID(),
		Payload: []byte{1, 2, 3},
		Meta:    recordstore.Meta{"k": "v"},
	}

	c := r.Clone()
	c.Payload[0] = 9
	c.Meta["k"] = "x"

	require.Equal(t, byte(1), r.Payload[0])
	require.Equal(t, "v", r.Meta["k"])
}
