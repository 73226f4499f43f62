package compression_test

import (
	"bytes"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/recordstore/compression"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	data := bytes.Repeat([]byte("hello, embedded world! "), 100)

	t.Run("enabled", func(t *testing.T) {
		c := compression.Config{Enabled: true}
		require.NoError(t, c.Init())
		t.Cleanup(func() { require.NoError(t, c.Close()) })

		require.True(t, c.NeedsCompression(data))
		require.False(t, c.NeedsCompression(data[:10]))

		compressed := c.Compress(data)
		require.True(t, c.IsCompressed(compressed))
		require.Less(t, len(compressed), len(data))
		require.False(t, c.NeedsCompression(compressed))

		res, err := c.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, res)

		res, err = c.DecompressForce(compressed)
		require.NoError(t, err)
		require.Equal(t, data, res)
	})

	t.Run("disabled", func(t *testing.T) {
		c := compression.Config{}
		require.NoError(t, c.Init())
		t.Cleanup(func() { require.NoError(t, c.Close()) })

		require.False(t, c.NeedsCompression(data))
		require.Equal(t, data, c.Compress(data))

		res, err := c.Decompress(data)
		require.NoError(t, err)
		require.Equal(t, data, res)
	})

	t.Run("nil", func(t *testing.T) {
		var c *compression.Config
		require.False(t, c.NeedsCompression(data))
		require.Equal(t, data, c.Compress(data))
	})
}
