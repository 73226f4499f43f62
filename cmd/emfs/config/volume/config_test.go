package volumeconfig_test

import (
	"testing"
	"time"

	"github.com/nspcc-dev/emfs/cmd/emfs/config"
	configtest "github.com/nspcc-dev/emfs/cmd/emfs/config/test"
	volumeconfig "github.com/nspcc-dev/emfs/cmd/emfs/config/volume"
	"github.com/stretchr/testify/require"
)

func TestVolumeSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.Empty(t, volumeconfig.Path(empty))
		require.Empty(t, volumeconfig.Password(empty))
		require.False(t, volumeconfig.ReadOnly(empty))
		require.False(t, volumeconfig.Compress(empty))
		require.False(t, volumeconfig.NoSync(empty))
		require.Equal(t, volumeconfig.LockTimeoutDefault, volumeconfig.LockTimeout(empty))
		require.Equal(t, volumeconfig.CacheSizeDefault, volumeconfig.CacheSize(empty))
	})

	const path = "../../../../config/example/emfs"

	configtest.ForEachFileType(path, func(c *config.Config) {
		require.Equal(t, "/var/lib/emfs/volume.db", volumeconfig.Path(c))
		require.Equal(t, "secret", volumeconfig.Password(c))
		require.True(t, volumeconfig.ReadOnly(c))
		require.True(t, volumeconfig.Compress(c))
		require.True(t, volumeconfig.NoSync(c))
		require.Equal(t, 5*time.Second, volumeconfig.LockTimeout(c))
		require.Equal(t, 4096, volumeconfig.CacheSize(c))
	})
}
