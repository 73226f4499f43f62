package metricsconfig_test

import (
	"testing"
	"time"

	"github.com/nspcc-dev/emfs/cmd/emfs/config"
	metricsconfig "github.com/nspcc-dev/emfs/cmd/emfs/config/metrics"
	configtest "github.com/nspcc-dev/emfs/cmd/emfs/config/test"
	"github.com/stretchr/testify/require"
)

func TestMetricsSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.False(t, metricsconfig.Enabled(empty))
		require.Empty(t, metricsconfig.Textfile(empty))
		require.Empty(t, metricsconfig.Address(empty))
		require.Equal(t, metricsconfig.ShutdownTimeoutDefault, metricsconfig.ShutdownTimeout(empty))
	})

	const path = "../../../../config/example/emfs"

	configtest.ForEachFileType(path, func(c *config.Config) {
		require.True(t, metricsconfig.Enabled(c))
		require.Equal(t, "/var/lib/node_exporter/emfs.prom", metricsconfig.Textfile(c))
		require.Equal(t, "localhost:9090", metricsconfig.Address(c))
		require.Equal(t, 15*time.Second, metricsconfig.ShutdownTimeout(c))
	})
}
