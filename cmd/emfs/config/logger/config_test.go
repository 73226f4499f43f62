package loggerconfig_test

import (
	"testing"

	"github.com/nspcc-dev/emfs/cmd/emfs/config"
	loggerconfig "github.com/nspcc-dev/emfs/cmd/emfs/config/logger"
	configtest "github.com/nspcc-dev/emfs/cmd/emfs/config/test"
	"github.com/stretchr/testify/require"
)

func TestLoggerSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		emptyConfig := configtest.EmptyConfig()
		require.Equal(t, loggerconfig.LevelDefault, loggerconfig.Level(emptyConfig))
		require.Equal(t, loggerconfig.EncodingDefault, loggerconfig.Encoding(emptyConfig))
	})

	const path = "../../../../config/example/emfs"

	configtest.ForEachFileType(path, func(c *config.Config) {
		require.Equal(t, "debug", loggerconfig.Level(c))
		require.Equal(t, "json", loggerconfig.Encoding(c))
	})
}
