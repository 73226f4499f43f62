package logger_test

import (
	"testing"

	"github.com/nspcc-dev/emfs/pkg/util/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, err := logger.NewLogger(nil)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.InfoLevel))
	require.False(t, l.Core().Enabled(zapcore.DebugLevel))

	var prm logger.Prm
	require.NoError(t, prm.SetLevelString("debug"))
	require.NoError(t, prm.SetEncoding("json"))

	l, err = logger.NewLogger(&prm)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, prm.SetLevelString("error"))
	require.NoError(t, prm.Reload())
	require.False(t, l.Core().Enabled(zapcore.WarnLevel))

	require.Error(t, prm.SetEncoding("xml"))
}

func TestInvalidLevel(t *testing.T) {
	var prm logger.Prm
	require.Error(t, prm.Reload())

	require.Error(t, prm.SetLevelString("loud"))
}
