package logicerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/util/logicerr"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	base := errors.New("directory is not empty")
	err := logicerr.Wrap(base)

	require.ErrorIs(t, err, logicerr.Error)
	require.ErrorIs(t, err, base)
	require.True(t, logicerr.Is(err))
	require.True(t, logicerr.Is(fmt.Errorf("delete /a/: %w", err)))
	require.False(t, logicerr.Is(base))
}

func TestNew(t *testing.T) {
	a := logicerr.New("path collision")
	b := logicerr.New("path collision")

	require.True(t, logicerr.Is(a))
	require.NotErrorIs(t, a, b)
	require.Contains(t, a.Error(), "path collision")
}

func TestMessage(t *testing.T) {
	err := logicerr.New("access denied")
	require.Equal(t, "access denied", err.Error())
	require.Equal(t, "open /a/: access denied", fmt.Errorf("open /a/: %w", err).Error())
}
