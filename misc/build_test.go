package misc

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildInfo(t *testing.T) {
	info := BuildInfo("EmFS")
	require.Contains(t, info, "EmFS\n")
	require.Contains(t, info, "Version: "+Version)
	require.Contains(t, info, runtime.Version())
}
