package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nspcc-dev/emfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestVolumeMetrics(t *testing.T) {
	m := metrics.NewVolumeMetrics("v1.2.3")

	m.AddMethodDuration("Lookup", true, time.Millisecond)
	m.AddMethodDuration("Lookup", false, time.Millisecond)
	m.AddMethodDuration("MoveSubtree", true, time.Second)
	m.SetVolumeStats(3, 2, 100)

	n, err := testutil.GatherAndCount(m.Gatherer(), "emfs_namespace_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	err = testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(`
# HELP emfs_volume_files Number of files in the volume
# TYPE emfs_volume_files gauge
emfs_volume_files 3
# HELP emfs_volume_directories Number of directories in the volume
# TYPE emfs_volume_directories gauge
emfs_volume_directories 2
# HELP emfs_volume_size_bytes Total payload size of the volume files
# TYPE emfs_volume_size_bytes gauge
emfs_volume_size_bytes 100
# HELP emfs_version Version of the running emfs
# TYPE emfs_version gauge
emfs_version{version="v1.2.3"} 1
`), "emfs_volume_files", "emfs_volume_directories", "emfs_volume_size_bytes", "emfs_version")
	require.NoError(t, err)

	t.Run("textfile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "emfs.prom")
		require.NoError(t, m.WriteToTextfile(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), `emfs_namespace_request_duration_seconds_count{method="Lookup",success="false"} 1`)
		require.Contains(t, string(data), "emfs_volume_files 3")
	})

	t.Run("independent registries", func(t *testing.T) {
		require.NotPanics(t, func() { metrics.NewVolumeMetrics("other") })
	})
}
