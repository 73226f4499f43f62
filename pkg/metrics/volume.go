package metrics

import "github.com/prometheus/client_golang/prometheus"

const volumeSubsystem = "volume"

type volumeMetrics struct {
	files       prometheus.Gauge
	directories prometheus.Gauge
	size        prometheus.Gauge
}

func newVolumeMetrics() volumeMetrics {
	return volumeMetrics{
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: volumeSubsystem,
			Name:      "files",
			Help:      "Number of files in the volume",
		}),
		directories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: volumeSubsystem,
			Name:      "directories",
			Help:      "Number of directories in the volume",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: volumeSubsystem,
			Name:      "size_bytes",
			Help:      "Total payload size of the volume files",
		}),
	}
}

func (m volumeMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.files)
	reg.MustRegister(m.directories)
	reg.MustRegister(m.size)
}

// SetVolumeStats updates volume content gauges.
func (m volumeMetrics) SetVolumeStats(files, directories int, size int64) {
	m.files.Set(float64(files))
	m.directories.Set(float64(directories))
	m.size.Set(float64(size))
}
