package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "emfs"

// VolumeMetrics collects metrics of a single volume: namespace operation
// timings and the volume content.
type VolumeMetrics struct {
	namespaceMetrics
	volumeMetrics

	registry *prometheus.Registry
}

// NewVolumeMetrics creates and registers volume metrics in a new registry.
func NewVolumeMetrics(version string) *VolumeMetrics {
	reg := prometheus.NewRegistry()

	ns := newNamespaceMetrics()
	ns.register(reg)

	vol := newVolumeMetrics()
	vol.register(reg)

	registerVersion(reg, version)

	return &VolumeMetrics{
		namespaceMetrics: ns,
		volumeMetrics:    vol,
		registry:         reg,
	}
}

// Gatherer returns the registry holding volume metrics.
func (m *VolumeMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile writes metrics in node_exporter textfile collector format.
func (m *VolumeMetrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func registerVersion(reg prometheus.Registerer, version string) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "version",
		Help:        "Version of the running emfs",
		ConstLabels: prometheus.Labels{"version": version},
	}, func() float64 { return 1 }))
}
