package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespaceSubsystem = "namespace"

	methodLabelKey  = "method"
	successLabelKey = "success"
)

type namespaceMetrics struct {
	methodDuration *prometheus.HistogramVec
}

func newNamespaceMetrics() namespaceMetrics {
	return namespaceMetrics{
		methodDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: namespaceSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Namespace operations handling time",
		}, []string{methodLabelKey, successLabelKey}),
	}
}

func (m namespaceMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.methodDuration)
}

// AddMethodDuration observes duration of the namespace method call.
func (m namespaceMetrics) AddMethodDuration(method string, success bool, d time.Duration) {
	m.methodDuration.With(prometheus.Labels{
		methodLabelKey:  method,
		successLabelKey: strconv.FormatBool(success),
	}).Observe(d.Seconds())
}
