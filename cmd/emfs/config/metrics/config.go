package metricsconfig

import (
	"time"

	"github.com/nspcc-dev/emfs/cmd/emfs/config"
)

const (
	subsection = "metrics"

	// ShutdownTimeoutDefault is a default value for metrics HTTP service timeout.
	ShutdownTimeoutDefault = 30 * time.Second
)

// Enabled returns the value of "enabled" config parameter
// from "metrics" section.
//
// Returns false if the value is not a boolean.
func Enabled(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "enabled")
}

// Textfile returns the value of "textfile" config parameter
// from "metrics" section: the file metrics are written to in
// node_exporter textfile collector format.
func Textfile(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "textfile")
}

// Address returns the value of "address" config parameter
// from "metrics" section: the address metrics are served on
// during shell sessions.
//
// Returns empty string if the value is missing, metrics are
// not served then.
func Address(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "address")
}

// ShutdownTimeout returns the value of "shutdown_timeout" config parameter
// from "metrics" section.
//
// Returns ShutdownTimeoutDefault if the value is not positive duration.
func ShutdownTimeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "shutdown_timeout")
	if v > 0 {
		return v
	}

	return ShutdownTimeoutDefault
}
