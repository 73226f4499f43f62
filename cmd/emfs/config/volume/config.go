package volumeconfig

import (
	"time"

	"github.com/nspcc-dev/emfs/cmd/emfs/config"
	"github.com/nspcc-dev/emfs/pkg/namespace"
)

const (
	subsection = "volume"

	// LockTimeoutDefault is a default time to wait for the volume file lock.
	LockTimeoutDefault = time.Second

	// CacheSizeDefault is a default size of the path lookup cache.
	CacheSizeDefault = namespace.DefaultCacheSize
)

// Path returns the value of "path" config parameter
// from "volume" section.
//
// Returns empty string if the value is missing, memory volume
// is used then.
func Path(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "path")
}

// Password returns the value of "password" config parameter
// from "volume" section.
func Password(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "password")
}

// ReadOnly returns the value of "read_only" config parameter
// from "volume" section.
//
// Returns false if the value is not a boolean.
func ReadOnly(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "read_only")
}

// Compress returns the value of "compress" config parameter
// from "volume" section.
//
// Returns false if the value is not a boolean.
func Compress(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "compress")
}

// NoSync returns the value of "no_sync" config parameter
// from "volume" section.
//
// Returns false if the value is not a boolean.
func NoSync(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "no_sync")
}

// LockTimeout returns the value of "lock_timeout" config parameter
// from "volume" section.
//
// Returns LockTimeoutDefault if the value is not a positive duration.
func LockTimeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "lock_timeout")
	if v > 0 {
		return v
	}

	return LockTimeoutDefault
}

// CacheSize returns the value of "cache_size" config parameter
// from "volume" section.
//
// Returns CacheSizeDefault if the value is missing or not a
// non-negative integer. Zero disables the cache.
func CacheSize(c *config.Config) int {
	sub := c.Sub(subsection)
	if sub.Value("cache_size") == nil {
		return CacheSizeDefault
	}

	return int(config.UintSafe(sub, "cache_size"))
}
