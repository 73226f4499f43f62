package volume

import (
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"go.uber.org/zap"
)

// Option represents Volume configuration option.
type Option func(*cfg)

type cfg struct {
	log     *zap.Logger
	metrics namespace.Metrics

	password    string
	readOnly    bool
	compress    bool
	noSync      bool
	lockTimeout time.Duration
	cacheSize   int
}

const defaultLockTimeout = time.Second

func defaultCfg() *cfg {
	return &cfg{
		log:         zap.NewNop(),
		lockTimeout: defaultLockTimeout,
		cacheSize:   namespace.DefaultCacheSize,
	}
}

// WithLogger returns an option to specify logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithMetrics returns an option to specify namespace metrics sink.
func WithMetrics(m namespace.Metrics) Option {
	return func(c *cfg) {
		c.metrics = m
	}
}

// WithPassword sets the volume password. File volumes are encrypted with
// it, memory volumes protect their saved images.
func WithPassword(password string) Option {
	return func(c *cfg) {
		c.password = password
	}
}

// WithReadOnly opens the volume in read-only mode.
func WithReadOnly(readOnly bool) Option {
	return func(c *cfg) {
		c.readOnly = readOnly
	}
}

// WithCompression enables zstd compression of file payloads.
func WithCompression(compress bool) Option {
	return func(c *cfg) {
		c.compress = compress
	}
}

// WithNoSync disables fsync after each change of the file volume.
func WithNoSync(noSync bool) Option {
	return func(c *cfg) {
		c.noSync = noSync
	}
}

// WithLockTimeout sets the time to wait for the file volume lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *cfg) {
		c.lockTimeout = d
	}
}

// WithCacheSize sets the size of path lookup cache.
func WithCacheSize(size int) Option {
	return func(c *cfg) {
		c.cacheSize = size
	}
}
