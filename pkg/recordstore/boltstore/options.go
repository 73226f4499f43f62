package boltstore

import (
	"io/fs"
	"time"

	"go.uber.org/zap"
)

// Option represents bbolt store configuration option.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	path string
	perm fs.FileMode

	password string
	compress bool
	indexes  []string

	noSync      bool
	lockTimeout time.Duration
}

const (
	defaultPerm        = 0o600
	defaultLockTimeout = time.Second
)

func defaultCfg() *cfg {
	return &cfg{
		log:         zap.NewNop(),
		perm:        defaultPerm,
		lockTimeout: defaultLockTimeout,
	}
}

// WithLogger returns an option to specify logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "BoltStore"))
	}
}

// WithPath sets path to the database file.
func WithPath(p string) Option {
	return func(c *cfg) {
		c.path = p
	}
}

// WithPermissions sets permissions of the database file and its directory.
func WithPermissions(perm fs.FileMode) Option {
	return func(c *cfg) {
		c.perm = perm
	}
}

// WithPassword makes the store encrypt records with a key derived from
// the password. The password of an existing store must match.
func WithPassword(password string) Option {
	return func(c *cfg) {
		c.password = password
	}
}

// WithCompression enables zstd compression of record payloads.
func WithCompression(enabled bool) Option {
	return func(c *cfg) {
		c.compress = enabled
	}
}

// WithUniqueIndex declares unique indexes over metadata values under
// the given keys.
func WithUniqueIndex(keys ...string) Option {
	return func(c *cfg) {
		c.indexes = append(c.indexes, keys...)
	}
}

// WithNoSync disables fsync after each commit.
func WithNoSync(noSync bool) Option {
	return func(c *cfg) {
		c.noSync = noSync
	}
}

// WithLockTimeout sets the time to wait for the database file lock.
// Zero means waiting indefinitely.
func WithLockTimeout(d time.Duration) Option {
	return func(c *cfg) {
		c.lockTimeout = d
	}
}
