package memstore

import "go.uber.org/zap"

// Option represents in-memory store configuration option.
type Option func(*cfg)

type cfg struct {
	log      *zap.Logger
	password string
	compress bool
	indexes  []string
}

func defaultCfg() *cfg {
	return &cfg{
		log: zap.NewNop(),
	}
}

// WithLogger returns an option to specify logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "MemStore"))
	}
}

// WithPassword sets the password protecting the persisted image of the
// store. Records in memory are kept in plain form.
func WithPassword(password string) Option {
	return func(c *cfg) {
		c.password = password
	}
}

// WithCompression enables payload compression in the persisted image.
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
