package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prm groups Logger's parameters.
// Successful passing non-nil parameters to the NewLogger (if returned
// error is nil) leads to a valid Logger.
type Prm struct {
	// link to the created Logger
	// instance; used for a runtime
	// reconfiguration
	level zap.AtomicLevel

	// support runtime rereading
	levelStr string

	// output encoding, console or json
	encoding string
}

const (
	defaultLevel    = zapcore.InfoLevel
	defaultEncoding = "console"
)

// SetLevelString sets the minimum logging level. Default is
// "info".
//
// Returns an error if s is not a string representation of a
// supporting logging level.
//
// Supports runtime rereading.
func (p *Prm) SetLevelString(s string) error {
	if _, err := parseLevel(s); err != nil {
		return err
	}
	p.levelStr = s
	return nil
}

// SetEncoding sets the output encoding: "console" (default) or "json".
func (p *Prm) SetEncoding(s string) error {
	switch s {
	case "", "console", "json":
		p.encoding = s
		return nil
	default:
		return fmt.Errorf("unsupported logger encoding %q", s)
	}
}

// Reload reloads configuration of a connected instance of the Logger.
// Returns an error if the instance has not been created yet.
func (p *Prm) Reload() error {
	if p.level == (zap.AtomicLevel{}) {
		return fmt.Errorf("logger has not been created yet")
	}

	lvl, err := parseLevel(p.levelStr)
	if err != nil {
		return err
	}

	p.level.SetLevel(lvl)
	return nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return defaultLevel, nil
	}

	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return lvl, fmt.Errorf("invalid logger level %q: %w", s, err)
	}
	return lvl, nil
}

// NewLogger constructs a new zap logger instance. Constructing with nil
// parameters is safe: default values will be used then.
//
// Logger is built from production logging configuration with:
//   - parameterized level;
//   - console (default) or json encoding;
//   - ISO8601 time encoding;
//   - stack traces only for fatal messages.
func NewLogger(prm *Prm) (*zap.Logger, error) {
	if prm == nil {
		prm = new(Prm)
	}

	lvl, err := parseLevel(prm.levelStr)
	if err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = defaultEncoding
	if prm.encoding != "" {
		c.Encoding = prm.encoding
	}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	prm.level = c.Level

	return l, nil
}
