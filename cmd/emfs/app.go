package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/emfs/cmd/emfs/config"
	loggerconfig "github.com/nspcc-dev/emfs/cmd/emfs/config/logger"
	metricsconfig "github.com/nspcc-dev/emfs/cmd/emfs/config/metrics"
	volumeconfig "github.com/nspcc-dev/emfs/cmd/emfs/config/volume"
	"github.com/nspcc-dev/emfs/misc"
	"github.com/nspcc-dev/emfs/pkg/metrics"
	httputil "github.com/nspcc-dev/emfs/pkg/util/http"
	"github.com/nspcc-dev/emfs/pkg/util/logger"
	"github.com/nspcc-dev/emfs/pkg/volume"
	"github.com/nspcc-dev/neo-go/cli/input"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "~/.config/emfs.yaml"

// Global flag names.
const (
	configFlag      = "config"
	volumeFlag      = "volume"
	passwordFlag    = "password"
	askPasswordFlag = "ask-password"
	memoryFlag      = "memory"
)

var errNoVolume = errors.New("volume path is not set, use --volume, --memory or config")

// app keeps the state shared by commands of a single run or of a shell
// session.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.VolumeMetrics

	vol *volume.Volume
	// shell session keeps the volume open between commands
	shell bool
}

// init reads configuration and builds the logger and the metrics.
func (a *app) init(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	p, _ := cmd.Flags().GetString(configFlag)
	if p == "" {
		if def, err := homedir.Expand(defaultConfigPath); err == nil {
			if _, err := os.Stat(def); err == nil {
				p = def
			}
		}
	}

	var opts []config.Option
	if p != "" {
		opts = append(opts, config.WithConfigFile(p))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return err
	}

	var prm logger.Prm
	if err := prm.SetLevelString(loggerconfig.Level(cfg)); err != nil {
		return err
	}
	if err := prm.SetEncoding(loggerconfig.Encoding(cfg)); err != nil {
		return err
	}

	log, err := logger.NewLogger(&prm)
	if err != nil {
		return err
	}

	if metricsconfig.Enabled(cfg) {
		a.metrics = metrics.NewVolumeMetrics(misc.Version)
	}

	a.cfg = cfg
	a.log = log

	if used := cfg.Used(); used != "" {
		log.Debug("config file read", zap.String("path", used))
	}
	return nil
}

func (a *app) volumePath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString(volumeFlag); p != "" {
		return p
	}
	return volumeconfig.Path(a.cfg)
}

func (a *app) password(cmd *cobra.Command) (string, error) {
	if ask, _ := cmd.Flags().GetBool(askPasswordFlag); ask {
		pwd, err := input.ReadPassword("Enter volume password > ")
		if err != nil {
			return "", fmt.Errorf("can't read password: %w", err)
		}
		return pwd, nil
	}

	if pwd, _ := cmd.Flags().GetString(passwordFlag); pwd != "" {
		return pwd, nil
	}
	return volumeconfig.Password(a.cfg), nil
}

func (a *app) volumeOptions(password string, readOnly bool) []volume.Option {
	opts := []volume.Option{
		volume.WithLogger(a.log),
		volume.WithPassword(password),
		volume.WithReadOnly(readOnly || volumeconfig.ReadOnly(a.cfg)),
		volume.WithCompression(volumeconfig.Compress(a.cfg)),
		volume.WithNoSync(volumeconfig.NoSync(a.cfg)),
		volume.WithLockTimeout(volumeconfig.LockTimeout(a.cfg)),
		volume.WithCacheSize(volumeconfig.CacheSize(a.cfg)),
	}
	if a.metrics != nil {
		opts = append(opts, volume.WithMetrics(a.metrics))
	}
	return opts
}

// volume returns the volume of the session opening it if necessary.
// With --memory flag the volume file (if any) is loaded into memory.
func (a *app) volume(cmd *cobra.Command, readOnly bool) (*volume.Volume, error) {
	if a.vol != nil {
		return a.vol, nil
	}

	pwd, err := a.password(cmd)
	if err != nil {
		return nil, err
	}

	var (
		v    *volume.Volume
		p    = a.volumePath(cmd)
		opts = a.volumeOptions(pwd, readOnly)
	)

	switch memory, _ := cmd.Flags().GetBool(memoryFlag); {
	case memory && p != "":
		v, err = volume.LoadFile(p, opts...)
	case memory:
		v, err = volume.OpenMemory(opts...)
	case p != "":
		v, err = volume.OpenFile(p, opts...)
	default:
		return nil, errNoVolume
	}
	if err != nil {
		return nil, fmt.Errorf("can't open volume: %w", err)
	}

	a.vol = v
	return v, nil
}

// release closes the volume unless the shell session owns it and flushes
// the metrics.
func (a *app) release() error {
	if a.vol == nil {
		return nil
	}

	err := a.flushMetrics()

	if a.shell {
		return err
	}

	if cErr := a.vol.Close(); err == nil {
		err = cErr
	}
	a.vol = nil
	return err
}

func (a *app) flushMetrics() error {
	if a.metrics == nil {
		return nil
	}

	info, err := a.vol.Stat()
	if err != nil {
		return err
	}
	a.metrics.SetVolumeStats(info.Files, info.Directories, info.Bytes)

	if p := metricsconfig.Textfile(a.cfg); p != "" {
		if err := a.metrics.WriteToTextfile(p); err != nil {
			return fmt.Errorf("can't write metrics: %w", err)
		}
	}
	return nil
}

// withVolume runs f over the session volume releasing it afterwards.
func (a *app) withVolume(cmd *cobra.Command, readOnly bool, f func(*volume.Volume) error) error {
	v, err := a.volume(cmd, readOnly)
	if err != nil {
		return err
	}

	err = f(v)
	if rErr := a.release(); err == nil {
		err = rErr
	}
	return err
}

// serveMetrics starts metrics HTTP server if it is configured. The
// returned function stops it.
func (a *app) serveMetrics() (func(), error) {
	addr := metricsconfig.Address(a.cfg)
	if a.metrics == nil || addr == "" {
		return func() {}, nil
	}

	srv, err := httputil.New(addr,
		promhttp.HandlerFor(a.metrics.Gatherer(), promhttp.HandlerOpts{}),
		httputil.WithShutdownTimeout(metricsconfig.ShutdownTimeout(a.cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("can't create metrics server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return nil, fmt.Errorf("can't start metrics server: %w", err)
	}

	go func() {
		if err := srv.Serve(); err != nil {
			a.log.Error("metrics server failure", zap.Error(err))
		}
	}()

	a.log.Info("serving metrics", zap.Stringer("address", srv.Addr()))

	return func() {
		if err := srv.Shutdown(); err != nil {
			a.log.Debug("metrics server shutdown", zap.Error(err))
		}
	}, nil
}
