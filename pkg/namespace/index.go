// Package namespace emulates hierarchical file system on top of a flat
// record store. Every file and directory is a record whose full path is
// kept in the unique "path" index; directory listing is a prefix scan
// filtered by nesting level.
package namespace

import (
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	storelog "github.com/nspcc-dev/emfs/pkg/internal/log"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"go.uber.org/zap"
)

// Metrics collects durations of namespace operations.
type Metrics interface {
	AddMethodDuration(method string, success bool, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) AddMethodDuration(string, bool, time.Duration) {}

// DefaultCacheSize is the default number of path to identifier mappings
// kept in memory.
const DefaultCacheSize = 1024

// Option represents Index configuration option.
type Option func(*cfg)

type cfg struct {
	log       *zap.Logger
	metrics   Metrics
	cacheSize int
}

func defaultCfg() *cfg {
	return &cfg{
		log:       zap.NewNop(),
		metrics:   noopMetrics{},
		cacheSize: DefaultCacheSize,
	}
}

// WithLogger returns an option to specify logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "Namespace"))
	}
}

// WithMetrics returns an option to specify metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *cfg) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithCacheSize sets the size of path lookup cache. Non-positive size
// disables the cache.
func WithCacheSize(size int) Option {
	return func(c *cfg) {
		c.cacheSize = size
	}
}

// Index is a namespace over a record store. The store must declare
// unique index over KeyPath.
type Index struct {
	*cfg

	st    recordstore.Storage
	cache *lru.Cache[string, recordstore.ID]
}

// New creates Index over opened and initialized store.
func New(st recordstore.Storage, opts ...Option) (*Index, error) {
	c := defaultCfg()
	for i := range opts {
		opts[i](c)
	}

	x := &Index{cfg: c, st: st}

	if c.cacheSize > 0 {
		var err error
		x.cache, err = lru.New[string, recordstore.ID](c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("could not create path cache: %w", err)
		}
	}

	return x, nil
}

// Storage returns the underlying record store.
func (x *Index) Storage() recordstore.Storage {
	return x.st
}

func (x *Index) elapsed(method string, err *error) func() {
	start := time.Now()
	return func() {
		x.metrics.AddMethodDuration(method, *err == nil, time.Since(start))
	}
}

func (x *Index) write(op, p string, err error) {
	if err != nil {
		x.log.Debug("namespace operation failed", storelog.OpField(op), storelog.PathField(p), zap.Error(err))
		return
	}
	storelog.Write(x.log, storelog.OpField(op), storelog.PathField(p))
}

func (x *Index) cached(p string) (recordstore.ID, bool) {
	if x.cache == nil {
		return recordstore.ID{}, false
	}
	return x.cache.Get(p)
}

func (x *Index) remember(p string, id recordstore.ID) {
	if x.cache != nil {
		x.cache.Add(p, id)
	}
}

func (x *Index) forget(paths ...string) {
	if x.cache == nil {
		return
	}
	for _, p := range paths {
		x.cache.Remove(p)
	}
}

func (x *Index) purge() {
	if x.cache != nil {
		x.cache.Purge()
	}
}

// checkCanonical verifies p looks like a canonical path.
func checkCanonical(p string) error {
	if !strings.HasPrefix(p, path.Separator) || strings.Contains(p, path.AltSeparator) ||
		strings.Contains(p, path.Separator+path.Separator) {
		return fmt.Errorf("%w: %q is not canonical", ErrInvalidPath, p)
	}
	return nil
}

func checkDir(p string) error {
	if err := checkCanonical(p); err != nil {
		return err
	}
	if !path.IsDir(p) {
		return fmt.Errorf("%w: %q is not a directory path", ErrInvalidPath, p)
	}
	return nil
}

func checkFile(p string) error {
	if err := checkCanonical(p); err != nil {
		return err
	}
	if path.IsDir(p) {
		return fmt.Errorf("%w: %q is not a file path", ErrInvalidPath, p)
	}
	return nil
}

// get resolves canonical p outside of a transaction using the cache.
func (x *Index) get(p string) (recordstore.Record, error) {
	if id, ok := x.cached(p); ok {
		rec, err := x.st.Get(id)
		if err == nil && rec.Meta[KeyPath] == p {
			return rec, nil
		}
		x.forget(p)
		if err != nil && !errors.Is(err, recordstore.ErrNotFound) {
			return rec, err
		}
	}

	id, err := x.st.Lookup(KeyPath, p)
	if err != nil {
		return recordstore.Record{}, err
	}

	rec, err := x.st.Get(id)
	if err != nil {
		return rec, err
	}

	x.remember(p, id)
	return rec, nil
}

// exists checks whether p is taken inside a transaction.
func exists(r recordstore.Reader, p string) (bool, error) {
	_, err := r.Lookup(KeyPath, p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, recordstore.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Exists checks whether the entry with canonical path p exists. Missing
// entry is not an error.
func (x *Index) Exists(p string) (ok bool, err error) {
	defer x.elapsed("Exists", &err)()

	if err := checkCanonical(p); err != nil {
		return false, err
	}

	if _, cached := x.cached(p); cached {
		return true, nil
	}

	id, err := x.st.Lookup(KeyPath, p)
	switch {
	case err == nil:
		x.remember(p, id)
		return true, nil
	case errors.Is(err, recordstore.ErrNotFound):
		return false, nil
	default:
		return false, storeError(err)
	}
}

// Lookup returns the entry with canonical path p. Returns ErrNotFound
// marked error if it is missing.
func (x *Index) Lookup(p string) (e Entry, err error) {
	defer x.elapsed("Lookup", &err)()

	if err := checkCanonical(p); err != nil {
		return Entry{}, err
	}

	rec, err := x.get(p)
	if err != nil {
		return Entry{}, notFound(p, err)
	}
	return entryFromRecord(rec), nil
}

func notFound(p string, err error) error {
	if !errors.Is(err, recordstore.ErrNotFound) {
		return storeError(err)
	}
	if path.IsDir(p) {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, p)
	}
	return fmt.Errorf("%w: %s", ErrFileNotFound, p)
}

// ListChildren returns immediate children of canonical directory dir
// sorted by path.
func (x *Index) ListChildren(dir string) (res []Entry, err error) {
	defer x.elapsed("ListChildren", &err)()

	if err := checkDir(dir); err != nil {
		return nil, err
	}

	err = x.st.FindIndexed(KeyPath, dir, true, func(rec recordstore.Record) error {
		if p := rec.Meta[KeyPath]; path.IsChild(p, dir) {
			res = append(res, entryFromRecord(rec))
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return res, nil
}

// Stats counts entries of the namespace.
func (x *Index) Stats() (s Stats, err error) {
	defer x.elapsed("Stats", &err)()

	err = x.st.Iterate(func(rec recordstore.Record) error {
		if path.IsDir(rec.Meta[KeyPath]) {
			s.Directories++
		} else {
			s.Files++
			s.Bytes += int64(len(rec.Payload))
		}
		return nil
	})
	return s, storeError(err)
}
