// Package volume provides file system-like access to a namespace kept in
// a single record store: file-backed or in-memory.
package volume

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/boltstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/memstore"
	"github.com/nspcc-dev/emfs/pkg/util"
	"go.uber.org/zap"
)

// Volume formats.
const (
	FormatMemory = "MEMORY"
	FormatFile   = "FILE"
)

// MemoryName is the name of in-memory volumes.
const MemoryName = ":memory:"

// Volume is a hierarchical namespace stored in one record store which is
// owned by the Volume for its whole lifetime.
type Volume struct {
	*cfg

	name   string
	st     recordstore.Storage
	idx    *namespace.Index
	closed bool
}

// Info describes volume content.
type Info struct {
	Name        string `yaml:"name"`
	Format      string `yaml:"format"`
	ReadOnly    bool   `yaml:"read_only"`
	Protected   bool   `yaml:"protected"`
	Files       int    `yaml:"files"`
	Directories int    `yaml:"directories"`
	Bytes       int64  `yaml:"bytes"`
}

func storeFault(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFault, err)
}

// OpenMemory creates an empty in-memory volume.
func OpenMemory(opts ...Option) (*Volume, error) {
	c := defaultCfg()
	for i := range opts {
		opts[i](c)
	}

	st := memstore.New(
		memstore.WithUniqueIndex(namespace.KeyPath),
		memstore.WithPassword(c.password),
		memstore.WithCompression(c.compress),
		memstore.WithLogger(c.log),
	)

	// Read-only mode makes sense only for file volumes.
	c.readOnly = false

	return open(c, MemoryName, st)
}

// OpenFile opens the file volume creating it if necessary. Returns
// ErrStoreFault wrapping ErrWrongPassword if the password doesn't match.
func OpenFile(p string, opts ...Option) (*Volume, error) {
	c := defaultCfg()
	for i := range opts {
		opts[i](c)
	}

	st := boltstore.New(
		boltstore.WithPath(p),
		boltstore.WithUniqueIndex(namespace.KeyPath),
		boltstore.WithPassword(c.password),
		boltstore.WithCompression(c.compress),
		boltstore.WithNoSync(c.noSync),
		boltstore.WithLockTimeout(c.lockTimeout),
		boltstore.WithLogger(c.log),
	)

	return open(c, p, st)
}

// Load creates in-memory volume from the image written by SaveTo.
func Load(r io.Reader, opts ...Option) (*Volume, error) {
	v, err := OpenMemory(opts...)
	if err != nil {
		return nil, err
	}

	if _, err := v.st.(*memstore.Store).ReadFrom(r); err != nil {
		_ = v.Close()
		return nil, storeFault(err)
	}

	if err := v.idx.CreateDirectory(path.Root); err != nil {
		_ = v.Close()
		return nil, err
	}

	return v, nil
}

// LoadFile creates in-memory volume from the image file.
func LoadFile(p string, opts ...Option) (*Volume, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open volume image: %w", err)
	}
	defer f.Close()

	return Load(f, opts...)
}

func open(c *cfg, name string, st recordstore.Storage) (*Volume, error) {
	if err := st.Open(c.readOnly); err != nil {
		return nil, storeFault(err)
	}

	if err := st.Init(); err != nil {
		_ = st.Close()
		return nil, storeFault(err)
	}

	idx, err := namespace.New(st,
		namespace.WithLogger(c.log),
		namespace.WithMetrics(c.metrics),
		namespace.WithCacheSize(c.cacheSize),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	if !c.readOnly {
		if err := idx.CreateDirectory(path.Root); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	c.log.Debug("volume opened",
		zap.String("name", name),
		zap.String("type", st.Type()),
		zap.Bool("read_only", c.readOnly))

	return &Volume{
		cfg:  c,
		name: name,
		st:   st,
		idx:  idx,
	}, nil
}

// Close releases the record store. Memory volume content is lost unless
// saved. It is safe to call Close multiple times.
func (v *Volume) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true

	if err := v.st.Close(); err != nil {
		return storeFault(err)
	}

	v.log.Debug("volume closed", zap.String("name", v.name))
	return nil
}

// SaveTo writes volume image to w. The image can be opened with OpenFile
// or loaded with Load using the same password.
func (v *Volume) SaveTo(w io.Writer) (int64, error) {
	if v.closed {
		return 0, ErrClosed
	}

	n, err := v.st.WriteTo(w)
	if err != nil {
		return n, storeFault(err)
	}
	return n, nil
}

// SaveToFile writes volume image into a file replacing it atomically.
func (v *Volume) SaveToFile(p string) error {
	if v.closed {
		return ErrClosed
	}

	if abs, err := filepath.Abs(p); err == nil && v.Format() == FormatFile {
		if own, err := filepath.Abs(v.name); err == nil && own == abs {
			return fmt.Errorf("%w: can't save volume into its own file", ErrAccessDenied)
		}
	}

	return util.WriteFileAtomic(p, func(w io.Writer) error {
		_, err := v.SaveTo(w)
		return err
	})
}

// Name returns the path of the file volume or MemoryName.
func (v *Volume) Name() string {
	return v.name
}

// InMemory checks whether the volume is kept in memory.
func (v *Volume) InMemory() bool {
	return v.st.Type() == memstore.Type
}

// Format returns FormatMemory or FormatFile.
func (v *Volume) Format() string {
	if v.InMemory() {
		return FormatMemory
	}
	return FormatFile
}

// ReadOnly checks whether the volume was opened in read-only mode.
func (v *Volume) ReadOnly() bool {
	return v.readOnly
}

// Protected checks whether the volume is password protected.
func (v *Volume) Protected() bool {
	p, ok := v.st.(interface{ Protected() bool })
	return ok && p.Protected()
}

// Index returns the namespace of the volume.
func (v *Volume) Index() *namespace.Index {
	return v.idx
}

// Stat returns volume information.
func (v *Volume) Stat() (Info, error) {
	if v.closed {
		return Info{}, ErrClosed
	}

	s, err := v.idx.Stats()
	if err != nil {
		return Info{}, err
	}

	return Info{
		Name:        v.name,
		Format:      v.Format(),
		ReadOnly:    v.readOnly,
		Protected:   v.Protected(),
		Files:       s.Files,
		Directories: s.Directories,
		Bytes:       s.Bytes,
	}, nil
}

// Root returns the root directory handle.
func (v *Volume) Root() *Directory {
	d, _ := v.Directory(path.Root)
	return d
}

// Directory returns a handle of the directory p.
func (v *Volume) Directory(p string) (*Directory, error) {
	p, err := path.Directory(p)
	if err != nil {
		return nil, err
	}

	d := &Directory{handle{v: v, path: p}}
	if err := d.Refresh(); err != nil {
		return nil, err
	}
	return d, nil
}

// File returns a handle of the file p.
func (v *Volume) File(p string) (*File, error) {
	p, err := path.File(p)
	if err != nil {
		return nil, err
	}

	f := &File{handle{v: v, path: p}}
	if err := f.Refresh(); err != nil {
		return nil, err
	}
	return f, nil
}

// isNotFound checks whether err reports missing entry.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
