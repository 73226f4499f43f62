package volume

import (
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
)

// State is the resolution state of an entry handle.
type State uint8

const (
	// Unresolved handle points to a path having no entry.
	Unresolved State = iota
	// Resolved handle points to an existing entry.
	Resolved
	// Deleted handle's entry was removed through it.
	Deleted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Unresolved:
		return "UNRESOLVED"
	case Resolved:
		return "RESOLVED"
	case Deleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// Entry is the common part of File and Directory handles.
type Entry interface {
	Name() string
	FullName() string
	IsDir() bool
	Exists() bool
	State() State
	CreationTime() time.Time
	LastAccessTime() time.Time
	LastWriteTime() time.Time
}

var (
	_ Entry = (*File)(nil)
	_ Entry = (*Directory)(nil)
)

// handle keeps resolution state of the canonical path.
type handle struct {
	v     *Volume
	path  string
	state State
	entry namespace.Entry
}

func (h *handle) refresh() error {
	e, err := h.v.idx.Lookup(h.path)
	switch {
	case err == nil:
		h.state = Resolved
		h.entry = e
	case isNotFound(err):
		if h.state != Deleted {
			h.state = Unresolved
		}
		h.entry = namespace.Entry{Path: h.path}
	default:
		return err
	}
	return nil
}

// rebind points the handle to a new path after a move.
func (h *handle) rebind(p string) error {
	h.path = p
	return h.refresh()
}

// FullName returns canonical path of the entry.
func (h *handle) FullName() string {
	return h.path
}

// Name returns the last path segment.
func (h *handle) Name() string {
	return path.Name(h.path)
}

// State returns the handle state as of the last resolution.
func (h *handle) State() State {
	return h.state
}

// Exists re-resolves the handle and checks whether the entry exists.
func (h *handle) Exists() bool {
	return h.refresh() == nil && h.state == Resolved
}

// CreationTime returns the creation time as of the last resolution.
func (h *handle) CreationTime() time.Time {
	return h.entry.CreationTime
}

// LastAccessTime returns the last access time as of the last resolution.
func (h *handle) LastAccessTime() time.Time {
	return h.entry.LastAccessTime
}

// LastWriteTime returns the last write time as of the last resolution.
func (h *handle) LastWriteTime() time.Time {
	return h.entry.LastWriteTime
}

func (h *handle) setTimes(t namespace.Times) error {
	if err := h.v.idx.SetTimes(h.path, t); err != nil {
		return err
	}
	return h.refresh()
}

// SetCreationTime sets the creation time of the entry.
func (h *handle) SetCreationTime(t time.Time) error {
	return h.setTimes(namespace.Times{Creation: &t})
}

// SetLastAccessTime sets the last access time of the entry.
func (h *handle) SetLastAccessTime(t time.Time) error {
	return h.setTimes(namespace.Times{Access: &t})
}

// SetLastWriteTime sets the last write time of the entry.
func (h *handle) SetLastWriteTime(t time.Time) error {
	return h.setTimes(namespace.Times{Write: &t})
}

func (h *handle) parent() (*Directory, error) {
	parent, err := path.Parent(h.path)
	if err != nil {
		return nil, nil
	}
	return h.v.Directory(parent)
}
