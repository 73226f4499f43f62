package namespace

import (
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
)

// Metadata keys of namespace records.
const (
	KeyPath         = "path"
	KeyCreationTime = "creationTime"
	KeyAccessTime   = "lastAccessTime"
)

// Entry is a file or a directory of the namespace.
type Entry struct {
	ID   recordstore.ID
	Path string
	Size int64

	CreationTime   time.Time
	LastAccessTime time.Time
	// LastWriteTime is the revision of the underlying record.
	LastWriteTime time.Time
}

// IsDir checks whether e is a directory.
func (e Entry) IsDir() bool {
	return path.IsDir(e.Path)
}

// Name returns the last segment of the entry path.
func (e Entry) Name() string {
	return path.Name(e.Path)
}

func entryFromRecord(rec recordstore.Record) Entry {
	e := Entry{
		ID:            rec.ID,
		Path:          rec.Meta[KeyPath],
		Size:          int64(len(rec.Payload)),
		LastWriteTime: rec.Revision,
	}
	e.CreationTime, _ = rec.Meta.Time(KeyCreationTime)
	e.LastAccessTime, _ = rec.Meta.Time(KeyAccessTime)
	return e
}

func newMeta(p string, now time.Time) recordstore.Meta {
	m := recordstore.Meta{KeyPath: p}
	m.SetTime(KeyCreationTime, now)
	m.SetTime(KeyAccessTime, now)
	return m
}

// Times holds entry timestamps to be set. Nil fields are left intact.
type Times struct {
	Creation *time.Time
	Access   *time.Time
	Write    *time.Time
}

// Stats describes namespace content.
type Stats struct {
	Files       int
	Directories int
	Bytes       int64
}
