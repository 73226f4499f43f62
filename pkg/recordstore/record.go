package recordstore

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Meta is a small string map attached to each record. Unique indexes are
// built over its values.
type Meta map[string]string

// Record is a single unit of the store: the identifier, opaque payload,
// metadata and the revision timestamp maintained by the store itself.
type Record struct {
	ID      ID
	Payload []byte
	Meta    Meta
	// Revision is updated by the store on every payload write. It is
	// preserved on Put if set.
	Revision time.Time
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	res := r
	res.Meta = r.Meta.Clone()
	if r.Payload != nil {
		res.Payload = slices.Clone(r.Payload)
	}

	return res
}

// Clone returns a copy of m.
func (m Meta) Clone() Meta {
	if m == nil {
		return Meta{}
	}

	return maps.Clone(m)
}

// Range of times representable by SetTime and record revisions.
var (
	MinTime = time.Unix(0, math.MinInt64)
	MaxTime = time.Unix(0, math.MaxInt64)
)

// TimeInRange checks whether t can be stored without overflow.
func TimeInRange(t time.Time) bool {
	return !t.Before(MinTime) && !t.After(MaxTime)
}

// SetTime stores t under key with nanosecond precision. t must be in
// [MinTime, MaxTime].
func (m Meta) SetTime(key string, t time.Time) {
	m[key] = strconv.FormatInt(t.UnixNano(), 10)
}

// Time returns time stored under key by SetTime in the local location.
// Returns false if the value is missing or malformed.
func (m Meta) Time(key string) (time.Time, bool) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, false
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(0, n), true
}

// EncodeBinary implements the io.Serializable interface. Keys are written in
// sorted order so equal maps always have equal encoding.
func (m Meta) EncodeBinary(w *io.BinWriter) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	w.WriteVarUint(uint64(len(keys)))
	for _, k := range keys {
		w.WriteString(k)
		w.WriteString(m[k])
	}
}

// DecodeBinary implements the io.Serializable interface.
func (m *Meta) DecodeBinary(r *io.BinReader) {
	size := r.ReadVarUint()
	if r.Err != nil {
		return
	}

	res := make(Meta, size)
	for i := uint64(0); i < size; i++ {
		k := r.ReadString()
		v := r.ReadString()
		if r.Err != nil {
			return
		}
		res[k] = v
	}

	*m = res
}
