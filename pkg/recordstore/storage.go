package recordstore

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Filter is a predicate over record metadata used by Find.
type Filter func(Meta) bool

// Handler is called for every record selected by the iteration. Returning
// a non-nil error stops the iteration and the error is returned to the
// caller unless it is ErrStop.
type Handler func(Record) error

// ErrStop may be returned by Handler to interrupt iteration without error.
var ErrStop = errors.New("stop iteration")

// Reader groups read operations available both inside a transaction and on
// the store itself.
type Reader interface {
	// Get reads the record by id. Returns ErrNotFound if it is missing.
	Get(ID) (Record, error)
	// Lookup returns the id of the record having value under the unique
	// index key. Returns ErrNotFound if there is no such record.
	Lookup(key, value string) (ID, error)
	// FindIndexed walks records whose value under the unique index key is
	// equal to value, or starts with it when prefix is set, in ascending
	// value order.
	FindIndexed(key, value string, prefix bool, h Handler) error
	// Find walks every record whose metadata satisfies the filter. A nil
	// filter selects everything.
	Find(f Filter, h Handler) error
}

// Writer groups modifying operations.
type Writer interface {
	// Put saves the record. A zero ID is replaced with a new one; zero
	// Revision is replaced with the current time. Existing record with
	// the same ID is overwritten. Returns ErrIndexCollision if any unique
	// index value is taken by another record.
	Put(Record) (ID, error)
	// UpdateMeta replaces the metadata of the record keeping its payload
	// and revision.
	UpdateMeta(ID, Meta) error
	// UpdatePayload replaces the payload of the record and sets its
	// revision to the current time.
	UpdatePayload(ID, []byte) error
	// SetRevision overrides the revision timestamp of the record.
	SetRevision(ID, time.Time) error
	// Delete removes the record. Returns ErrNotFound if it is missing.
	Delete(ID) error
}

// Tx is a set of operations executed atomically by Storage.Update.
type Tx interface {
	Reader
	Writer
}

// Storage represents a flat collection of independently addressable
// records with unique secondary indexes over metadata values.
//
// Reader and Writer methods called on the Storage itself are executed in
// their own transaction.
type Storage interface {
	Open(readOnly bool) error
	Init() error
	Close() error

	Type() string
	Path() string

	Reader
	Writer
	// Iterate walks all the records of the store.
	Iterate(Handler) error

	// View executes f in a read-only transaction.
	View(f func(Reader) error) error
	// Update executes f in a read-write transaction. If f returns an
	// error, none of its changes are applied.
	Update(f func(Tx) error) error

	// Rebuild re-encodes every record of the store protecting them with
	// the new password. Empty password removes the protection.
	Rebuild(newPassword string) error
	// WriteTo writes the persisted image of the store which can be opened
	// as a file-backed store.
	WriteTo(w io.Writer) (int64, error)
}

// Copy copies all records from source Storage into the destination one
// keeping their identifiers and revisions. Both storages must be opened and
// initialized. If any record cannot be stored, Copy immediately fails.
func Copy(dst, src Storage) error {
	return dst.Update(func(tx Tx) error {
		err := src.Iterate(func(rec Record) error {
			if _, err := tx.Put(rec); err != nil {
				return fmt.Errorf("put record %s into destination store: %w", rec.ID, err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("iterate over source store: %w", err)
		}
		return nil
	})
}
