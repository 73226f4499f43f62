package recordstore

import "errors"

var (
	// ErrNotFound is returned when the requested record or index value
	// is missing in the store.
	ErrNotFound = errors.New("record not found")

	// ErrIndexCollision is returned when a record is put with a value of
	// the unique index which is already taken by another record.
	ErrIndexCollision = errors.New("unique index collision")

	// ErrReadOnly MUST be returned for modifying operations when the store
	// was opened in read-only mode.
	ErrReadOnly = errors.New("opened as read-only")

	// ErrWrongPassword is returned when the store is encrypted and the
	// provided password does not match, or the password is missing.
	ErrWrongPassword = errors.New("wrong password or store is encrypted")

	// ErrClosed is returned on any operation on the store which is not open.
	ErrClosed = errors.New("store is closed")

	// ErrFatal is returned when the underlying database panics.
	ErrFatal = errors.New("fatal store error")
)
