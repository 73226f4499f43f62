package recordstore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// IDSize is a length of the binary record identifier.
const IDSize = 16

// ID is an opaque unique identifier of the record assigned by the store.
// Its text form is base58.
type ID [IDSize]byte

var errInvalidIDLen = errors.New("invalid record ID length")

// NewID generates a random identifier.
func NewID() ID {
	return ID(uuid.New())
}

// IsZero checks whether id is a zero (unset) value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String returns base58 representation of id.
func (id ID) String() string {
	return base58.Encode(id[:])
}

// DecodeString decodes base58 representation of the identifier.
func (id *ID) DecodeString(s string) error {
	data, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode base58: %w", err)
	}

	return id.Decode(data)
}

// Decode reads id from its binary representation.
func (id *ID) Decode(data []byte) error {
	if len(data) != IDSize {
		return fmt.Errorf("%w: %d", errInvalidIDLen, len(data))
	}

	copy(id[:], data)

	return nil
}
