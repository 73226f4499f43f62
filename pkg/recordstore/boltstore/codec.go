package boltstore

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/compression"
	"github.com/nspcc-dev/emfs/pkg/recordstore/crypt"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// recordVersion is the first byte of the encoded record.
const recordVersion = 1

// codec converts records to database values and back. The record is
// encoded as
//
//	version | compressed flag | revision (u64 LE nanoseconds) | meta | var-bytes payload
//
// and then sealed as a whole if cipher is set.
type codec struct {
	cipher      *crypt.Cipher
	compression *compression.Config
}

func (c codec) encode(rec recordstore.Record) ([]byte, error) {
	payload := rec.Payload
	compressed := c.compression.NeedsCompression(payload)
	if compressed {
		payload = c.compression.Compress(payload)
	}

	w := io.NewBufBinWriter()
	w.WriteB(recordVersion)
	w.WriteBool(compressed)
	w.WriteU64LE(uint64(rec.Revision.UnixNano()))
	rec.Meta.EncodeBinary(w.BinWriter)
	w.WriteVarBytes(payload)
	if w.Err != nil {
		return nil, fmt.Errorf("encode record: %w", w.Err)
	}

	data := w.Bytes()
	if c.cipher == nil {
		return data, nil
	}
	return c.cipher.Seal(data)
}

func (c codec) decode(id recordstore.ID, data []byte) (recordstore.Record, error) {
	var err error

	if c.cipher != nil {
		data, err = c.cipher.Open(data)
		if errors.Is(err, crypt.ErrAuthFailed) {
			return recordstore.Record{}, fmt.Errorf("record %s: %w", id, recordstore.ErrWrongPassword)
		}
		if err != nil {
			return recordstore.Record{}, fmt.Errorf("record %s: %w", id, err)
		}
	}

	r := io.NewBinReaderFromBuf(data)
	if v := r.ReadB(); r.Err == nil && v != recordVersion {
		return recordstore.Record{}, fmt.Errorf("record %s: unsupported version %d", id, v)
	}

	compressed := r.ReadBool()
	revision := r.ReadU64LE()

	var meta recordstore.Meta
	meta.DecodeBinary(r)

	payload := r.ReadVarBytes(math.MaxInt32)
	if r.Err != nil {
		return recordstore.Record{}, fmt.Errorf("decode record %s: %w", id, r.Err)
	}

	if compressed {
		payload, err = c.compression.DecompressForce(payload)
		if err != nil {
			return recordstore.Record{}, fmt.Errorf("decompress record %s: %w", id, err)
		}
	}

	return recordstore.Record{
		ID:       id,
		Payload:  payload,
		Meta:     meta,
		Revision: time.Unix(0, int64(revision)),
	}, nil
}
