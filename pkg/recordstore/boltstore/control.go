package boltstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/crypt"
	"github.com/nspcc-dev/emfs/pkg/util"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// version contains current store layout version.
const version = 1

var (
	versionKey  = []byte("version")
	saltKey     = []byte("salt")
	verifierKey = []byte("verifier")
)

// Open opens bbolt database and reads the store state. Password is not
// checked until Init.
func (s *Store) Open(readOnly bool) error {
	err := util.MkdirAllX(filepath.Dir(s.path), s.perm)
	if err != nil {
		return fmt.Errorf("can't create dir %s for record store: %w", s.path, err)
	}

	s.log.Debug("created directory for record store", zap.String("path", s.path))

	s.db, err = bbolt.Open(s.path, s.perm, &bbolt.Options{
		Timeout:  s.lockTimeout,
		NoSync:   s.noSync,
		ReadOnly: readOnly,
	})
	if err != nil {
		return fmt.Errorf("can't open boltDB database: %w", err)
	}
	s.readOnly = readOnly

	s.log.Debug("opened boltDB instance for record store")

	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(infoBucket)
		s.initialized = b != nil
		s.protected = b != nil && b.Get(verifierKey) != nil
		return nil
	})
}

// Init checks store version and password and creates static buckets.
// Returns recordstore.ErrWrongPassword if the password doesn't match.
func (s *Store) Init() error {
	if s.db == nil {
		return recordstore.ErrClosed
	}

	if err := s.compression.Init(); err != nil {
		return fmt.Errorf("could not init compression: %w", err)
	}

	if s.readOnly {
		return s.db.View(func(tx *bbolt.Tx) error {
			if err := checkVersion(tx); err != nil {
				return err
			}
			return s.initCipher(tx)
		})
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := checkVersion(tx); err != nil {
			return err
		}

		if !s.initialized {
			if err := updateVersion(tx, version); err != nil {
				return err
			}
		}

		for _, name := range s.staticBuckets() {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("could not create static bucket %s: %w", name, err)
			}
		}

		if !s.initialized && s.password != "" {
			c, err := setPassword(tx, s.password)
			if err != nil {
				return err
			}
			s.cipher = c
			s.protected = true
			s.initialized = true
			return nil
		}

		s.initialized = true
		return s.initCipher(tx)
	})
}

func (s *Store) staticBuckets() [][]byte {
	res := [][]byte{recordsBucket, infoBucket}
	for _, key := range s.indexes {
		res = append(res, indexBucketName(key))
	}
	return res
}

func (s *Store) initCipher(tx *bbolt.Tx) error {
	var salt, verifier []byte

	if b := tx.Bucket(infoBucket); b != nil {
		salt = b.Get(saltKey)
		verifier = b.Get(verifierKey)
	}

	if verifier == nil {
		if s.password != "" && s.initialized {
			return fmt.Errorf("%w: store is not protected", recordstore.ErrWrongPassword)
		}
		if s.password != "" {
			// Fresh read-only store, nothing to decrypt yet.
			c, err := newCipher(s.password)
			if err != nil {
				return err
			}
			s.cipher = c
		}
		return nil
	}

	if s.password == "" {
		return fmt.Errorf("%w: password is required", recordstore.ErrWrongPassword)
	}

	c, err := crypt.New(s.password, salt)
	if err != nil {
		return err
	}

	err = c.Verify(verifier)
	if errors.Is(err, crypt.ErrAuthFailed) {
		return recordstore.ErrWrongPassword
	}
	if err != nil {
		return err
	}

	s.cipher = c
	return nil
}

func newCipher(password string) (*crypt.Cipher, error) {
	salt, err := crypt.NewSalt()
	if err != nil {
		return nil, err
	}
	return crypt.New(password, salt)
}

// setPassword generates a new salt and stores it with the verifier of
// the password. Empty password removes the protection and returns nil
// cipher.
func setPassword(tx *bbolt.Tx, password string) (*crypt.Cipher, error) {
	b, err := tx.CreateBucketIfNotExists(infoBucket)
	if err != nil {
		return nil, fmt.Errorf("can't create info bucket: %w", err)
	}

	if password == "" {
		if err := b.Delete(saltKey); err != nil {
			return nil, err
		}
		return nil, b.Delete(verifierKey)
	}

	salt, err := crypt.NewSalt()
	if err != nil {
		return nil, err
	}

	c, err := crypt.New(password, salt)
	if err != nil {
		return nil, err
	}

	verifier, err := c.Verifier()
	if err != nil {
		return nil, err
	}

	if err := b.Put(saltKey, salt); err != nil {
		return nil, err
	}
	if err := b.Put(verifierKey, verifier); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes boltDB instance. It is safe to call Close multiple times.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	if cErr := s.compression.Close(); err == nil {
		err = cErr
	}
	return err
}

func checkVersion(tx *bbolt.Tx) error {
	b := tx.Bucket(infoBucket)
	if b != nil {
		data := b.Get(versionKey)
		if len(data) == 8 {
			stored := binary.LittleEndian.Uint64(data)
			if stored != version {
				return fmt.Errorf("invalid version: expected=%d, stored=%d", version, stored)
			}
		}
	}
	return nil
}

func updateVersion(tx *bbolt.Tx, version uint64) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, version)

	b, err := tx.CreateBucketIfNotExists(infoBucket)
	if err != nil {
		return fmt.Errorf("can't create info bucket: %w", err)
	}
	return b.Put(versionKey, data)
}
