// Package crypt implements password-based sealing of record store blobs.
package crypt

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Version is prepended to every sealed blob and authenticated as additional
// data.
const Version byte = 0x01

// SaltSize is the size of the per-store KDF salt.
const SaltSize = 16

// Overhead is the number of bytes Seal adds to a plaintext.
const Overhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// scrypt parameters, see https://pkg.go.dev/golang.org/x/crypto/scrypt .
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrAuthFailed is returned when a blob can't be opened with the key:
// either the password is wrong or the data is corrupted.
var ErrAuthFailed = errors.New("authentication failed")

var verifierPlaintext = []byte("emfs.verifier.v1")

// Cipher seals and opens blobs with a key derived from a password.
type Cipher struct {
	aead cipher.AEAD
}

// NewSalt returns a fresh random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("could not generate salt: %w", err)
	}
	return salt, nil
}

// New derives a key from the password and salt.
func New(password string, salt []byte) (*Cipher, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("could not derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("could not init AEAD: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Seal encrypts value. Result layout is version, nonce, ciphertext+tag.
func (c *Cipher) Seal(value []byte) ([]byte, error) {
	out := make([]byte, 1+chacha20poly1305.NonceSizeX, Overhead+len(value))
	out[0] = Version

	nonce := out[1:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("could not init random nonce: %w", err)
	}

	return c.aead.Seal(out, nonce, value, out[:1]), nil
}

// Open decrypts value sealed with Seal.
func (c *Cipher) Open(value []byte) ([]byte, error) {
	if len(value) < Overhead {
		return nil, fmt.Errorf("unexpected encrypted length: overhead is %d, encrypted data length is %d",
			Overhead, len(value))
	}
	if value[0] != Version {
		return nil, fmt.Errorf("unsupported encrypted blob version %d", value[0])
	}

	nonce := value[1 : 1+chacha20poly1305.NonceSizeX]
	res, err := c.aead.Open(nil, nonce, value[1+chacha20poly1305.NonceSizeX:], value[:1])
	if err != nil {
		return nil, ErrAuthFailed
	}
	return res, nil
}

// Verifier returns a sealed constant to be stored alongside the data
// so that a password can be checked without touching records.
func (c *Cipher) Verifier() ([]byte, error) {
	return c.Seal(verifierPlaintext)
}

// Verify checks verifier produced by Verifier of a cipher with the same key.
func (c *Cipher) Verify(verifier []byte) error {
	res, err := c.Open(verifier)
	if err != nil {
		return ErrAuthFailed
	}
	if !bytes.Equal(res, verifierPlaintext) {
		return ErrAuthFailed
	}
	return nil
}
