package volume

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/recordstore"
	"github.com/nspcc-dev/emfs/pkg/recordstore/boltstore"
)

func openStore(p string, password string, readOnly bool) (*boltstore.Store, error) {
	if _, err := os.Stat(p); err != nil {
		return nil, fmt.Errorf("volume file: %w", err)
	}

	st := boltstore.New(
		boltstore.WithPath(p),
		boltstore.WithUniqueIndex(namespace.KeyPath),
		boltstore.WithPassword(password),
	)
	if err := st.Open(readOnly); err != nil {
		return nil, storeFault(err)
	}
	if err := st.Init(); err != nil {
		_ = st.Close()
		return nil, storeFault(err)
	}
	return st, nil
}

// CheckPassword checks whether the password opens the file volume. Empty
// password matches unprotected volumes only.
func CheckPassword(p string, password string) (bool, error) {
	st, err := openStore(p, password, true)
	if errors.Is(err, recordstore.ErrWrongPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, st.Close()
}

// IsPasswordProtected checks whether the file volume is encrypted.
func IsPasswordProtected(p string) (bool, error) {
	if _, err := os.Stat(p); err != nil {
		return false, fmt.Errorf("volume file: %w", err)
	}

	st := boltstore.New(boltstore.WithPath(p))
	if err := st.Open(true); err != nil {
		return false, storeFault(err)
	}
	protected := st.Protected()
	return protected, st.Close()
}

// SetPassword protects unprotected file volume with the password. Empty
// password leaves the volume unprotected.
func SetPassword(p string, password string) error {
	return ChangePassword(p, "", password)
}

// ChangePassword re-encrypts the file volume with a new password. Empty
// newPassword removes the protection.
func ChangePassword(p string, oldPassword, newPassword string) error {
	st, err := openStore(p, oldPassword, false)
	if err != nil {
		return err
	}

	if err := st.Rebuild(newPassword); err != nil {
		_ = st.Close()
		return storeFault(err)
	}

	if err := st.Close(); err != nil {
		return storeFault(err)
	}
	return nil
}

// ChangePassword changes the password of the opened volume. For memory
// volumes it affects saved images only.
func (v *Volume) ChangePassword(newPassword string) error {
	if v.closed {
		return ErrClosed
	}

	if err := v.st.Rebuild(newPassword); err != nil {
		return storeFault(err)
	}
	v.password = newPassword
	return nil
}
