package util_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestMkdirAllX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, util.MkdirAllX(p, 0o600))

	fi, err := os.Stat(p)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
	require.NotZero(t, fi.Mode().Perm()&0o100)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "file")

	require.NoError(t, os.WriteFile(p, []byte("old"), 0o600))

	err := util.WriteFileAtomic(p, func(w io.Writer) error {
		_, err := w.Write([]byte("partial"))
		if err != nil {
			return err
		}
		return errors.New("broken")
	})
	require.Error(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "old", string(data))

	require.NoError(t, util.WriteFileAtomic(p, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	}))

	data, err = os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
