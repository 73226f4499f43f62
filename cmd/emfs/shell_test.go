package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/nspcc-dev/emfs/pkg/volume"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type lines []string

func (l *lines) Readline() (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}
	line := (*l)[0]
	*l = (*l)[1:]
	return line, nil
}

func newShellApp(t *testing.T) *app {
	isolateHome(t)

	a := new(app)
	require.NoError(t, a.init(newRootCommand(a)))
	a.log = zaptest.NewLogger(t)

	v, err := volume.OpenMemory(volume.WithLogger(a.log))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, v.Close()) })

	a.vol = v
	a.shell = true
	return a
}

func TestShell(t *testing.T) {
	a := newShellApp(t)

	var out, errOut bytes.Buffer
	in := lines{
		"mkdir /docs",
		"",
		`touch "/docs/my file"`,
		"ls /docs",
		"ls -l /docs",
		"ls /docs",
		"rmdir /docs",
		"unknown",
		`broken "quote`,
		"exit",
		"ls",
	}

	require.NoError(t, runShell(context.Background(), a, &in, &out, &errOut))
	require.Equal(t, []string{"ls"}, []string(in))

	// -l flag of the previous line must not leak.
	printed := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Equal(t, "my file", printed[0])
	require.Equal(t, "my file", printed[len(printed)-1])
	require.Equal(t, 1, strings.Count(out.String(), "TYPE"))
	require.Contains(t, errOut.String(), "not empty")
	require.Contains(t, errOut.String(), "unknown command")

	ok, err := a.vol.FileExists("/docs/my file")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestShellPasswd(t *testing.T) {
	a := newShellApp(t)

	var out, errOut bytes.Buffer
	in := lines{"mkdir /x", "passwd --new-password secret"}

	require.NoError(t, runShell(context.Background(), a, &in, &out, &errOut))
	require.Empty(t, errOut.String())

	var image bytes.Buffer
	_, err := a.vol.SaveTo(&image)
	require.NoError(t, err)

	_, err = volume.Load(bytes.NewReader(image.Bytes()))
	require.ErrorIs(t, err, volume.ErrWrongPassword)

	v, err := volume.Load(bytes.NewReader(image.Bytes()), volume.WithPassword("secret"))
	require.NoError(t, err)
	ok, err := v.DirExists("/x")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, v.Close())
}

func TestServeMetrics(t *testing.T) {
	isolateHome(t)

	a := new(app)
	require.NoError(t, a.init(newRootCommand(a)))
	stop, err := a.serveMetrics()
	require.NoError(t, err)
	stop()

	t.Setenv("EMFS_METRICS_ENABLED", "true")
	t.Setenv("EMFS_METRICS_ADDRESS", "127.0.0.1:0")
	t.Setenv("EMFS_METRICS_SHUTDOWN_TIMEOUT", "1s")

	a = new(app)
	require.NoError(t, a.init(newRootCommand(a)))
	require.NotNil(t, a.metrics)

	stop, err = a.serveMetrics()
	require.NoError(t, err)
	stop()
}
