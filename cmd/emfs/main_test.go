package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/emfs/cmd/internal/cmderr"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	homedir.DisableCache = true
}

func isolateHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
}

func run(t *testing.T, args ...string) (string, error) {
	root := newRootCommand(new(app))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	isolateHome(t)

	out := mustRun(t, "--version")
	require.Contains(t, out, "EmFS")
}

func TestNoVolume(t *testing.T) {
	isolateHome(t)

	_, err := run(t, "ls")
	require.ErrorIs(t, err, errNoVolume)
}

func TestCommands(t *testing.T) {
	isolateHome(t)

	dir := t.TempDir()
	vol := filepath.Join(dir, "volume.db")

	local := filepath.Join(dir, "local.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello"), 0o600))

	mustRun(t, "-v", vol, "mkdir", "/a/b", "/c")
	mustRun(t, "-v", vol, "put", "--no-progress", local, "/a/f.txt")
	mustRun(t, "-v", vol, "touch", "/a/empty")

	require.Equal(t, "hello", mustRun(t, "-v", vol, "cat", "/a/f.txt"))
	require.Equal(t, "a/\nc/\n", mustRun(t, "-v", vol, "ls"))
	require.Equal(t, "b/\nempty\nf.txt\n", mustRun(t, "-v", vol, "ls", "/a"))
	require.Equal(t, "f.txt\n", mustRun(t, "-v", vol, "ls", "/a", "--pattern", "*.txt"))

	out := mustRun(t, "-v", vol, "ls", "-l", "/a")
	require.Contains(t, out, "f.txt")
	require.Contains(t, out, "5")

	out = mustRun(t, "-v", vol, "tree")
	require.Equal(t, "/\na/\n  b/\n  empty\n  f.txt\nc/\n\n3 directories, 2 files\n", out)

	out = mustRun(t, "-v", vol, "stat")
	require.Contains(t, out, "Files")
	require.Contains(t, out, "FILE")

	var info map[string]any
	out = mustRun(t, "-v", vol, "stat", "--yaml", "/a/f.txt")
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	require.Equal(t, "/a/f.txt", info["path"])
	require.Equal(t, "file", info["type"])
	require.Equal(t, 5, info["size"])

	out = mustRun(t, "-v", vol, "stat", "--yaml", "/a")
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	require.Equal(t, "dir", info["type"])

	_, err := run(t, "-v", vol, "stat", "/missing")
	require.Error(t, err)

	mustRun(t, "-v", vol, "cp", "/a/f.txt", "/c/f.txt")
	_, err = run(t, "-v", vol, "cp", "/a/f.txt", "/c/f.txt")
	require.Error(t, err)
	mustRun(t, "-v", vol, "cp", "--force", "/a/f.txt", "/c/f.txt")

	mustRun(t, "-v", vol, "mv", "/c/f.txt", "/c/g.txt")
	mustRun(t, "-v", vol, "mv", "/c", "/a/b/c")
	require.Equal(t, "hello", mustRun(t, "-v", vol, "cat", "/a/b/c/g.txt"))

	exported := filepath.Join(dir, "exported.txt")
	mustRun(t, "-v", vol, "get", "--no-progress", "/a/b/c/g.txt", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	mustRun(t, "-v", vol, "rm", "/a/empty")
	_, err = run(t, "-v", vol, "rm", "/a/empty")
	require.Error(t, err)

	_, err = run(t, "-v", vol, "rmdir", "/a/b")
	require.Error(t, err)
	mustRun(t, "-v", vol, "rmdir", "-r", "/a/b")
	require.Equal(t, "f.txt\n", mustRun(t, "-v", vol, "ls", "/a"))
}

func TestImportExport(t *testing.T) {
	isolateHome(t)

	dir := t.TempDir()
	vol := filepath.Join(dir, "volume.db")

	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub", "deep"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "one"), []byte("1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "deep", "two"), []byte("2"), 0o600))

	out := mustRun(t, "-v", vol, "import", "--no-progress", src, "/imported")
	require.Contains(t, out, "2 files imported")

	require.Equal(t, "2", mustRun(t, "-v", vol, "cat", "/imported/sub/deep/two"))

	image := filepath.Join(dir, "image.db")
	mustRun(t, "-v", vol, "export", image)

	require.Equal(t, "1", mustRun(t, "--memory", "-v", image, "cat", "/imported/one"))
	require.Equal(t, "2", mustRun(t, "-v", image, "cat", "/imported/sub/deep/two"))
}

func TestPasswordCommands(t *testing.T) {
	isolateHome(t)

	vol := filepath.Join(t.TempDir(), "volume.db")

	mustRun(t, "-v", vol, "mkdir", "/a")
	require.Contains(t, mustRun(t, "-v", vol, "check-password"), "not protected")

	require.Contains(t, mustRun(t, "-v", vol, "passwd", "--new-password", "secret"), "changed")

	_, err := run(t, "-v", vol, "ls")
	require.Error(t, err)

	require.Equal(t, "a/\n", mustRun(t, "-v", vol, "-p", "secret", "ls"))
	require.Contains(t, mustRun(t, "-v", vol, "-p", "secret", "check-password"), "valid")

	_, err = run(t, "-v", vol, "-p", "wrong", "check-password")
	require.Equal(t, exitWrongPassword, cmderr.Code(err))

	require.Contains(t, mustRun(t, "-v", vol, "-p", "secret", "passwd", "--new-password", ""), "removed")
	require.Equal(t, "a/\n", mustRun(t, "-v", vol, "ls"))
}

func TestConfigFile(t *testing.T) {
	isolateHome(t)

	dir := t.TempDir()
	vol := filepath.Join(dir, "volume.db")
	textfile := filepath.Join(dir, "emfs.prom")
	cfg := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(cfg, []byte(strings.Join([]string{
		"logger:",
		"  level: error",
		"volume:",
		"  path: " + vol,
		"  no_sync: true",
		"  compress: true",
		"metrics:",
		"  enabled: true",
		"  textfile: " + textfile,
	}, "\n")), 0o600))

	mustRun(t, "-c", cfg, "mkdir", "/x/y")

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	require.Contains(t, string(data), "emfs_volume_directories 3")
	require.Contains(t, string(data), "emfs_namespace_request_duration_seconds")

	t.Setenv("EMFS_VOLUME_PATH", vol)
	require.Equal(t, "x/\n", mustRun(t, "ls"))
}
