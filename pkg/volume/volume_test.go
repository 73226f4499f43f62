package volume_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/volume"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type volumeConstructor func(t *testing.T, opts ...volume.Option) *volume.Volume

var volumes = map[string]volumeConstructor{
	"memory": func(t *testing.T, opts ...volume.Option) *volume.Volume {
		v, err := volume.OpenMemory(opts...)
		require.NoError(t, err)
		return v
	},
	"file": func(t *testing.T, opts ...volume.Option) *volume.Volume {
		v, err := volume.OpenFile(filepath.Join(t.TempDir(), "volume.db"),
			append([]volume.Option{volume.WithNoSync(true)}, opts...)...)
		require.NoError(t, err)
		return v
	},
}

func forEachVolume(t *testing.T, f func(t *testing.T, v *volume.Volume)) {
	for name, cons := range volumes {
		t.Run(name, func(t *testing.T) {
			v := cons(t, volume.WithLogger(zaptest.NewLogger(t)))
			t.Cleanup(func() { require.NoError(t, v.Close()) })
			f(t, v)
		})
	}
}

func TestScenario(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.MkdirAll("/data"))

		f, err := v.File("/data/f.txt")
		require.NoError(t, err)
		require.Equal(t, volume.Unresolved, f.State())

		w, err := f.OpenWrite()
		require.NoError(t, err)
		_, err = w.WriteString("hello")
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.Equal(t, volume.Resolved, f.State())
		require.EqualValues(t, 5, f.Length())

		d, err := v.Directory("/data")
		require.NoError(t, err)
		require.Equal(t, "/data/", d.FullName())

		files, err := d.Files()
		require.NoError(t, err)
		require.Len(t, files, 1)
		require.Equal(t, "f.txt", files[0].Name())
		require.EqualValues(t, 5, files[0].Length())

		require.ErrorIs(t, d.MoveTo("/archive/data/"), volume.ErrDirectoryNotFound)
		require.Equal(t, "/data/", d.FullName())

		require.NoError(t, v.MkdirAll("/archive"))
		require.NoError(t, d.MoveTo("/archive/data/"))
		require.Equal(t, "/archive/data/", d.FullName())
		require.Equal(t, volume.Resolved, d.State())

		ok, err := v.DirExists("/data")
		require.NoError(t, err)
		require.False(t, ok)

		text, err := v.ReadText("/archive/data/f.txt")
		require.NoError(t, err)
		require.Equal(t, "hello", text)

		require.False(t, f.Exists())
	})
}

func TestRoot(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		root := v.Root()
		require.True(t, root.Exists())
		require.Equal(t, "/", root.FullName())

		parent, err := root.Parent()
		require.NoError(t, err)
		require.Nil(t, parent)

		require.ErrorIs(t, root.Delete(), volume.ErrRootProtected)
		require.ErrorIs(t, root.MoveTo("/x/"), volume.ErrRootProtected)
	})
}

func TestDirectory(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		d, err := v.Directory("/a/b")
		require.NoError(t, err)
		require.Equal(t, volume.Unresolved, d.State())

		_, err = d.Files()
		require.ErrorIs(t, err, volume.ErrDirectoryNotFound)
		require.ErrorIs(t, d.Delete(), volume.ErrDirectoryNotFound)

		require.NoError(t, d.Create())
		require.Equal(t, volume.Resolved, d.State())
		require.False(t, d.CreationTime().IsZero())

		sub, err := d.CreateSubdirectory("c")
		require.NoError(t, err)
		require.Equal(t, "/a/b/c/", sub.FullName())
		require.Equal(t, "c", sub.Name())

		require.NoError(t, v.WriteText("/a/b/x.txt", "x"))
		require.NoError(t, v.WriteText("/a/b/y.log", "y"))
		require.NoError(t, v.WriteText("/a/b/c/z.txt", "z"))

		files, err := d.Files()
		require.NoError(t, err)
		require.Len(t, files, 2)
		require.Equal(t, "/a/b/x.txt", files[0].FullName())
		require.Equal(t, "/a/b/y.log", files[1].FullName())

		files, err = d.FilesMatching("*.txt")
		require.NoError(t, err)
		require.Len(t, files, 1)
		require.Equal(t, "x.txt", files[0].Name())

		dirs, err := d.Directories()
		require.NoError(t, err)
		require.Len(t, dirs, 1)
		require.Equal(t, "/a/b/c/", dirs[0].FullName())

		dirs, err = d.DirectoriesMatching("?")
		require.NoError(t, err)
		require.Len(t, dirs, 1)

		dirs, err = d.DirectoriesMatching("cc")
		require.NoError(t, err)
		require.Empty(t, dirs)

		entries, err := d.Entries()
		require.NoError(t, err)
		require.Len(t, entries, 3)

		parent, err := d.Parent()
		require.NoError(t, err)
		require.Equal(t, "/a/", parent.FullName())

		require.ErrorIs(t, d.Delete(), volume.ErrDirectoryNotEmpty)
		require.NoError(t, v.RemoveAll("/a/b/c"))
		require.NoError(t, v.Remove("/a/b/x.txt"))
		require.NoError(t, v.Remove("/a/b/y.log"))
		require.NoError(t, d.Delete())
		require.Equal(t, volume.Deleted, d.State())
	})
}

func TestDirectoryMatchingParentName(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.MkdirAll("/bx/cy"))
		require.NoError(t, v.WriteText("/bx/ab.txt", "a"))
		require.NoError(t, v.WriteText("/bx/bb.txt", "b"))

		d, err := v.Directory("/bx")
		require.NoError(t, err)

		files, err := d.FilesMatching("b*")
		require.NoError(t, err)
		require.Len(t, files, 1)
		require.Equal(t, "/bx/bb.txt", files[0].FullName())

		dirs, err := d.DirectoriesMatching("b*")
		require.NoError(t, err)
		require.Empty(t, dirs)

		entries, err := v.Glob("/bx", "?y")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "/bx/cy/", entries[0].Path)
	})
}

func TestFile(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		f, err := v.File("/dir/file.bin")
		require.NoError(t, err)
		require.Equal(t, ".bin", f.Extension())
		require.Equal(t, "/dir/", f.DirectoryName())

		_, err = f.OpenRead()
		require.ErrorIs(t, err, volume.ErrFileNotFound)

		_, err = f.OpenWrite()
		require.ErrorIs(t, err, volume.ErrDirectoryNotFound)

		require.NoError(t, v.MkdirAll("/dir"))

		t.Run("empty", func(t *testing.T) {
			w, err := f.Create()
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.ErrorIs(t, w.Close(), volume.ErrClosed)

			data, err := v.ReadFile("/dir/file.bin")
			require.NoError(t, err)
			require.Empty(t, data)
		})

		t.Run("overwrite without truncation", func(t *testing.T) {
			require.NoError(t, v.WriteText(f.FullName(), "abcdef"))

			w, err := f.OpenWrite()
			require.NoError(t, err)
			_, err = w.Write([]byte("XY"))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			text, err := v.ReadText(f.FullName())
			require.NoError(t, err)
			require.Equal(t, "XYcdef", text)

			require.NoError(t, v.WriteText(f.FullName(), "1"))
			text, err = v.ReadText(f.FullName())
			require.NoError(t, err)
			require.Equal(t, "1", text)
		})

		t.Run("append", func(t *testing.T) {
			w, err := f.OpenAppend()
			require.NoError(t, err)
			_, err = w.WriteString("23")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			require.NoError(t, v.AppendFile(f.FullName(), []byte("4")))

			text, err := v.ReadText(f.FullName())
			require.NoError(t, err)
			require.Equal(t, "1234", text)
			require.EqualValues(t, 3, f.Length())
			require.NoError(t, f.Refresh())
			require.EqualValues(t, 4, f.Length())
		})

		t.Run("read", func(t *testing.T) {
			r, err := f.OpenRead()
			require.NoError(t, err)
			buf := make([]byte, 2)
			_, err = r.Seek(2, 0)
			require.NoError(t, err)
			_, err = r.Read(buf)
			require.NoError(t, err)
			require.Equal(t, "34", string(buf))
			require.NoError(t, r.Close())
		})

		t.Run("directory collision", func(t *testing.T) {
			require.NoError(t, v.MkdirAll("/dir/sub"))
			g, err := v.File("/dir/sub")
			require.NoError(t, err)
			_, err = g.OpenWrite()
			require.ErrorIs(t, err, volume.ErrAccessDenied)
		})

		t.Run("copy", func(t *testing.T) {
			c, err := f.CopyTo("/dir/copy.bin", false)
			require.NoError(t, err)
			require.Equal(t, volume.Resolved, c.State())

			_, err = f.CopyTo("/dir/copy.bin", false)
			require.ErrorIs(t, err, volume.ErrFileExists)
			require.ErrorIs(t, err, volume.ErrPathCollision)

			require.NoError(t, v.WriteText(f.FullName(), "new"))
			_, err = f.CopyTo("/dir/copy.bin", true)
			require.NoError(t, err)

			text, err := v.ReadText("/dir/copy.bin")
			require.NoError(t, err)
			require.Equal(t, "new", text)

			_, err = f.CopyTo("/missing/copy.bin", false)
			require.ErrorIs(t, err, volume.ErrDirectoryNotFound)
		})

		t.Run("move", func(t *testing.T) {
			require.ErrorIs(t, f.MoveTo("/dir/copy.bin"), volume.ErrFileExists)
			require.ErrorIs(t, f.MoveTo("/missing/file.bin"), volume.ErrDirectoryNotFound)

			require.NoError(t, f.MoveTo("/dir/sub/moved.bin"))
			require.Equal(t, "/dir/sub/moved.bin", f.FullName())
			require.Equal(t, volume.Resolved, f.State())

			ok, err := v.FileExists("/dir/file.bin")
			require.NoError(t, err)
			require.False(t, ok)

			d, err := f.Directory()
			require.NoError(t, err)
			require.Equal(t, "/dir/sub/", d.FullName())
		})

		t.Run("delete", func(t *testing.T) {
			require.NoError(t, f.Delete())
			require.Equal(t, volume.Deleted, f.State())
			require.ErrorIs(t, f.Delete(), volume.ErrFileNotFound)
			require.Equal(t, volume.Deleted, f.State())
		})
	})
}

func TestWriterTruncate(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.WriteText("/f", "abcdef"))

		f, err := v.File("/f")
		require.NoError(t, err)

		w, err := f.OpenAppend()
		require.NoError(t, err)
		require.NoError(t, w.Truncate(3))
		_, err = w.WriteString("Z")
		require.NoError(t, err)
		require.Error(t, w.Truncate(-1))
		require.NoError(t, w.Close())

		_, err = w.Write([]byte("x"))
		require.ErrorIs(t, err, volume.ErrClosed)

		text, err := v.ReadText("/f")
		require.NoError(t, err)
		require.Equal(t, "abcZ", text)
	})
}

func TestTimes(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.WriteText("/f", "data"))

		f, err := v.File("/f")
		require.NoError(t, err)

		ts := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
		require.NoError(t, f.SetCreationTime(ts))
		require.NoError(t, f.SetLastWriteTime(ts.Add(time.Hour)))
		require.NoError(t, f.SetLastAccessTime(ts.Add(2*time.Hour)))

		require.True(t, ts.Equal(f.CreationTime()))
		require.True(t, ts.Add(time.Hour).Equal(f.LastWriteTime()))
		require.True(t, ts.Add(2*time.Hour).Equal(f.LastAccessTime()))

		r, err := f.OpenRead()
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.True(t, f.LastAccessTime().After(ts.Add(2*time.Hour)))

		for name, open := range map[string]func() (*volume.Writer, error){
			"write":  f.OpenWrite,
			"append": f.OpenAppend,
		} {
			require.NoError(t, f.SetLastAccessTime(ts), name)

			w, err := open()
			require.NoError(t, err, name)
			require.True(t, f.LastAccessTime().After(ts), name)
			require.NoError(t, w.Close(), name)
			require.True(t, f.LastAccessTime().After(ts), name)
			require.True(t, f.LastWriteTime().After(ts.Add(time.Hour)), name)
		}

		for _, bad := range []time.Time{
			time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC),
		} {
			require.ErrorIs(t, f.SetCreationTime(bad), volume.ErrTimeOutOfRange)
			require.ErrorIs(t, f.SetLastAccessTime(bad), volume.ErrTimeOutOfRange)
			require.ErrorIs(t, f.SetLastWriteTime(bad), volume.ErrTimeOutOfRange)
			require.ErrorIs(t, v.Chtimes("/f", bad, ts), volume.ErrTimeOutOfRange)
		}

		require.NoError(t, v.Chtimes("/f", ts, ts))
		times, err := v.GetTimes("/f")
		require.NoError(t, err)
		require.True(t, ts.Equal(*times.Access))
		require.True(t, ts.Equal(*times.Write))

		require.NoError(t, v.MkdirAll("/d"))
		require.NoError(t, v.Chtimes("/d", ts, ts))
		times, err = v.GetTimes("/d/")
		require.NoError(t, err)
		require.True(t, ts.Equal(*times.Write))

		_, err = v.GetTimes("/missing")
		require.ErrorIs(t, err, volume.ErrNotFound)
	})
}

func TestHelpers(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.MkdirAll("/a/b"))

		require.NoError(t, v.WriteLines("/a/lines.txt", []string{"one", "two"}))
		require.NoError(t, v.AppendLines("/a/lines.txt", []string{"three"}))

		lines, err := v.ReadLines("/a/lines.txt")
		require.NoError(t, err)
		require.Equal(t, []string{"one", "two", "three"}, lines)

		for _, tc := range []struct {
			path      string
			exists    bool
			file, dir bool
		}{
			{path: "/a", exists: true, dir: true},
			{path: "/a/", exists: true, dir: true},
			{path: `\a\b`, exists: true, dir: true},
			{path: "/a/lines.txt", exists: true, file: true},
			{path: "/a/missing"},
		} {
			ok, err := v.Exists(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.exists, ok, tc.path)

			ok, err = v.FileExists(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.file, ok, tc.path)

			ok, err = v.DirExists(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.dir, ok, tc.path)
		}

		_, err = v.Exists("")
		require.ErrorIs(t, err, volume.ErrInvalidPath)

		require.NoError(t, v.CopyFile("/a/lines.txt", "/a/b/lines.txt", false))
		require.NoError(t, v.MoveFile("/a/b/lines.txt", "/a/b/moved.txt"))

		entries, err := v.ReadDir("/a")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "/a/b/", entries[0].Path)
		require.Equal(t, "/a/lines.txt", entries[1].Path)

		entries, err = v.Glob("/a/b", "*.txt")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "/a/b/moved.txt", entries[0].Path)

		_, err = v.ReadDir("/missing")
		require.ErrorIs(t, err, volume.ErrDirectoryNotFound)

		require.NoError(t, v.Remove("/a/b/moved.txt"))
		require.NoError(t, v.Remove("/a/b/moved.txt"))
		require.NoError(t, v.RemoveDir("/a/b"))
		require.NoError(t, v.RemoveDir("/a/b"))

		require.NoError(t, v.MkdirAll("/x"))
		require.NoError(t, v.MoveDir("/a", "/x/a"))
		ok, err := v.FileExists("/x/a/lines.txt")
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestWalk(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.MkdirAll("/a/b"))
		require.NoError(t, v.MkdirAll("/c"))
		require.NoError(t, v.WriteText("/a/b/f", ""))
		require.NoError(t, v.WriteText("/a/g", ""))
		require.NoError(t, v.WriteText("/c/h", ""))

		var visited []string
		require.NoError(t, v.Walk("/", func(e namespace.Entry) error {
			visited = append(visited, e.Path)
			return nil
		}))
		require.Equal(t, []string{"/", "/a/", "/a/b/", "/a/b/f", "/a/g", "/c/", "/c/h"}, visited)

		visited = visited[:0]
		require.NoError(t, v.Walk("/", func(e namespace.Entry) error {
			visited = append(visited, e.Path)
			if e.Path == "/a/" {
				return volume.SkipDir
			}
			return nil
		}))
		require.Equal(t, []string{"/", "/a/", "/c/", "/c/h"}, visited)

		require.NoError(t, v.RemoveAll("/"))
		entries, err := v.ReadDir("/")
		require.NoError(t, err)
		require.Empty(t, entries)

		require.NoError(t, v.RemoveAll("/missing"))
	})
}

func TestHostFiles(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		dir := t.TempDir()
		data := bytes.Repeat([]byte{1, 2, 3}, 1000)

		src := filepath.Join(dir, "src")
		require.NoError(t, writeHostFile(src, data))
		require.NoError(t, v.ImportFile(src, "/imported"))

		dst := filepath.Join(dir, "dst")
		require.NoError(t, v.ExportFile("/imported", dst))

		got, err := readHostFile(dst)
		require.NoError(t, err)
		require.Equal(t, data, got)
	})
}

func TestStat(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		require.NoError(t, v.MkdirAll("/a/b"))
		require.NoError(t, v.WriteText("/a/f", "12345"))

		info, err := v.Stat()
		require.NoError(t, err)
		require.Equal(t, 3, info.Directories)
		require.Equal(t, 1, info.Files)
		require.EqualValues(t, 5, info.Bytes)
		require.Equal(t, v.Format(), info.Format)
		require.False(t, info.Protected)
	})
}

func TestInvalidPath(t *testing.T) {
	forEachVolume(t, func(t *testing.T, v *volume.Volume) {
		_, err := v.File("/dir/")
		require.ErrorIs(t, err, volume.ErrInvalidPath)

		_, err = v.Directory(" ")
		require.ErrorIs(t, err, volume.ErrInvalidPath)
	})
}
