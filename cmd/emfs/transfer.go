package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/util/grace"
	"github.com/nspcc-dev/emfs/pkg/volume"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const noProgressFlag = "no-progress"

func addNoProgressFlag(cmd *cobra.Command) {
	cmd.Flags().Bool(noProgressFlag, false, "Do not show progress bar")
}

// newProgress returns started progress bar or nil if it is disabled.
func newProgress(cmd *cobra.Command, total int64, bytes bool) *pb.ProgressBar {
	if noProgress, _ := cmd.Flags().GetBool(noProgressFlag); noProgress {
		return nil
	}

	p := pb.New64(total)
	p.Output = cmd.ErrOrStderr()
	if bytes {
		p.SetUnits(pb.U_BYTES)
	}
	return p.Start()
}

func proxyReader(p *pb.ProgressBar, r io.Reader) io.Reader {
	if p == nil {
		return r
	}
	return p.NewProxyReader(r)
}

func finish(p *pb.ProgressBar) {
	if p != nil {
		p.Finish()
	}
}

func newPutCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-file> <dst>",
		Short: "Copy local file into the volume",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("can't open local file: %w", err)
			}
			defer src.Close()

			fi, err := src.Stat()
			if err != nil {
				return fmt.Errorf("can't stat local file: %w", err)
			}

			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				f, err := v.File(args[1])
				if err != nil {
					return err
				}

				w, err := f.OpenWrite()
				if err != nil {
					return err
				}
				_ = w.Truncate(0)

				p := newProgress(cmd, fi.Size(), true)
				_, err = io.Copy(w, proxyReader(p, src))
				finish(p)
				if cErr := w.Close(); err == nil {
					err = cErr
				}
				return err
			})
		},
	}

	addNoProgressFlag(cmd)
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <src> <local-file>",
		Short: "Copy volume file to the local file system",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, true, func(v *volume.Volume) error {
				f, err := v.File(args[0])
				if err != nil {
					return err
				}

				r, err := f.OpenRead()
				if err != nil {
					return err
				}
				defer r.Close()

				dst, err := os.Create(args[1])
				if err != nil {
					return fmt.Errorf("can't create local file: %w", err)
				}

				p := newProgress(cmd, r.Size(), true)
				_, err = io.Copy(dst, proxyReader(p, r))
				finish(p)
				if cErr := dst.Close(); err == nil {
					err = cErr
				}
				return err
			})
		},
	}

	addNoProgressFlag(cmd)
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <local-dir> <dst-dir>",
		Short: "Copy local directory tree into the volume",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := grace.NewGracefulContext(cmd.Context(), a.log)
			defer stop()

			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				n, err := importDir(ctx, cmd, v, args[0], args[1])
				if err != nil {
					return err
				}
				cmd.Printf("%d files imported\n", n)
				return nil
			})
		},
	}

	addNoProgressFlag(cmd)
	return cmd
}

// importDir copies host directory tree src into volume directory dst.
func importDir(ctx context.Context, cmd *cobra.Command, v *volume.Volume, src, dst string) (int, error) {
	dst, err := path.Directory(dst)
	if err != nil {
		return 0, err
	}

	var files []string
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return v.MkdirAll(dst)
		}
		return v.MkdirAll(path.Join(dst, filepath.ToSlash(rel)))
	})
	if err != nil {
		return 0, err
	}

	p := newProgress(cmd, int64(len(files)), false)
	defer finish(p)

	for i := range files {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		rel, err := filepath.Rel(src, files[i])
		if err != nil {
			return i, err
		}

		target := path.Join(dst, filepath.ToSlash(rel))
		if err := v.ImportFile(files[i], target); err != nil {
			return i, err
		}

		if p != nil {
			p.Increment()
		}
	}
	return len(files), nil
}

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <image-file>",
		Short: "Save volume image into a file",
		Long: `Saves consistent volume image into a file. The image is a volume file itself:
it can be opened with --volume or loaded into memory with --memory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, true, func(v *volume.Volume) error {
				if err := v.SaveToFile(args[0]); err != nil {
					return err
				}
				a.log.Info("volume exported", zap.String("path", args[0]))
				return nil
			})
		},
	}
}
