package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nspcc-dev/emfs/pkg/namespace"
	"github.com/nspcc-dev/emfs/pkg/namespace/path"
	"github.com/nspcc-dev/emfs/pkg/volume"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	longFlag    = "long"
	patternFlag = "pattern"
	forceFlag   = "force"
	recurseFlag = "recursive"
	yamlFlag    = "yaml"
)

const timeLayout = time.DateTime

// volumeCommands returns commands working with an opened volume. They are
// shared by the root command and the shell.
func volumeCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newLsCommand(a),
		newTreeCommand(a),
		newMkdirCommand(a),
		newRmdirCommand(a),
		newRmCommand(a),
		newMvCommand(a),
		newCpCommand(a),
		newCatCommand(a),
		newTouchCommand(a),
		newStatCommand(a),
		newPutCommand(a),
		newGetCommand(a),
		newImportCommand(a),
		newExportCommand(a),
	}
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return path.Root
	}
	return args[0]
}

func entryType(e namespace.Entry) string {
	if e.IsDir() {
		return "dir"
	}
	return "file"
}

func newLsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List directory content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			long, _ := cmd.Flags().GetBool(longFlag)
			pattern, _ := cmd.Flags().GetString(patternFlag)

			return a.withVolume(cmd, true, func(v *volume.Volume) error {
				var (
					entries []namespace.Entry
					err     error
				)
				if pattern != "" {
					entries, err = v.Glob(dirArg(args), pattern)
				} else {
					entries, err = v.ReadDir(dirArg(args))
				}
				if err != nil {
					return err
				}

				if !long {
					for i := range entries {
						name := entries[i].Name()
						if entries[i].IsDir() {
							name += path.Separator
						}
						cmd.Println(name)
					}
					return nil
				}

				out := tablewriter.NewWriter(cmd.OutOrStdout())
				out.SetHeader([]string{"Type", "Size", "Modified", "Name"})
				out.SetBorder(false)
				out.SetAutoWrapText(false)
				for i := range entries {
					out.Append([]string{
						entryType(entries[i]),
						strconv.FormatInt(entries[i].Size, 10),
						entries[i].LastWriteTime.Local().Format(timeLayout),
						entries[i].Name(),
					})
				}
				out.Render()
				return nil
			})
		},
	}

	cmd.Flags().BoolP(longFlag, "l", false, "Print entry details")
	cmd.Flags().String(patternFlag, "", "Wildcard pattern of entry names ('*' and '?' are supported)")
	return cmd
}

func newTreeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [dir]",
		Short: "Print directory tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, true, func(v *volume.Volume) error {
				dir, err := path.Directory(dirArg(args))
				if err != nil {
					return err
				}
				base := path.Level(dir)

				var dirs, files int
				err = v.Walk(dir, func(e namespace.Entry) error {
					if e.Path == dir {
						cmd.Println(e.Path)
						return nil
					}

					level := path.Level(e.Path) - base
					name := e.Name()
					if e.IsDir() {
						dirs++
						name += path.Separator
					} else {
						files++
					}
					cmd.Printf("%s%s\n", strings.Repeat("  ", level-1), name)
					return nil
				})
				if err != nil {
					return err
				}

				cmd.Printf("\n%d directories, %d files\n", dirs, files)
				return nil
			})
		},
	}
}

func newMkdirCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>...",
		Short: "Create directories with all missing parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				for i := range args {
					if err := v.MkdirAll(args[i]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRmdirCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rmdir <dir>...",
		Short: "Remove directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recursive, _ := cmd.Flags().GetBool(recurseFlag)

			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				for i := range args {
					if recursive {
						if err := v.RemoveAll(args[i]); err != nil {
							return err
						}
						continue
					}

					d, err := v.Directory(args[i])
					if err != nil {
						return err
					}
					if err := d.Delete(); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolP(recurseFlag, "r", false, "Remove directory content too")
	return cmd
}

func newRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>...",
		Short: "Remove files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				for i := range args {
					f, err := v.File(args[i])
					if err != nil {
						return err
					}
					if err := f.Delete(); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newMvCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst>",
		Short: "Move file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				isFile, err := v.FileExists(args[0])
				if err != nil {
					return err
				}
				if isFile {
					return v.MoveFile(args[0], args[1])
				}
				return v.MoveDir(args[0], args[1])
			})
		},
	}
}

func newCpCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool(forceFlag)

			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				return v.CopyFile(args[0], args[1], force)
			})
		},
	}

	cmd.Flags().BoolP(forceFlag, "f", false, "Overwrite existing destination")
	return cmd
}

func newCatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>...",
		Short: "Print file content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, true, func(v *volume.Volume) error {
				for i := range args {
					data, err := v.ReadFile(args[i])
					if err != nil {
						return err
					}
					if _, err := cmd.OutOrStdout().Write(data); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newTouchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "touch <file>...",
		Short: "Create files or update their modification time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVolume(cmd, false, func(v *volume.Volume) error {
				for i := range args {
					f, err := v.File(args[i])
					if err != nil {
						return err
					}

					w, err := f.OpenAppend()
					if err != nil {
						return err
					}
					if err := w.Close(); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// entryInfo is a printable entry description.
type entryInfo struct {
	Path     string    `yaml:"path"`
	Type     string    `yaml:"type"`
	Size     int64     `yaml:"size"`
	Created  time.Time `yaml:"created"`
	Accessed time.Time `yaml:"accessed"`
	Modified time.Time `yaml:"modified"`
}

func newStatCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat [path]",
		Short: "Print volume or entry information",
		Long: `Prints information about the entry at the given path or about the volume
if no path is given. Directory paths may omit the trailing separator.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asYAML, _ := cmd.Flags().GetBool(yamlFlag)

			return a.withVolume(cmd, true, func(v *volume.Volume) error {
				var (
					rows [][]string
					obj  any
				)

				if len(args) == 0 {
					info, err := v.Stat()
					if err != nil {
						return err
					}
					obj = info
					rows = [][]string{
						{"Name", info.Name},
						{"Format", info.Format},
						{"Read-only", strconv.FormatBool(info.ReadOnly)},
						{"Protected", strconv.FormatBool(info.Protected)},
						{"Files", strconv.Itoa(info.Files)},
						{"Directories", strconv.Itoa(info.Directories)},
						{"Bytes", strconv.FormatInt(info.Bytes, 10)},
					}
				} else {
					e, err := lookupEntry(v, args[0])
					if err != nil {
						return err
					}
					info := entryInfo{
						Path:     e.Path,
						Type:     entryType(e),
						Size:     e.Size,
						Created:  e.CreationTime,
						Accessed: e.LastAccessTime,
						Modified: e.LastWriteTime,
					}
					obj = info
					rows = [][]string{
						{"Path", info.Path},
						{"Type", info.Type},
						{"Size", strconv.FormatInt(info.Size, 10)},
						{"Created", info.Created.Local().Format(timeLayout)},
						{"Accessed", info.Accessed.Local().Format(timeLayout)},
						{"Modified", info.Modified.Local().Format(timeLayout)},
					}
				}

				if asYAML {
					data, err := yaml.Marshal(obj)
					if err != nil {
						return fmt.Errorf("can't encode YAML: %w", err)
					}
					cmd.Print(string(data))
					return nil
				}

				out := tablewriter.NewWriter(cmd.OutOrStdout())
				out.SetBorder(false)
				out.SetAutoWrapText(false)
				out.SetColumnSeparator(":")
				out.AppendBulk(rows)
				out.Render()
				return nil
			})
		},
	}

	cmd.Flags().Bool(yamlFlag, false, "Print information in YAML")
	return cmd
}

// lookupEntry resolves p as a file first and as a directory otherwise.
func lookupEntry(v *volume.Volume, p string) (namespace.Entry, error) {
	if isFile, err := v.FileExists(p); err == nil && isFile {
		f, err := v.File(p)
		if err != nil {
			return namespace.Entry{}, err
		}
		return v.Index().Lookup(f.FullName())
	}

	d, err := v.Directory(p)
	if err != nil {
		return namespace.Entry{}, err
	}
	if !d.Exists() {
		return namespace.Entry{}, fmt.Errorf("%w: %s", volume.ErrNotFound, p)
	}
	return v.Index().Lookup(d.FullName())
}
