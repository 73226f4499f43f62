package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/flynn-archive/go-shlex"
	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/emfs/cmd/internal/cmderr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shellPrompt      = "emfs> "
	shellHistoryFile = "~/.emfs_history"
)

// lineReader is the source of shell command lines.
type lineReader interface {
	Readline() (string, error)
}

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run interactive shell over the volume",
		Long: `Opens the volume once and runs volume commands read from the terminal.
Type "help" for the list of commands, "exit" or Ctrl-D to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.volume(cmd, false)
			if err != nil {
				return err
			}
			a.shell = true

			defer func() {
				a.shell = false
				if err := a.release(); err != nil {
					a.log.Error("can't close volume", zap.Error(err))
				}
			}()

			history, err := homedir.Expand(shellHistoryFile)
			if err != nil {
				history = ""
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          shellPrompt,
				HistoryFile:     history,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("can't start shell: %w", err)
			}
			defer rl.Close()

			stopMetrics, err := a.serveMetrics()
			if err != nil {
				return err
			}
			defer stopMetrics()

			cmd.Printf("Volume %s (%s). Type \"help\" for commands.\n", v.Name(), v.Format())
			return runShell(cmd.Context(), a, rl, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runShell executes command lines from r until EOF or exit command.
func runShell(ctx context.Context, a *app, r lineReader, out, errOut io.Writer) error {
	for {
		line, err := r.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args, err := shlex.Split(strings.TrimSpace(line))
		if err != nil {
			cmderr.Print(errOut, err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		if err := execShellCommand(ctx, a, args, out, errOut); err != nil {
			cmderr.Print(errOut, err)
		}
	}
}

// execShellCommand runs a single command line over a fresh command tree so
// flag values don't leak between lines.
func execShellCommand(ctx context.Context, a *app, args []string, out, errOut io.Writer) error {
	root := &cobra.Command{
		Use:           "",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	root.AddCommand(volumeCommands(a)...)
	root.AddCommand(newPasswdCommand(a))

	return root.ExecuteContext(ctx)
}
