package main

import (
	"os"

	"github.com/nspcc-dev/emfs/cmd/internal/cmderr"
	"github.com/nspcc-dev/emfs/misc"
	"github.com/nspcc-dev/emfs/pkg/util/autocomplete"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "emfs",
		Short: "Embedded file system tool",
		Long: `emfs browses and modifies hierarchical file system volumes kept in a single
database file. Volumes can be password protected and loaded into memory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printVersion, _ := cmd.Flags().GetBool("version"); printVersion {
				cmd.Print(misc.BuildInfo("EmFS"))
				return nil
			}
			return cmd.Usage()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(os.Stdout)

	addGlobalFlags(root.PersistentFlags())
	root.Flags().Bool("version", false, "Application version")

	root.AddCommand(volumeCommands(a)...)
	root.AddCommand(
		newPasswdCommand(a),
		newCheckPasswordCommand(a),
		newShellCommand(a),
		autocomplete.Command("emfs"),
	)

	return root
}

func addGlobalFlags(ff *pflag.FlagSet) {
	ff.StringP(configFlag, "c", "", "Config file (default "+defaultConfigPath+")")
	ff.StringP(volumeFlag, "v", "", "Volume file")
	ff.StringP(passwordFlag, "p", "", "Volume password")
	ff.Bool(askPasswordFlag, false, "Read volume password from the terminal")
	ff.Bool(memoryFlag, false, "Work with in-memory volume, volume file is loaded into it if set")
}

func main() {
	cmderr.ExitOnErr(newRootCommand(new(app)).Execute())
}
