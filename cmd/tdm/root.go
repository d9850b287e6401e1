// Package tdm assembles the command-line interface.
package tdm

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrtigerst/tdm/internal/version"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/mrtigerst/tdm/pkg/store"
	"github.com/mrtigerst/tdm/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "tdm",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Passing an archive file directly imports it, matching the
			// historical convenience behavior.
			if len(args) == 1 && strings.HasSuffix(args[0], store.Extension) {
				if _, err := os.Stat(args[0]); err == nil {
					ui.Info(MsgDetectedArchive, store.Extension)
					_, st, err := openStore()
					if err != nil {
						return err
					}
					name, err := st.Import(args[0], "")
					if err != nil {
						return err
					}
					ui.Success(MsgImported, args[0], name)
					return nil
				}
			}

			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newShowDirCmd())
	rootCmd.AddCommand(newChangeDirCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
