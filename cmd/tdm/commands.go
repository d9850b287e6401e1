package tdm

import (
	"fmt"
	"os"

	"github.com/mrtigerst/tdm/internal/version"
	"github.com/mrtigerst/tdm/pkg/commands"
	"github.com/mrtigerst/tdm/pkg/config"
	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/mrtigerst/tdm/pkg/store"
	"github.com/mrtigerst/tdm/pkg/ui"
	"github.com/spf13/cobra"
)

// openStore loads configuration and opens the template store it points at.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

func newCreateCmd() *cobra.Command {
	var includeHidden, excludeIgnore bool

	cmd := &cobra.Command{
		Use:   "create <template-name>",
		Short: MsgCreateShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version.NotifyIfOutdated(cmd.Context(), cmd.ErrOrStderr())

			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			ui.Info(MsgCreating, args[0])
			res, err := commands.Create(cmd.Context(), st, commands.CreateOptions{
				Name:              args[0],
				Root:              root,
				IncludeHidden:     includeHidden,
				ExcludeIgnoreFile: excludeIgnore,
				Key:               cfg.TransformKey(),
				Workers:           cfg.Workers(),
				NewProgress: func(total int) *progress.Counter {
					return ui.NewProgressCounter("Creating template", total)
				},
			})
			if err != nil {
				return err
			}

			ui.Success(MsgCreated, args[0], res.FileCount, res.DirCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeHidden, "hidden", false, MsgFlagHidden)
	cmd.Flags().BoolVar(&excludeIgnore, "exclude-ignore", false, MsgFlagExcludeIgnore)
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <template-name>",
		Short: MsgGetShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version.NotifyIfOutdated(cmd.Context(), cmd.ErrOrStderr())

			cfg, st, err := openStore()
			if err != nil {
				return err
			}

			ui.Info(MsgApplying, args[0])
			res, err := commands.Apply(cmd.Context(), st, commands.ApplyOptions{
				Name:    args[0],
				Dest:    ".",
				Key:     cfg.TransformKey(),
				Workers: cfg.Workers(),
				NewProgress: func(total int) *progress.Counter {
					return ui.NewProgressCounter("Applying template", total)
				},
			})
			if err != nil {
				// A missing template is reported, not fatal: the operation
				// is a no-op and the process carries on.
				if errors.IsErrorCode(err, errors.ErrTemplateNotFound) {
					ui.Warning(MsgNotFound, args[0])
					return nil
				}
				return err
			}

			if len(res.Warnings) > 0 {
				ui.Warning(MsgParseWarnings, len(res.Warnings))
			}
			ui.Success(MsgApplied, args[0], res.FileCount, res.DirCount)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-name>",
		Short: MsgDeleteShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			if err := st.Delete(args[0]); err != nil {
				if errors.IsErrorCode(err, errors.ErrTemplateNotFound) {
					ui.Warning(MsgNotFound, args[0])
					return nil
				}
				return err
			}
			ui.Success(MsgDeleted, args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			names, err := st.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoTemplates)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgAvailable)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), MsgTemplateItem+"\n", name)
			}
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <input-file> [template-name]",
		Short: MsgImportShort,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version.NotifyIfOutdated(cmd.Context(), cmd.ErrOrStderr())

			_, st, err := openStore()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			imported, err := st.Import(args[0], name)
			if err != nil {
				return err
			}
			ui.Success(MsgImported, args[0], imported)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <template-name> <output-dir>",
		Short: MsgExportShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version.NotifyIfOutdated(cmd.Context(), cmd.ErrOrStderr())

			_, st, err := openStore()
			if err != nil {
				return err
			}
			if err := st.Export(args[0], args[1]); err != nil {
				if errors.IsErrorCode(err, errors.ErrTemplateNotFound) {
					ui.Warning(MsgNotFound, args[0])
					return nil
				}
				return err
			}
			ui.Success(MsgExported, args[0], args[1])
			return nil
		},
	}
}

func newShowDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-dir",
		Short: MsgShowDirShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgTemplatesDir+"\n", st.Dir())
			return nil
		},
	}
}

func newChangeDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-dir <new-directory>",
		Short: MsgChangeDirShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0o755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate,
					"failed to create directory %s", args[0])
			}
			if err := config.SetTemplateDir(args[0]); err != nil {
				return err
			}
			ui.Success(MsgTemplatesDirSet, args[0])
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: MsgUpdateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return version.CheckForUpdates(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat,
				version.Version, version.Commit, version.Date)
		},
	}
}
