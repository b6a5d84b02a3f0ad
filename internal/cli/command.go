package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/treesize/internal/config"
	"github.com/idelchi/treesize/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var (
		configPath string
		initScript bool
	)

	cmd := &cobra.Command{
		Use:   "treesize [flags] [path]",
		Short: "Report the cumulative size of every file and directory under a path",
		Long: heredoc.Doc(`
			treesize scans a directory tree and reports the cumulative size of every
			file and every ancestor directory, largest first.

			The immediate children of the root are scanned in parallel as independent
			units and merged once all of them are done. The full report is written as
			CSV (Path, Size, SizeGB); the largest entries are printed to the console.

			Positional Arguments:
			  path                   Directory to scan. Defaults to the current directory.

			Settings can also come from a treesize.yaml file or TREESIZE_* environment
			variables (e.g. TREESIZE_WORKERS=4, TREESIZE_ON_UNIT_ERROR=skip).

			The '--init' flag prints a zsh function that pipes the largest paths to 'fzf'
			and changes into the selected directory.
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initScript {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return err
			}

			if len(args) == 1 {
				if err := cmd.Flags().Set("root", args[0]); err != nil {
					return fmt.Errorf("setting root: %w", err)
				}
			}

			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}

			return logic(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	config.Flags(flags)
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default ./treesize.yaml)")
	flags.BoolVarP(&initScript, "init", "i", false, "Output init script for shell usage")

	return cmd
}
