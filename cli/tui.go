package cli

import (
	"github.com/spf13/cobra"

	"github.com/njchilds90/funcstudy/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Study functions in an interactive terminal UI",
		Long: `Open the terminal UI.

Keys:
  enter   full study
  ctrl+p  simple plot
  up/down zoom
  ctrl+s  write ` + "Etude_fonction.pdf" + `
  esc     quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tui.Run(rootOpts.Config, initial); err != nil {
				return WrapExitError(ExitCommandError, "terminal UI failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&initial, "expr", "e", "", "expression to start with")

	return cmd
}
