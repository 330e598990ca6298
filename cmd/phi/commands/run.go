package commands

import (
	"github.com/spf13/cobra"
)

// defaultTarget is run when no target is given.
const defaultTarget = "main"

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file-or-module] [args...]",
		Short: "Run a source file or module as the main module",
		Long: `Run a source file or module as the main module.

A target ending in .φ or containing a path separator is run as a file, with its
folder added to the module search roots. Any other target is a dotted module
name resolved below the project root. Everything after the target is passed to
the module as argv. Without a target the module "main" is run.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.app.Run(cmd.Context(), defaultTarget, nil)
			}
			return c.app.Run(cmd.Context(), args[0], args[1:])
		},
	}
	// Flags after the target belong to the module.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
