package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/phi/internal/app"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [dir]",
		Short: "Precompile every module below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			jobs, _ := cmd.Flags().GetInt("jobs")

			_, err := c.app.Compile(cmd.Context(), dir, app.CompileOptions{Jobs: jobs})
			return err
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent compiles (default: number of CPUs)")
	return cmd
}
