package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <file>",
		Short: "Print the host-native source of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.app.Translate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}
