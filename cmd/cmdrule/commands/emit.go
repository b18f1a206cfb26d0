package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cmdrule/internal/app"
)

func (c *CLI) newEmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Validate the rules and write a Ninja file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")

			cwd, err := c.cwd()
			if err != nil {
				return err
			}
			return c.app.Emit(cmd.Context(), cwd, app.EmitOptions{Output: out})
		},
	}

	cmd.Flags().StringP("output", "o", "", "File to write, relative to the rule root (default: stdout)")

	return cmd
}
