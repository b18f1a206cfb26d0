package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cmdrule/internal/app"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the custom commands declared by the rule files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			target, _ := cmd.Flags().GetString("target")

			cwd, err := c.cwd()
			if err != nil {
				return err
			}
			return c.app.Inspect(cmd.Context(), cwd, app.InspectOptions{
				Format: format,
				Target: target,
			})
		},
	}

	cmd.Flags().StringP("format", "f", string(app.FormatAuto), "Output format: auto, text or json")
	cmd.Flags().StringP("target", "t", "", "Only list the rules of this target")

	return cmd
}
