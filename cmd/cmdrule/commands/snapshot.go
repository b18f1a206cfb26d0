package commands

import "github.com/spf13/cobra"

func (c *CLI) newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Store the current rules for later comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := c.cwd()
			if err != nil {
				return err
			}
			return c.app.Snapshot(cmd.Context(), cwd)
		},
	}
}
