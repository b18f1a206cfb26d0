package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cmdrule/internal/core/domain"
)

func (c *CLI) newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the current rules against the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode, _ := cmd.Flags().GetBool("exit-code")

			cwd, err := c.cwd()
			if err != nil {
				return err
			}
			report, err := c.app.Diff(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			if exitCode && !report.Empty() {
				return domain.ErrRulesChanged
			}
			return nil
		},
	}

	cmd.Flags().Bool("exit-code", false, "Exit with status 1 when rules changed")

	return cmd
}
