package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List resolved targets in build order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := c.cwd()
			if err != nil {
				return err
			}
			return c.app.Targets(cmd.Context(), cwd)
		},
	}
}

func (c *CLI) newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the report of the last build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			cwd, err := c.cwd()
			if err != nil {
				return err
			}
			return c.app.Report(cmd.Context(), cwd, asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}
