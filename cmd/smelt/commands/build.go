package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/smelt/internal/app"
)

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, linear, or quiet")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	cmd.Flags().IntP("jobs", "j", 0, "Number of concurrent compile jobs (default: build.parallelism or CPU count)")
}

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	outputMode, _ := cmd.Flags().GetString("output-mode")
	ci, _ := cmd.Flags().GetBool("ci")
	jobs, _ := cmd.Flags().GetInt("jobs")

	// If --ci is set, override output-mode to "linear"
	if ci {
		outputMode = "linear"
	}

	return app.BuildOptions{
		OutputMode:  outputMode,
		Parallelism: jobs,
	}
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every target of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runBuild(cmd, c.app.Build)
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build the project and rebuild it when sources change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runBuild(cmd, c.app.Watch)
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, fn func(context.Context, string, app.BuildOptions) error) error {
	cwd, err := c.cwd()
	if err != nil {
		return err
	}
	return fn(cmd.Context(), cwd, buildOptions(cmd))
}
