// Package commands implements the CLI commands for the smelt build tool.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/smelt/internal/app"
	"go.trai.ch/smelt/internal/build"
)

// CLI represents the command line interface for smelt.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	dir     string
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, cwd string, opts app.BuildOptions) error
	Watch(ctx context.Context, cwd string, opts app.BuildOptions) error
	Targets(ctx context.Context, cwd string) error
	Report(ctx context.Context, cwd string, asJSON bool) error
	Clean(ctx context.Context, cwd string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "smelt",
		Short:         "Build static C and C++ libraries from target scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.dir, "dir", "C", "", "Run as if started in this directory")

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newTargetsCmd())
	rootCmd.AddCommand(c.newReportCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// cwd returns the directory the project is discovered from.
func (c *CLI) cwd() (string, error) {
	if c.dir != "" {
		return c.dir, nil
	}
	return os.Getwd()
}
