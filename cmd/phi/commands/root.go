// Package commands implements the CLI commands for phi.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/phi/internal/app"
	"go.trai.ch/phi/internal/build"
)

// CLI represents the command line interface for phi.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, target string, args []string) error
	Compile(ctx context.Context, dir string, opts app.CompileOptions) (app.CompileReport, error)
	Translate(ctx context.Context, path string) (string, error)
	Clean(ctx context.Context) error
	ConfigInit(force bool) (string, error)
	ConfigReset() (bool, error)
	ConfigShow() ([]byte, error)
	ConfigureLogging(verbose, jsonOutput bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "phi",
		Short:         "Run modules written with symbolic syntax",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	// -v belongs to --verbose; registered first so --version gets no shorthand.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log cache activity and other debug output")
	rootCmd.PersistentFlags().Bool("json", false, "Write logs as JSON")

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		c.app.ConfigureLogging(verbose, jsonOutput)
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newCompileCmd())
	rootCmd.AddCommand(c.newTranslateCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newConfigCmd())
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
