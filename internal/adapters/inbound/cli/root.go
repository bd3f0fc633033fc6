package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every command that runs the pipeline.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "archlens",
		Short: "Inspect and compare uploaded project archives",
		Long: "archlens downloads project archives, unpacks them into a sandbox and " +
			"reports what each project is built with, or what changed between two versions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config file (default .archlens.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(flags))
	cmd.AddCommand(newCompareCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newRunsCmd(flags))
	cmd.AddCommand(newMCPCmd(flags))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. An interrupt cancels the running pipeline, which
// still removes its scratch directory before returning.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// reportedError marks a failure that has already been rendered for the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }
