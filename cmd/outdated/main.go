package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/outdated/internal/cli"
	apperrors "github.com/matzehuels/outdated/pkg/errors"
)

// exitOutdated is returned when every failed manifest tripped the
// outdated-count threshold.
const exitOutdated = 2

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, message(err))
		if cli.IsPolicyFailure(err) {
			os.Exit(exitOutdated)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Adjust the log level once flags are parsed.
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// message drops the code prefixes of a structured error. Aggregated errors
// already carry one line per manifest.
func message(err error) string {
	if _, ok := err.(*apperrors.Error); ok {
		return apperrors.UserMessage(err)
	}
	return err.Error()
}
