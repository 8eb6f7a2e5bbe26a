package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
	"github.com/matzehuels/outdated/pkg/pipeline"
	"github.com/matzehuels/outdated/pkg/report"
)

// listCommand creates the list command showing the versions of every
// declared dependency, outdated or not.
func (c *CLI) listCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "list [path...]",
		Short: "Show required, stable and latest versions of all dependencies",
		Long: `Show required, stable and latest versions of all dependencies.

Unlike check, list never rewrites manifests and never fails because of
outdated packages.

Examples:
  outdated list
  outdated list packages/api --unstable`,
		ValidArgsFunction: completeManifests,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			cfg.apply(cmd.Flags(), &opts)
			return c.runList(cmd.Context(), cmd.OutOrStdout(), manifestPaths(args), opts)
		},
	}

	addQueryFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runList(ctx context.Context, out io.Writer, paths []string, opts options) error {
	logger := loggerFromContext(ctx)
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	checker, err := pipeline.NewNPM(pipeline.Options{
		Ignore:   opts.ignore,
		Registry: opts.registry,
		Reporter: pipeline.DisabledReporter(),
		Unstable: opts.unstable,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	console := report.NewConsole(out)

	prog := newProgress(logger)
	var result *multierror.Error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path))
			continue
		}

		spin := startSpinner(ctx, c.status, fmt.Sprintf("Querying registry for %s...", path))
		rep, err := checker.List(ctx, &manifest.File{Path: path, Contents: data})
		if err != nil {
			if spin.Cancelled() {
				spin.Stop()
			} else {
				spin.StopWithError("Failed to query " + path)
			}
			result = multierror.Append(result, err)
			continue
		}
		spin.StopWithSuccess(fmt.Sprintf("Queried %d dependencies of %s", rep.Count(), path))
		if err := console.Report(path, rep); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Listed %d manifest(s)", len(paths)))

	return errorOrNil(result)
}
