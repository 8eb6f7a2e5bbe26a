package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
	"github.com/matzehuels/outdated/pkg/pipeline"
	"github.com/matzehuels/outdated/pkg/update"
)

// checkCommand creates the check command for reporting and updating outdated
// dependencies.
func (c *CLI) checkCommand() *cobra.Command {
	opts := options{reporter: true}

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report outdated dependencies of package.json manifests",
		Long: `Report outdated dependencies of package.json manifests.

Each path is a package.json file or a directory containing one. Without
arguments the package.json of the working directory is checked.

Settings are read from .outdated.toml in the working directory (or the file
named by --config); flags given on the command line take precedence.

Examples:
  outdated check
  outdated check packages/api packages/web
  outdated check --error-dep-count 1 --ignore left-pad
  outdated check --update          # rewrite to ^<stable>
  outdated check --update=~ --dry-run
  outdated check --registry https://registry.example.com`,
		ValidArgsFunction: completeManifests,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			cfg.apply(cmd.Flags(), &opts)
			return c.runCheck(cmd.Context(), cmd.OutOrStdout(), manifestPaths(args), opts)
		},
	}

	addQueryFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.error404, "error-404", false, "fail when the registry does not know a package")
	cmd.Flags().IntVar(&opts.errorDepCount, "error-dep-count", 0, "fail when this many dependencies are outdated (0 disables)")
	cmd.Flags().BoolVar(&opts.errorDepType, "error-dep-type", false, "fail on dependencies declared with a non-string value")
	cmd.Flags().BoolVar(&opts.errorSCM, "error-scm", false, "fail on dependencies installed from source control")
	cmd.Flags().BoolVar(&opts.reporter, "reporter", true, "print a report for each manifest")
	cmd.Flags().Var(updateFlag{&opts.update}, "update", "rewrite outdated constraints with this range prefix (default \"^\" when given without a value)")
	cmd.Flags().Lookup("update").NoOptDefVal = update.DefaultPrefix
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print rewritten manifests instead of writing them")

	return cmd
}

// addQueryFlags registers the flags shared by check and list.
func addQueryFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringSliceVar(&opts.ignore, "ignore", nil, "package names to skip (repeatable)")
	cmd.Flags().StringVar(&opts.registry, "registry", "", "npm registry URL (default https://registry.npmjs.org)")
	cmd.Flags().BoolVar(&opts.unstable, "unstable", false, "compare against pre-release versions")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML configuration file (default "+defaultConfigFile+" when present)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort after this duration (0 waits indefinitely)")
}

func (c *CLI) runCheck(ctx context.Context, out io.Writer, paths []string, opts options) error {
	logger := loggerFromContext(ctx)
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	checker, err := pipeline.NewNPM(opts.pipelineOptions(logger, out))
	if err != nil {
		return err
	}

	if _, ok := opts.update.Prefix(); opts.dryRun && !ok {
		printWarning(c.status, "--dry-run has no effect without --update")
	}

	prog := newProgress(logger)
	var result *multierror.Error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		if err := c.checkFile(ctx, checker, out, path, opts.dryRun); err != nil {
			logger.Debug("check failed", "path", path, "err", err)
			result = multierror.Append(result, err)
		}
	}
	prog.done(fmt.Sprintf("Checked %d manifest(s)", len(paths)))

	return errorOrNil(result)
}

// checkFile runs the checker on one manifest and persists the rewritten
// contents when the checker updated them.
func (c *CLI) checkFile(ctx context.Context, checker *pipeline.Checker, out io.Writer, path string, dryRun bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}

	res, err := checker.Check(ctx, &manifest.File{Path: path, Contents: data})
	if err != nil {
		return err
	}
	if !res.Updated {
		return nil
	}

	contents := res.Contents
	if bytes.HasSuffix(data, []byte("\n")) {
		contents = append(contents, '\n')
	}
	if dryRun {
		_, err := out.Write(contents)
		return err
	}
	if err := writeManifest(path, contents); err != nil {
		return err
	}
	printSuccess(c.status, "Updated %s", path)
	return nil
}

// writeManifest replaces path, keeping its permissions.
func writeManifest(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// errorOrNil returns a single failure unwrapped so callers can inspect its
// code; several failures are listed one per line.
func errorOrNil(result *multierror.Error) error {
	if result == nil || len(result.Errors) == 0 {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	result.ErrorFormat = func(errs []error) string {
		lines := make([]string, len(errs))
		for i, err := range errs {
			lines[i] = "  * " + err.Error()
		}
		return fmt.Sprintf("%d manifests failed:\n%s", len(errs), strings.Join(lines, "\n"))
	}
	return result
}

// IsPolicyFailure reports whether err consists only of outdated-count
// threshold failures. Any other failure among aggregated errors makes it
// false.
func IsPolicyFailure(err error) bool {
	merr, ok := err.(*multierror.Error)
	if !ok {
		return errors.Is(err, errors.ErrCodeTooManyOutdated)
	}
	if len(merr.Errors) == 0 {
		return false
	}
	for _, e := range merr.Errors {
		if !errors.Is(e, errors.ErrCodeTooManyOutdated) {
			return false
		}
	}
	return true
}
