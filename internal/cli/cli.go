// Package cli implements the outdated command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/outdated/pkg/buildinfo"
	"github.com/matzehuels/outdated/pkg/deps/javascript"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = buildinfo.Name

	// defaultConfigFile is read from the working directory when --config is not given.
	defaultConfigFile = ".outdated.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// status receives spinners and one-line status messages. Reports and
	// rewritten manifests go to the command's stdout instead.
	status io.Writer
}

// New creates a new CLI instance logging to w. Status output shares w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), status: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Outdated reports stale npm dependencies in package.json manifests",
		Long: `Outdated checks the dependencies, devDependencies and optionalDependencies of
package.json manifests against the npm registry, reports the packages whose
declared range no longer covers the newest release, and can rewrite the
manifest to the new versions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

// manifestPaths turns command arguments into manifest paths. Directories
// resolve to the package.json they contain; no arguments means the
// package.json of the working directory.
func manifestPaths(args []string) []string {
	if len(args) == 0 {
		return []string{javascript.ManifestName}
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			arg = filepath.Join(arg, javascript.ManifestName)
		}
		paths = append(paths, arg)
	}
	return paths
}
