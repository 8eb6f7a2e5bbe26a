package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/pipeline"
)

// =============================================================================
// Options - Flag Values
// =============================================================================

// options holds the flag values shared by check and list.
type options struct {
	error404      bool
	errorDepCount int
	errorDepType  bool
	errorSCM      bool
	ignore        []string
	registry      string
	reporter      bool
	update        pipeline.UpdatePolicy
	unstable      bool

	config  string
	dryRun  bool
	timeout time.Duration
}

// pipelineOptions converts flag values into checker options.
func (o *options) pipelineOptions(logger *log.Logger, stdout io.Writer) pipeline.Options {
	return pipeline.Options{
		Error404:      o.error404,
		ErrorDepCount: o.errorDepCount,
		ErrorDepType:  o.errorDepType,
		ErrorSCM:      o.errorSCM,
		Ignore:        slices.Clone(o.ignore),
		Registry:      o.registry,
		Reporter:      pipeline.ReporterFromBool(o.reporter),
		Update:        o.update,
		Unstable:      o.unstable,
		Logger:        logger,
		Stdout:        stdout,
	}
}

// updateFlag adapts pipeline.UpdatePolicy to a pflag value. A bare --update
// selects the caret prefix; "false" disables rewrites.
type updateFlag struct {
	policy *pipeline.UpdatePolicy
}

func (f updateFlag) String() string {
	if f.policy == nil {
		return ""
	}
	if p, ok := f.policy.Prefix(); ok {
		return p
	}
	return ""
}

func (f updateFlag) Set(s string) error {
	switch strings.TrimSpace(s) {
	case "true":
		*f.policy = pipeline.UpdateFromBool(true)
	case "false":
		*f.policy = pipeline.NoUpdate()
	default:
		*f.policy = pipeline.UpdateWith(strings.TrimSpace(s))
	}
	return nil
}

func (updateFlag) Type() string { return "prefix" }

// =============================================================================
// Config File
// =============================================================================

// fileConfig mirrors the check flags in a TOML file. Unset keys leave the
// flag defaults untouched.
//
//	error-dep-count = 5
//	ignore = ["left-pad"]
//	registry = "https://registry.example.com"
//	update = "~"
type fileConfig struct {
	Error404      *bool          `toml:"error-404"`
	ErrorDepCount *int           `toml:"error-dep-count"`
	ErrorDepType  *bool          `toml:"error-dep-type"`
	ErrorSCM      *bool          `toml:"error-scm"`
	Ignore        []string       `toml:"ignore"`
	Registry      *string        `toml:"registry"`
	Reporter      *bool          `toml:"reporter"`
	Update        *updateSetting `toml:"update"`
	Unstable      *bool          `toml:"unstable"`
}

// updateSetting accepts either a boolean or a prefix string.
type updateSetting struct {
	policy pipeline.UpdatePolicy
}

// UnmarshalTOML implements toml.Unmarshaler.
func (u *updateSetting) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case bool:
		u.policy = pipeline.UpdateFromBool(v)
	case string:
		u.policy = pipeline.UpdateWith(v)
	default:
		return fmt.Errorf("update must be a boolean or a prefix string, got %T", v)
	}
	return nil
}

// loadConfig reads the TOML file at path. An empty path falls back to
// defaultConfigFile, which may be absent; an explicitly named file must exist.
func loadConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}

	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return &cfg, nil
}

// apply copies configured values into o unless the matching flag was set
// on the command line.
func (cfg *fileConfig) apply(flags *pflag.FlagSet, o *options) {
	if cfg == nil {
		return
	}
	use := func(name string, set bool) bool {
		return set && !flags.Changed(name)
	}

	if use("error-404", cfg.Error404 != nil) {
		o.error404 = *cfg.Error404
	}
	if use("error-dep-count", cfg.ErrorDepCount != nil) {
		o.errorDepCount = *cfg.ErrorDepCount
	}
	if use("error-dep-type", cfg.ErrorDepType != nil) {
		o.errorDepType = *cfg.ErrorDepType
	}
	if use("error-scm", cfg.ErrorSCM != nil) {
		o.errorSCM = *cfg.ErrorSCM
	}
	if use("ignore", cfg.Ignore != nil) {
		o.ignore = slices.Clone(cfg.Ignore)
	}
	if use("registry", cfg.Registry != nil) {
		o.registry = *cfg.Registry
	}
	if use("reporter", cfg.Reporter != nil) {
		o.reporter = *cfg.Reporter
	}
	if use("update", cfg.Update != nil) {
		o.update = cfg.Update.policy
	}
	if use("unstable", cfg.Unstable != nil) {
		o.unstable = *cfg.Unstable
	}
}
