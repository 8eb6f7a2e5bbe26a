// Package pipeline checks package.json manifests for outdated dependencies.
//
// This package implements the complete parse → classify → rewrite → report
// pipeline used by the CLI. By centralizing this logic, every entry point
// applies the same error escalation and threshold rules.
//
// # Architecture
//
// A check moves through these states:
//
//	START → PARSED → CLASSIFIED → [REWRITTEN] → REPORTED → DONE
//
// Any stage can move the check to FAILED instead:
//
//  1. Parse: decode the manifest; parse errors are returned unchanged
//  2. Classify: query the registry for all three dependency groups
//  3. Rewrite: only with an update policy; bump constraints to the new versions
//  4. Report: hand the classification to the configured reporter
//  5. Gate: fail with TOO_MANY_OUTDATED once the configured count is reached
//
// # Usage
//
//	checker, err := pipeline.NewNPM(pipeline.Options{
//	    ErrorDepCount: 1,
//	    Update:        pipeline.UpdateWith("~"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := checker.Check(ctx, &manifest.File{Path: path, Contents: data})
//
// The report reaches the reporter before the threshold is evaluated, so a
// failed gate still shows which packages tripped it.
package pipeline

import (
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/outdated/pkg/deps"
	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/report"
	"github.com/matzehuels/outdated/pkg/update"
)

// =============================================================================
// Reporter - Where Reports Go
// =============================================================================

type reporterKind int

const (
	reporterDefault reporterKind = iota
	reporterDisabled
	reporterCustom
)

// Reporter selects the sink receiving classification reports. The zero
// value is [DefaultReporter].
type Reporter struct {
	kind reporterKind
	sink report.Reporter
}

// DisabledReporter turns reporting off.
func DisabledReporter() Reporter { return Reporter{kind: reporterDisabled} }

// DefaultReporter writes coloured reports to standard output.
func DefaultReporter() Reporter { return Reporter{kind: reporterDefault} }

// CustomReporter delivers reports to r. A nil r disables reporting.
func CustomReporter(r report.Reporter) Reporter {
	if r == nil {
		return DisabledReporter()
	}
	return Reporter{kind: reporterCustom, sink: r}
}

// ReporterFromBool resolves a configuration switch: true selects the default
// console reporter, false disables reporting.
func ReporterFromBool(enabled bool) Reporter {
	if enabled {
		return DefaultReporter()
	}
	return DisabledReporter()
}

// Enabled reports whether reports are delivered anywhere.
func (r Reporter) Enabled() bool { return r.kind != reporterDisabled }

func (r Reporter) resolve(stdout io.Writer) report.Reporter {
	switch r.kind {
	case reporterDisabled:
		return nil
	case reporterCustom:
		return r.sink
	default:
		return report.NewConsole(stdout)
	}
}

// =============================================================================
// UpdatePolicy - Manifest Rewrites
// =============================================================================

// UpdatePolicy controls whether outdated constraints are rewritten. The zero
// value is [NoUpdate].
type UpdatePolicy struct {
	enabled bool
	prefix  string
}

// NoUpdate leaves the manifest untouched.
func NoUpdate() UpdatePolicy { return UpdatePolicy{} }

// UpdateWith rewrites outdated constraints to prefix followed by the new
// version, e.g. "^" or "~". An empty prefix pins exact versions.
func UpdateWith(prefix string) UpdatePolicy {
	return UpdatePolicy{enabled: true, prefix: prefix}
}

// UpdateFromBool resolves a configuration switch: true rewrites with the
// caret prefix, false disables rewrites.
func UpdateFromBool(enabled bool) UpdatePolicy {
	if enabled {
		return UpdateWith(update.DefaultPrefix)
	}
	return NoUpdate()
}

// Prefix returns the range operator and whether rewriting is enabled.
func (p UpdatePolicy) Prefix() (string, bool) { return p.prefix, p.enabled }

// =============================================================================
// Options - Checker Configuration
// =============================================================================

// Options contains all configuration for a Checker.
type Options struct {
	Error404      bool         // Fail when the registry does not know a package
	ErrorDepCount int          // Fail when this many packages are outdated (0 disables)
	ErrorDepType  bool         // Fail on dependencies declared with a non-string value
	ErrorSCM      bool         // Fail on dependencies installed from source control
	Ignore        []string     // Package names excluded from every check
	Registry      string       // Registry endpoint override
	Reporter      Reporter     // Report sink
	Update        UpdatePolicy // Manifest rewrite policy
	Unstable      bool         // Compare and update against pre-release versions

	// Runtime options
	Logger *log.Logger
	Stdout io.Writer // Destination of the default reporter
}

// Validate checks option values that cannot be represented by their types.
func (o *Options) Validate() error {
	if o.ErrorDepCount < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "error-dep-count must not be negative, got %d", o.ErrorDepCount)
	}
	if o.Registry != "" {
		if err := errors.ValidateURL(o.Registry); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "registry")
		}
	}
	for _, name := range o.Ignore {
		if err := errors.ValidatePackageName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "ignore %q", name)
		}
	}
	return nil
}

// QueryOptions derives the base registry query options. Versions are parsed
// loosely, as registries still serve legacy "v1.2.3" style versions.
func (o *Options) QueryOptions() deps.QueryOptions {
	return deps.QueryOptions{
		Errors: deps.ErrorPolicy{
			NotFound: o.Error404,
			DepType:  o.ErrorDepType,
			SCM:      o.ErrorSCM,
		},
		Ignore:   slices.Clone(o.Ignore),
		Loose:    true,
		Stable:   !o.Unstable,
		Registry: o.Registry,
	}
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
}

// =============================================================================
// State and Result
// =============================================================================

// State is a stage of a single check.
type State int

const (
	StateStart State = iota
	StateParsed
	StateClassified
	StateRewritten
	StateReported
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateParsed:
		return "PARSED"
	case StateClassified:
		return "CLASSIFIED"
	case StateRewritten:
		return "REWRITTEN"
	case StateReported:
		return "REPORTED"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Result contains the outputs of a successful check.
type Result struct {
	Path     string      // Manifest path
	Contents []byte      // Rewritten manifest, or the original bytes
	Report   deps.Report // Classified packages
	Outdated int         // Packages in Report
	Updated  bool        // Whether Contents was rewritten
	RunID    string      // Identifies the check in logs
}
