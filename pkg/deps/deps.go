package deps

import (
	"context"
	"errors"
	"fmt"
	"slices"

	apperrors "github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
)

// ErrNotFound is returned by a Fetcher when the registry does not know a package.
var ErrNotFound = errors.New("package not found")

// Record is the registry status of one declared package.
// An empty string stands for an unknown value.
type Record struct {
	Required string `json:"required,omitempty"` // Declared constraint
	Stable   string `json:"stable,omitempty"`   // Latest stable version
	Latest   string `json:"latest,omitempty"`   // Latest version, including pre-releases
}

// Report maps each dependency group to the records of its packages.
type Report map[manifest.Group]map[string]Record

// NewReport returns a Report holding all three groups, empty.
func NewReport() Report {
	r := make(Report, len(manifest.Groups))
	for _, g := range manifest.Groups {
		r[g] = make(map[string]Record)
	}
	return r
}

// Count returns the number of packages across all groups.
func (r Report) Count() int {
	n := 0
	for _, recs := range r {
		n += len(recs)
	}
	return n
}

// Names returns the package names of group g, sorted.
func (r Report) Names(g manifest.Group) []string {
	names := make([]string, 0, len(r[g]))
	for name := range r[g] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ErrorPolicy selects which query problems abort a query instead of
// skipping the offending package.
type ErrorPolicy struct {
	NotFound bool // The registry does not know the package
	DepType  bool // The declared constraint is not a string
	SCM      bool // The package is installed from source control
}

// QueryOptions configures a single registry query. Values are copied, never
// shared: use [QueryOptions.ForGroup] to derive per-group options.
type QueryOptions struct {
	Errors   ErrorPolicy
	Ignore   []string // Package names excluded from every check
	Loose    bool     // Accept loosely formatted versions
	Stable   bool     // Compare against the latest stable version
	Registry string   // Registry endpoint override
	Dev      bool     // Query devDependencies
	Optional bool     // Query optionalDependencies
}

// ForGroup returns a copy of o selecting group g.
func (o QueryOptions) ForGroup(g manifest.Group) QueryOptions {
	c := o
	c.Ignore = slices.Clone(o.Ignore)
	c.Dev = g == manifest.DevDependencies
	c.Optional = g == manifest.OptionalDependencies
	return c
}

// Group returns the dependency group selected by o.
func (o QueryOptions) Group() manifest.Group {
	switch {
	case o.Dev:
		return manifest.DevDependencies
	case o.Optional:
		return manifest.OptionalDependencies
	default:
		return manifest.Dependencies
	}
}

// Ignored reports whether name is on the ignore list.
func (o QueryOptions) Ignored(name string) bool {
	return slices.Contains(o.Ignore, name)
}

// Client queries a package registry for the packages of one dependency group.
type Client interface {
	// Query returns the records of the group selected by opts, keyed by
	// package name. Errors are *QueryError values.
	Query(ctx context.Context, m *manifest.Manifest, opts QueryOptions) (map[string]Record, error)
}

// ErrorKind classifies a failed query.
type ErrorKind int

const (
	KindTransport ErrorKind = iota // Network failure or malformed registry response
	KindNotFound                   // The registry does not know the package
	KindDepType                    // The declared constraint is not a string
	KindSCM                        // The package is installed from source control
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindDepType:
		return "dependency type mismatch"
	case KindSCM:
		return "source control dependency"
	default:
		return "transport"
	}
}

// QueryError reports a failed registry query for one package.
type QueryError struct {
	Kind    ErrorKind
	Package string
	Group   manifest.Group
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Group, e.Package, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Group, e.Package, e.Kind)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Code returns the error code for this error type.
func (e *QueryError) Code() apperrors.Code { return apperrors.ErrCodeRegistryQuery }
