package deps

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/outdated/pkg/manifest"
)

const workers = 20

// Package holds the published versions of a registry package.
type Package struct {
	Name     string            // Package name
	Versions []string          // Every published version
	DistTags map[string]string // Tag → version, e.g. "latest"
}

// Stable returns the highest published version without a pre-release part.
func (p *Package) Stable(loose bool) string {
	return HighestStable(p.Versions, loose)
}

// Latest returns the highest published version, pre-releases included.
// The "latest" dist-tag is used only when no published version parses.
func (p *Package) Latest(loose bool) string {
	if v := Highest(p.Versions, loose); v != "" {
		return v
	}
	return p.DistTags["latest"]
}

// Fetcher retrieves package metadata from a registry.
type Fetcher interface {
	// Fetch retrieves the package by name. It returns an error wrapping
	// ErrNotFound when the registry does not know the package.
	Fetch(ctx context.Context, name string) (*Package, error)
}

// Registry implements Client by wrapping a Fetcher with concurrent lookups.
type Registry struct {
	name    string
	fetcher Fetcher
	logger  func(string, ...any)
}

// NewRegistry creates a Client that looks packages up with the given Fetcher.
func NewRegistry(name string, fetcher Fetcher) *Registry {
	return &Registry{name: name, fetcher: fetcher, logger: func(string, ...any) {}}
}

// WithLogger sets the callback receiving warnings about skipped packages.
func (r *Registry) WithLogger(fn func(string, ...any)) *Registry {
	if fn != nil {
		r.logger = fn
	}
	return r
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Query looks up every package of the group selected by opts.
//
// Ignored packages are dropped first. Packages declared with a non-string
// value, installed from source control, or unknown to the registry are
// skipped unless opts.Errors makes the condition fatal.
func (r *Registry) Query(ctx context.Context, m *manifest.Manifest, opts QueryOptions) (map[string]Record, error) {
	group := opts.Group()

	var pending []job
	for _, dep := range m.Group(group).Entries() {
		if opts.Ignored(dep.Name) {
			continue
		}

		required, ok := dep.Constraint()
		if !ok {
			if opts.Errors.DepType {
				return nil, &QueryError{Kind: KindDepType, Package: dep.Name, Group: group}
			}
			r.logger("skipping %s: constraint is not a string", dep.Name)
			continue
		}

		switch {
		case IsSCM(required):
			if opts.Errors.SCM {
				return nil, &QueryError{Kind: KindSCM, Package: dep.Name, Group: group}
			}
			r.logger("skipping %s: source control dependency %q", dep.Name, required)
			continue
		case IsLocal(required):
			r.logger("skipping %s: local dependency %q", dep.Name, required)
			continue
		}

		pending = append(pending, job{name: dep.Name, required: required})
	}

	return r.run(ctx, group, pending, opts)
}

type job struct {
	name     string
	required string
}

func (r *Registry) run(ctx context.Context, group manifest.Group, jobs []job, opts QueryOptions) (map[string]Record, error) {
	var (
		mu      sync.Mutex
		records = make(map[string]Record, len(jobs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error {
			pkg, err := r.fetcher.Fetch(gctx, j.name)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					if opts.Errors.NotFound {
						return &QueryError{Kind: KindNotFound, Package: j.name, Group: group, Err: err}
					}
					r.logger("skipping %s: not found in %s", j.name, r.name)
					return nil
				}
				return &QueryError{Kind: KindTransport, Package: j.name, Group: group, Err: err}
			}

			rec := Record{
				Required: j.required,
				Stable:   pkg.Stable(opts.Loose),
				Latest:   pkg.Latest(opts.Loose),
			}
			mu.Lock()
			records[j.name] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

var scmPrefixes = []string{"git:", "git+", "git@", "github:", "gitlab:", "bitbucket:", "gist:"}

// IsSCM reports whether a constraint installs the package from source
// control: git URLs, hosted-git shortcuts and "user/repo" shorthands.
func IsSCM(constraint string) bool {
	c := strings.TrimSpace(constraint)
	for _, p := range scmPrefixes {
		if strings.HasPrefix(c, p) {
			return true
		}
	}
	base, _, _ := strings.Cut(c, "#")
	if isURL(base) {
		return strings.HasSuffix(base, ".git")
	}
	if strings.Contains(base, "/") && !strings.ContainsAny(base, " <>=^~|:") {
		return !strings.HasPrefix(base, ".") && !strings.HasPrefix(base, "/") && !strings.HasPrefix(base, "@")
	}
	return false
}

// IsLocal reports whether a constraint points outside the registry without
// using source control: file paths, links, workspaces and tarball URLs.
func IsLocal(constraint string) bool {
	c := strings.TrimSpace(constraint)
	for _, p := range []string{"file:", "link:", "workspace:", "./", "../", "~/", "/"} {
		if strings.HasPrefix(c, p) {
			return true
		}
	}
	return isURL(c) && !IsSCM(c)
}

func isURL(c string) bool {
	return strings.HasPrefix(c, "http://") || strings.HasPrefix(c, "https://")
}
