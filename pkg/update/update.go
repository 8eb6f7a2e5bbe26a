// Package update rewrites the declared constraints of a manifest to the
// versions found by a classification.
package update

import (
	"github.com/matzehuels/outdated/pkg/deps"
	"github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/manifest"
)

// DefaultPrefix is the range operator used when updates are enabled without
// an explicit prefix.
const DefaultPrefix = "^"

// Rewrite sets every package of r to prefix followed by its target version:
// the latest version when includeUnstable is set, the latest stable version
// otherwise. Packages not yet declared in their group are appended.
//
// m is modified in place and returned. A report entry without the selected
// version fails with MISSING_VERSION before anything is written.
func Rewrite(m *manifest.Manifest, r deps.Report, prefix string, includeUnstable bool) (*manifest.Manifest, error) {
	type change struct {
		group   manifest.Group
		name    string
		version string
	}

	var changes []change
	for _, g := range manifest.Groups {
		for _, name := range r.Names(g) {
			rec := r[g][name]
			v := rec.Stable
			if includeUnstable {
				v = rec.Latest
			}
			if v == "" {
				return nil, errors.New(errors.ErrCodeMissingVersion,
					"no %s version for %s in %s", channel(includeUnstable), name, g)
			}
			changes = append(changes, change{group: g, name: name, version: v})
		}
	}

	for _, c := range changes {
		m.Group(c.group).Set(c.name, prefix+c.version)
	}
	return m, nil
}

func channel(unstable bool) string {
	if unstable {
		return "latest"
	}
	return "stable"
}
