package javascript

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/outdated/pkg/deps"
	"github.com/matzehuels/outdated/pkg/integrations"
	"github.com/matzehuels/outdated/pkg/integrations/npm"
)

// ManifestName is the file checked when a directory is given.
const ManifestName = "package.json"

// Supports reports whether filename is a package.json manifest.
func Supports(filename string) bool {
	return strings.EqualFold(filepath.Base(filename), ManifestName)
}

// NewClient returns a [deps.Client] backed by the npm registry at
// registryURL. An empty URL selects the public registry.
func NewClient(registryURL string) (*deps.Registry, error) {
	c, err := npm.NewClient(registryURL)
	if err != nil {
		return nil, fmt.Errorf("npm registry %q: %w", registryURL, err)
	}
	return deps.NewRegistry("npm", fetcher{c}), nil
}

type fetcher struct{ *npm.Client }

func (f fetcher) Fetch(ctx context.Context, name string) (*deps.Package, error) {
	p, err := f.FetchPackage(ctx, name)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", deps.ErrNotFound, err)
		}
		return nil, err
	}
	return &deps.Package{
		Name:     p.Name,
		Versions: p.Versions,
		DistTags: p.DistTags,
	}, nil
}
