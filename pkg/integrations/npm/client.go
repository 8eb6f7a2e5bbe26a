package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/matzehuels/outdated/pkg/buildinfo"
	apperrors "github.com/matzehuels/outdated/pkg/errors"
	"github.com/matzehuels/outdated/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// abbreviatedMetadata asks the registry for the install-time document, which
// carries versions and dist-tags without readmes and per-version manifests.
const abbreviatedMetadata = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// PackageInfo is the part of a registry document the version checks need.
// Versions is sorted lexically; DistTags maps tag names such as "latest" to
// versions.
type PackageInfo struct {
	Name     string
	Versions []string
	DistTags map[string]string
}

// Client fetches package documents from an npm-compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the registry at baseURL. An empty baseURL
// selects [DefaultRegistry].
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	u, err := integrations.NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:  integrations.NewClient(map[string]string{
			"Accept":     abbreviatedMetadata,
			"User-Agent": buildinfo.UserAgent(),
		}),
		baseURL: u,
	}, nil
}

// BaseURL returns the registry endpoint the client queries.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPackage returns the published versions and dist-tags of pkg. Invalid
// names and registry 404s both wrap [integrations.ErrNotFound].
func (c *Client) FetchPackage(ctx context.Context, pkg string) (*PackageInfo, error) {
	pkg = strings.TrimSpace(pkg)
	if err := apperrors.ValidateNpmPackageName(pkg); err != nil {
		return nil, fmt.Errorf("%w: npm package %s: %v", integrations.ErrNotFound, pkg, err)
	}

	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+url.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return nil, err
	}

	name := data.Name
	if name == "" {
		name = pkg
	}
	return &PackageInfo{
		Name:     name,
		Versions: slices.Sorted(maps.Keys(data.Versions)),
		DistTags: data.DistTags,
	}, nil
}

type registryResponse struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}
