// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// Each registry has its own subpackage:
//
//   - [npm]: the npm registry and API-compatible mirrors
//
// # Client Pattern
//
// Registry clients embed the shared [Client] and expose a FetchPackage method:
//
//	client, err := npm.NewClient("https://registry.npmjs.org")
//	pkg, err := client.FetchPackage(ctx, "express")
//
// The shared [Client] handles:
//   - Default and per-request headers
//   - Status mapping: 404 becomes [ErrNotFound], everything else [ErrNetwork]
//   - Retries for transport failures, 429 and 5xx responses
//   - Request events through the observability HTTP hooks
//
// Responses are never cached.
//
// [npm]: github.com/matzehuels/outdated/pkg/integrations/npm
package integrations
