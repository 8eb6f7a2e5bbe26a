// Package javascript binds the npm registry to the generic [deps.Registry].
//
// # Overview
//
// [NewClient] wraps the [npm] integration client in a [deps.Registry], so
// package.json groups can be queried like any other registry:
//
//	client, err := javascript.NewClient("") // https://registry.npmjs.org
//	recs, err := client.Query(ctx, m, deps.QueryOptions{})
//
// A registry 404 surfaces as [deps.ErrNotFound], which the registry skips or
// reports depending on the error policy. Any other failure is a transport
// error.
//
// [npm]: github.com/matzehuels/outdated/pkg/integrations/npm
package javascript
