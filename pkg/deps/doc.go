// Package deps queries package registries for the declared dependencies of a
// manifest and classifies them as current or outdated.
//
// # Overview
//
// The package has three layers:
//
//  1. Integrations ([integrations]): HTTP clients for a registry API
//  2. Clients (this package): [Client] turns a manifest group into [Record] values
//  3. Classification (this package): [Classifier] joins the three group
//     queries and filters outdated packages
//
// # Querying a Registry
//
// [NewRegistry] adapts any [Fetcher] into a [Client]. Packages are fetched
// concurrently by a bounded worker group:
//
//	client := deps.NewRegistry("npm", fetcher)
//	recs, err := client.Query(ctx, m, deps.QueryOptions{Dev: true})
//
// Packages the registry cannot answer for are skipped unless the matching
// [ErrorPolicy] flag is set:
//
//   - NotFound: the registry returns no such package
//   - DepType: the declared constraint is not a string
//   - SCM: the package is installed from a git URL or hosted-git shorthand
//
// Local references (file:, link:, workspace:) and tarball URLs are always
// skipped.
//
// # Classification
//
// [Classifier.Classify] runs the dependencies, devDependencies and
// optionalDependencies queries concurrently, each with its own copy of the
// options from [QueryOptions.ForGroup]. The first failure aborts the
// classification.
//
// In [ModeOutdated] a record is kept when [IsOutdated] reports that the
// declared range excludes the target version. The target is the latest
// stable version, or the "latest" dist-tag when QueryOptions.Stable is unset.
//
// # Report
//
// A [Report] always holds all three groups, so callers can range over
// [manifest.Groups] without nil checks.
//
// [integrations]: github.com/matzehuels/outdated/pkg/integrations
package deps
