// Package pkg provides the libraries behind the outdated command.
//
// # Overview
//
// Outdated reads package.json manifests, asks the npm registry which
// versions exist for every declared dependency, and reports the packages
// whose declared range no longer covers the newest release. It can rewrite
// the manifest to the new versions and fail once too many packages are
// outdated. The pkg directory is organized into these areas:
//
//  1. [manifest] - Order-preserving package.json model
//  2. [deps] - Records, registry queries, version comparison, classification
//  3. [integrations] - HTTP clients for the npm registry
//  4. [update] and [report] - Manifest rewriting and report output
//  5. [pipeline] - Orchestration (parse → classify → rewrite → report)
//
// # Architecture
//
// The typical data flow:
//
//	package.json
//	     ↓
//	[manifest] package (parse, keep key order)
//	     ↓
//	[deps] package (query the registry per dependency group)
//	     ↓
//	[update] package (optional: bump constraints)
//	     ↓
//	[report] package (render and deliver the report)
//
// # Quick Start
//
// Check a manifest against the public registry:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/outdated/pkg/manifest"
//	    "github.com/matzehuels/outdated/pkg/pipeline"
//	)
//
//	data, _ := os.ReadFile("package.json")
//	checker, _ := pipeline.NewNPM(pipeline.Options{ErrorDepCount: 5})
//	result, err := checker.Check(context.Background(), &manifest.File{
//	    Path:     "package.json",
//	    Contents: data,
//	})
//
// # Supporting Packages
//
// [errors] - Structured error codes shared by every stage.
//
// [httputil] - Retry with exponential backoff for transient registry failures.
//
// [observability] - Optional hooks for pipeline and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include live registry tests
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/manifest
// [deps]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/deps
// [integrations]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/integrations
// [update]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/update
// [report]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/report
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/outdated/pkg/buildinfo
package pkg
