// Package buildinfo holds the version stamped into the outdated binary.
//
// The variables are overridden with ldflags at release time:
//
//	go build -ldflags "-X github.com/matzehuels/outdated/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/outdated/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/outdated/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Name identifies the tool in version output and registry requests.
const Name = "outdated"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent returns the User-Agent sent to package registries, for example
// "outdated/v1.2.0".
func UserAgent() string {
	return Name + "/" + Version
}
