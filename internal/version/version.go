// Package version reports which build of the region annotator is running.
package version

import "fmt"

// Overridden at link time, e.g.
//
//	go build -ldflags "-X region-annotator/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Version of the annotator and of the project files it writes.
	Version = "0.1.0"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// GitCommit identifies the source revision.
	GitCommit = "unknown"
)

// String returns the version with the commit appended when it is known.
func String() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return "v" + Version
	}
	return fmt.Sprintf("v%s (%s)", Version, GitCommit)
}
