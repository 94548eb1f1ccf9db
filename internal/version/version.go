// Package version carries build metadata, set with -ldflags at link time.
package version

import "fmt"

var (
	// Version is the release tag of the trails server
	Version = "dev"
	// GitSHA is the commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the link timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for logs and the health endpoint.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
