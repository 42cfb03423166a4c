// Package build provides version and build information for changekeeper.
// This package intentionally has no dependencies on other internal packages
// to avoid import cycles.
package build

import "fmt"

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// SourceURL is the project source URL.
const SourceURL = "https://github.com/ariel-frischer/changekeeper"

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// UserAgent identifies changekeeper in requests to remote stores.
func UserAgent() string {
	return fmt.Sprintf("changekeeper/%s", Version)
}
