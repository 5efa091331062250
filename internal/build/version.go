// Package build exposes version metadata stamped at build time.
package build

import "fmt"

// Populated via -ldflags at release build time.
var (
	// version is the semantic version of the build.
	version = "0.1.0"

	// Commit is the git commit hash the binary was built from.
	Commit = ""
)

// Version returns the full version string for display.
func Version() string {
	if Commit != "" {
		return fmt.Sprintf("%s-%s", version, Commit)
	}

	return version
}
