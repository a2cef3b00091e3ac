// Package version provides build-time version information for slicmosaic.
// Version information is injected at build time using ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is injected via: -ldflags "-X github.com/setanarut/slicmosaic/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is injected via: -ldflags "-X github.com/setanarut/slicmosaic/internal/version.Commit=$(git rev-parse HEAD)".
	Commit = "unknown"
)

// String returns a human-readable version string.
func String() string {
	if len(Commit) >= 8 {
		return fmt.Sprintf("slicmosaic version %s (commit: %s, %s, %s/%s)",
			Version, Commit[:8], runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("slicmosaic version %s (%s, %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns a short version string suitable for CLI output.
func Short() string {
	return Version
}
