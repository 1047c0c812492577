// Package version reports the build of the tasker binaries.
package version

// Set with -ldflags "-X github.com/GoCodeAlone/tasker/internal/version.Version=..." at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)
