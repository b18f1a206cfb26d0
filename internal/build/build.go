// Package build holds build-time information.
package build

// Build metadata. Each defaults to a placeholder and can be overwritten by
// linker flags.
var (
	// Version is the application version.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
