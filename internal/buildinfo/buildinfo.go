// Package buildinfo carries version metadata injected at build time.
package buildinfo

var (
	// Version is the semantic version of this build, set via -ldflags.
	Version = "0.1.0"
	// Build is the VCS revision of this build, set via -ldflags.
	Build = "dev"
)
