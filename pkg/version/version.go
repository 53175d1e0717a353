// Package version holds the build version, overridden at link time with
// -ldflags "-X aerosentinel/pkg/version.Version=...".
package version

// Version is the generator release.
var Version = "v0.1.0"
