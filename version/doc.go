// Package version exposes the build version of the voicenotes binaries.
//
// Version, git commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/voicenotes/version.Version=1.0.0"
package version
