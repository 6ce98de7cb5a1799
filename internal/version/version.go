// Package version holds the release version, stamped by goreleaser.
package version

var Version = "0.1.0"
