// Package version exposes build metadata for mamba-runner.
//
// Version, Commit and BuildTime are injected via Go ldflags and default to
// values suitable for local builds.
package version
