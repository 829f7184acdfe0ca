// Package installer installs pip packages into an existing environment one at
// a time, recording an outcome per package.
package installer
