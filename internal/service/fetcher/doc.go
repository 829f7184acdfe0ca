// Package fetcher downloads and installs the micromamba executable.
//
// In checksum mode it downloads the raw binary together with its detached
// SHA-256 digest, verifies the binary and atomically moves it into place. In
// archive mode it downloads a compressed archive, extracts it into a staging
// directory and moves the binary into the fixed layout under the root prefix.
// Either way, a failed fetch leaves no partial artifact behind.
package fetcher
