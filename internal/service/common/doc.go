// Package common holds helpers shared by several services.
//
// It provides the Executor capability wrapping the micromamba subprocess, so
// services can be tested against a fake, and a root prefix lock that
// serializes mutations across processes.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
