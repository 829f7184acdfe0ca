// Package registry queries, creates and removes named micromamba environments.
//
// Success of create and remove is decided by the exit code of the external
// tool alone; its output is only logged at debug level.
package registry
