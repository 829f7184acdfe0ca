// Package config defines the settings shared by mamba-runner commands and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the root prefix, the artifact sources and the defaults
// used when provisioning environments. Platform helpers derive the executable
// name and release URLs, and ImportEnvFile loads KEY=VALUE files into the
// process environment.
package config
