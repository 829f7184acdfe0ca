// Package mambarc implements persistence for the micromamba configuration
// file stored at the top of the root prefix.
//
// The FileRepository stores and loads the settings as YAML and exposes a
// Repository interface that the fetcher depends on.
package mambarc
