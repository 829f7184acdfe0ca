// Package integration exercises the services together against a scripted
// stand-in for micromamba that is downloaded and verified like the real one.
package integration
