// Package runner executes Python scripts and console commands inside a named
// environment and decodes what they print.
//
// Run reports every failure as a *pyenv.ErrorValue; it never panics and never
// lets a subprocess failure escape as another error type.
package runner
