// Package pyenv holds the domain model shared by the environment services:
// environments, package install outcomes, script invocations and the error
// taxonomy used to classify failures.
package pyenv
