// Command mamba-runner manages micromamba-backed Python environments.
package main

import "github.com/oshokin/mamba-runner/cmd/mamba-runner/cmd"

func main() {
	cmd.Execute()
}
