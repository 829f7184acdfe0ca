package pyenv

import (
	"fmt"
	"strings"
)

// OutputMode selects how the combined output of a script is decoded.
type OutputMode string

const (
	// ModeJSON decodes the output as a single JSON document.
	ModeJSON OutputMode = "json"
	// ModeText returns the output verbatim.
	ModeText OutputMode = "text"
)

// ParseOutputMode converts user input into an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeJSON:
		return ModeJSON, nil
	case ModeText, "":
		return ModeText, nil
	default:
		return "", fmt.Errorf("output mode %q: %w", s, errUnknownOutputMode)
	}
}

// Invocation is a single request to run a script or console command.
type Invocation struct {
	// Target is a script path ending in .py or a console script name.
	Target string
	// Environment is the name of the environment to run in.
	Environment string
	// Args are passed to the target in order.
	Args []string
	// Mode controls output decoding.
	Mode OutputMode
}

// Result is the outcome of a successful invocation.
type Result struct {
	// Value is the decoded document in JSON mode and nil otherwise.
	Value any
	// Output is the raw combined stdout and stderr.
	Output string
	// ExitCode is the exit status reported by the subprocess.
	ExitCode int
}
