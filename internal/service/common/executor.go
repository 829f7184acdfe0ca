//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
)

// ExecResult is the outcome of a finished subprocess.
type ExecResult struct {
	// ExitCode is the process exit status.
	ExitCode int
	// Output holds stdout and stderr interleaved as written.
	Output []byte
}

// Executor runs the micromamba executable with the given arguments.
// A non-zero exit is reported through ExecResult; the error is reserved for
// failures to start or wait for the process.
type Executor interface {
	Execute(ctx context.Context, args []string) (*ExecResult, error)
}

// MambaExecutor runs a micromamba binary bound to a single root prefix.
type MambaExecutor struct {
	// binary is the path to the micromamba executable.
	binary string
	// rootPrefix is exported to the child as MAMBA_ROOT_PREFIX.
	rootPrefix string
}

var errBinaryRequired = errors.New("micromamba binary path must be provided")

// NewMambaExecutor returns an executor for binary that manages rootPrefix.
func NewMambaExecutor(binary, rootPrefix string) *MambaExecutor {
	return &MambaExecutor{
		binary:     binary,
		rootPrefix: rootPrefix,
	}
}

// NewExecutorFromConfig builds a MambaExecutor from the configured layout.
func NewExecutorFromConfig(cfg *config.Config) *MambaExecutor {
	return NewMambaExecutor(cfg.BinaryPath(), cfg.RootPrefix)
}

// Execute starts the binary, waits for it and captures combined output.
func (e *MambaExecutor) Execute(ctx context.Context, args []string) (*ExecResult, error) {
	if e.binary == "" {
		return nil, errBinaryRequired
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Env = append(os.Environ(), config.RootPrefixEnv+"="+e.rootPrefix)

	logger.DebugKV(ctx, "Running micromamba", "binary", e.binary, "args", args)

	output, err := cmd.CombinedOutput()
	if err == nil {
		return &ExecResult{Output: output}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return &ExecResult{
			ExitCode: exitErr.ExitCode(),
			Output:   output,
		}, nil
	}

	return nil, fmt.Errorf("run %s: %w", e.binary, err)
}

// ExecuteChecked runs args and converts a non-zero exit into a *pyenv.SubprocessError.
func ExecuteChecked(ctx context.Context, executor Executor, args []string) (*ExecResult, error) {
	result, err := executor.Execute(ctx, args)
	if err != nil {
		return nil, err
	}

	if result.ExitCode != 0 {
		return result, &pyenv.SubprocessError{
			Args:     append([]string(nil), args...),
			ExitCode: result.ExitCode,
		}
	}

	return result, nil
}
