package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/common"
)

const scriptExtension = ".py"

var (
	errTargetRequired      = errors.New("target must be provided")
	errEnvironmentRequired = errors.New("environment name must be provided")
	errPanic               = errors.New("script invocation panicked")
)

// Runner invokes targets inside environments through the executor.
type Runner struct {
	executor common.Executor
}

// New returns a Runner backed by executor.
func New(executor common.Executor) *Runner {
	return &Runner{executor: executor}
}

// IsScript reports whether target is run through the environment's python.
func IsScript(target string) bool {
	return strings.EqualFold(filepath.Ext(target), scriptExtension)
}

// BuildArgs returns the micromamba arguments for inv. Arguments are sanitized
// and passed one per argv element.
func BuildArgs(inv *pyenv.Invocation) ([]string, error) {
	if inv == nil || strings.TrimSpace(inv.Target) == "" {
		return nil, errTargetRequired
	}

	if inv.Environment == "" {
		return nil, errEnvironmentRequired
	}

	args := []string{"run", "-n", inv.Environment}
	if IsScript(inv.Target) {
		args = append(args, "python")
	}

	args = append(args, inv.Target)

	return append(args, SanitizeArgs(inv.Args)...), nil
}

// Run executes inv and decodes its combined output according to inv.Mode.
// A non-zero exit is not an error by itself: it is reported in Result.ExitCode.
// Every failure is returned as a *pyenv.ErrorValue.
func (r *Runner) Run(ctx context.Context, inv *pyenv.Invocation) (result *pyenv.Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = pyenv.NewErrorValue(fmt.Errorf("%w: %v", errPanic, recovered))
		}
	}()

	result, runErr := r.run(ctx, inv)
	if runErr != nil {
		logger.WarnKV(ctx, "Script invocation failed", "error", runErr)
		return nil, pyenv.NewErrorValue(runErr)
	}

	return result, nil
}

func (r *Runner) run(ctx context.Context, inv *pyenv.Invocation) (*pyenv.Result, error) {
	args, err := BuildArgs(inv)
	if err != nil {
		return nil, err
	}

	mode, err := pyenv.ParseOutputMode(string(inv.Mode))
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "env", inv.Environment, "target", inv.Target)
	logger.DebugKV(ctx, "Invoking", "command", CommandLine(args))

	execResult, err := r.executor.Execute(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", inv.Target, err)
	}

	result := &pyenv.Result{
		Output:   string(execResult.Output),
		ExitCode: execResult.ExitCode,
	}

	if execResult.ExitCode != 0 {
		logger.WarnKV(ctx, "Target exited with non-zero code", "exit_code", execResult.ExitCode)
	}

	if mode == pyenv.ModeJSON {
		if err = json.Unmarshal(bytes.TrimSpace(execResult.Output), &result.Value); err != nil {
			return nil, fmt.Errorf("%w: output of %s is not JSON: %w", pyenv.ErrDecode, inv.Target, err)
		}
	}

	return result, nil
}
