package registry

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/common"
)

var (
	errNameRequired         = errors.New("environment name must be provided")
	errInvalidPythonVersion = errors.New("invalid python version")
)

// Registry manages environments through the external executable.
type Registry struct {
	// executor runs micromamba.
	executor common.Executor
	// channel is passed to create.
	channel string
}

// Option configures a Registry.
type Option func(*Registry)

// WithChannel overrides the conda channel used by Create.
func WithChannel(channel string) Option {
	return func(r *Registry) {
		if channel != "" {
			r.channel = channel
		}
	}
}

// New returns a Registry backed by executor.
func New(executor common.Executor, opts ...Option) *Registry {
	r := &Registry{
		executor: executor,
		channel:  config.DefaultChannel,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// List returns the names of registered environments in listing order.
// Header rows, separators and unnamed prefix-only rows are skipped.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	output, err := r.listOutput(ctx)
	if err != nil {
		return nil, err
	}

	var names []string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "Name" {
			continue
		}

		first := []rune(fields[0])[0]
		if !unicode.IsLetter(first) && !unicode.IsDigit(first) && first != '_' {
			continue
		}

		names = append(names, fields[0])
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan environment list: %w", err)
	}

	return names, nil
}

// Exists reports whether an environment called name is registered. A line
// matches only when name is its whole first token, so "env" never matches
// "environment2".
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, errNameRequired
	}

	output, err := r.listOutput(ctx)
	if err != nil {
		return false, err
	}

	return listingContains(output, name), nil
}

// Create creates an environment with the pinned Python version and pip.
// When TrustedHost is set, TLS verification is disabled for this step.
func (r *Registry) Create(ctx context.Context, env pyenv.Environment) error {
	env = env.WithDefaults()
	if env.Name == "" {
		return errNameRequired
	}

	if _, err := semver.NewVersion(env.PythonVersion); err != nil {
		return fmt.Errorf("%w %q: %w", errInvalidPythonVersion, env.PythonVersion, err)
	}

	args := []string{"create", "-n", env.Name, "--yes"}
	if env.TrustedHost {
		args = append(args, "--ssl-verify", "False")
	}

	args = append(args, "python="+env.PythonVersion, "pip", "-c", r.channel)

	logger.InfoKV(ctx, "Creating environment",
		"env", env.Name, "python", env.PythonVersion, "trusted_host", env.TrustedHost)

	result, err := common.ExecuteChecked(ctx, r.executor, args)
	logOutput(ctx, "create", result)

	if err != nil {
		return fmt.Errorf("create environment %s: %w", env.Name, err)
	}

	return nil
}

// Remove deletes the environment and then cleans the package cache.
// The clean step is global: it prunes cache entries other environments may
// share. When removal fails, the clean step is not attempted.
func (r *Registry) Remove(ctx context.Context, name string) error {
	if name == "" {
		return errNameRequired
	}

	logger.WarnKV(ctx, "Removing an environment also cleans the package cache shared by all environments",
		"env", name)

	result, err := common.ExecuteChecked(ctx, r.executor, []string{"env", "remove", "-n", name, "--yes"})
	logOutput(ctx, "env remove", result)

	if err != nil {
		return fmt.Errorf("remove environment %s: %w", name, err)
	}

	result, err = common.ExecuteChecked(ctx, r.executor, []string{"clean", "--all", "--yes"})
	logOutput(ctx, "clean", result)

	if err != nil {
		return fmt.Errorf("clean package cache: %w", err)
	}

	return nil
}

func (r *Registry) listOutput(ctx context.Context) ([]byte, error) {
	result, err := common.ExecuteChecked(ctx, r.executor, []string{"env", "list"})
	if err != nil {
		return nil, fmt.Errorf("list environments: %w", err)
	}

	return result.Output, nil
}

// listingContains searches the listing line by line for name as a whole token
// at the start of a line, after optional whitespace.
func listingContains(output []byte, name string) bool {
	pattern := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(name) + `(?:[ \t\r]|$)`)

	return pattern.Match(output)
}

// logOutput records subprocess output for diagnostics without inspecting it.
func logOutput(ctx context.Context, step string, result *common.ExecResult) {
	if result == nil || len(result.Output) == 0 {
		return
	}

	logger.DebugKV(ctx, "micromamba output", "step", step, "exit_code", result.ExitCode,
		"output", string(result.Output))
}
