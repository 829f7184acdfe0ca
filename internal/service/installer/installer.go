package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/common"
)

// trustedHosts are the package index hosts exempted from TLS verification.
var trustedHosts = []string{"pypi.org", "files.pythonhosted.org"}

var (
	errPackageNameRequired = errors.New("package name must not be blank")
	errEnvironmentRequired = errors.New("environment name must be provided")
)

// Installer runs pip inside environments through the executor.
type Installer struct {
	executor common.Executor
}

// New returns an Installer backed by executor.
func New(executor common.Executor) *Installer {
	return &Installer{executor: executor}
}

// InstallAll installs packages into env strictly in order, one subprocess per
// package. A failure is recorded in its outcome and never stops the batch.
// The result has one entry per input package, in input order.
func (i *Installer) InstallAll(
	ctx context.Context,
	env string,
	packages []string,
	trustedHost bool,
) []pyenv.PackageInstallOutcome {
	ctx = logger.WithKV(ctx, "env", env)

	outcomes := make([]pyenv.PackageInstallOutcome, 0, len(packages))

	for _, pkg := range packages {
		err := i.install(ctx, env, pkg, trustedHost)
		if err != nil {
			logger.WarnKV(ctx, "Package installation failed", "package", pkg, "error", err)
		} else {
			logger.InfoKV(ctx, "Package installed", "package", pkg)
		}

		outcomes = append(outcomes, pyenv.PackageInstallOutcome{
			Name:    pkg,
			Success: err == nil,
			Err:     err,
		})
	}

	return outcomes
}

func (i *Installer) install(ctx context.Context, env, pkg string, trustedHost bool) error {
	if env == "" {
		return errEnvironmentRequired
	}

	if strings.TrimSpace(pkg) == "" {
		return errPackageNameRequired
	}

	args := []string{"run", "-n", env, "pip", "install", pkg}
	if trustedHost {
		for _, host := range trustedHosts {
			args = append(args, "--trusted-host", host)
		}
	}

	result, err := common.ExecuteChecked(ctx, i.executor, args)
	if result != nil && len(result.Output) > 0 {
		logger.DebugKV(ctx, "pip output", "package", pkg, "output", string(result.Output))
	}

	if err != nil {
		return fmt.Errorf("install %s: %w", pkg, err)
	}

	return nil
}
