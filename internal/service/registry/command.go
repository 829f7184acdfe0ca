package registry

import (
	"errors"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/service/common"
)

// Options are inputs accepted by the registry entry point.
type Options struct {
	// Config carries the root prefix and the conda channel.
	Config *config.Config
	// Executor overrides the os/exec backed executor, mostly for tests.
	Executor common.Executor
}

var errConfigRequired = errors.New("configuration is required")

// FromOptions builds a Registry bound to the configured root prefix.
func FromOptions(opts *Options) (*Registry, error) {
	if opts == nil || opts.Config == nil {
		return nil, errConfigRequired
	}

	executor := opts.Executor
	if executor == nil {
		executor = common.NewExecutorFromConfig(opts.Config)
	}

	return New(executor, WithChannel(opts.Config.Channel)), nil
}
