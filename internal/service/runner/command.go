package runner

import (
	"errors"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/service/common"
)

// Options are inputs accepted by the runner entry point.
type Options struct {
	// Config carries the root prefix.
	Config *config.Config
	// Executor overrides the os/exec backed executor, mostly for tests.
	Executor common.Executor
}

var errConfigRequired = errors.New("configuration is required")

// FromOptions builds a Runner bound to the configured root prefix.
func FromOptions(opts *Options) (*Runner, error) {
	if opts == nil || opts.Config == nil {
		return nil, errConfigRequired
	}

	if opts.Executor != nil {
		return New(opts.Executor), nil
	}

	return New(common.NewExecutorFromConfig(opts.Config)), nil
}
