package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/repository/mambarc"
	"github.com/oshokin/mamba-runner/internal/service/common"
)

// Options are inputs accepted by the fetcher entry point.
type Options struct {
	// Config carries the root prefix and artifact sources.
	Config *config.Config
	// Extra customizes the Fetcher, mostly for tests.
	Extra []Option
}

var errConfigRequired = errors.New("configuration is required")

// Run acquires the executable in the configured mode under the root prefix
// lock, then points the package cache inside the root prefix. It returns the
// installed executable path.
func Run(ctx context.Context, opts *Options) (string, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "fetcher")

	if opts == nil || opts.Config == nil {
		return "", errConfigRequired
	}

	cfg := opts.Config

	unlock, err := common.LockRoot(cfg.RootPrefix)
	if err != nil {
		return "", err
	}

	defer unlock()

	fetcherOptions := append([]Option{
		WithRetries(cfg.Retries),
		WithTimeout(cfg.Timeout),
	}, opts.Extra...)

	f := New(ctx, fetcherOptions...)

	var path string

	switch cfg.Artifact.Mode {
	case config.ModeArchive:
		path, err = f.FetchArchive(ctx, cfg.Artifact.ArchiveURL, cfg.RootPrefix)
	default:
		path, err = f.Fetch(ctx, cfg.Artifact.URL, cfg.Artifact.ChecksumURL, cfg.RootPrefix)
	}

	if err != nil {
		logger.ErrorKV(ctx, "Fetching micromamba failed", "error", err)
		return "", err
	}

	if err = os.MkdirAll(cfg.PackageCacheDir(), config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create package cache: %w", err)
	}

	repo := mambarc.NewFileRepository(cfg.RootPrefix)
	if err = repo.Save(ctx, mambarc.ForConfig(cfg)); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Root prefix is ready", "root_prefix", cfg.RootPrefix, "mambarc", repo.Path())

	return path, nil
}
