package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oshokin/mamba-runner/internal/logger"
)

const (
	// DefaultFileMode is applied to the installed executable.
	DefaultFileMode os.FileMode = 0o755

	// checksumSuffix names the detached digest next to the binary.
	checksumSuffix = ".sha256"

	// downloadSuffix names the staging file the binary is downloaded to.
	downloadSuffix = ".download"

	// archiveSuffix names the staging file an archive is downloaded to.
	archiveSuffix = ".archive"

	// stagingDirPattern is used for the extraction directory.
	stagingDirPattern = ".extract-*"

	// defaultRetryWaitMin is the first back off between HTTP attempts.
	defaultRetryWaitMin = 1 * time.Second

	// defaultRetryWaitMax caps the back off between HTTP attempts.
	defaultRetryWaitMax = 30 * time.Second

	// defaultDirMode is used for directories created under the destination.
	defaultDirMode os.FileMode = 0o755

	// stagingFileMode is used for downloaded files before installation.
	stagingFileMode os.FileMode = 0o600
)

var (
	errEmptyChecksum        = errors.New("checksum file is empty")
	errArchiveMissingBinary = errors.New("archive does not contain the executable")
)

// removeBestEffort deletes path, ignoring a missing file and logging anything else.
func removeBestEffort(ctx context.Context, path string) {
	err := os.RemoveAll(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return
	}

	logger.WarnKV(ctx, "Unable to remove transient file", "path", path, "error", err)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	return info.Mode().IsRegular(), nil
}
