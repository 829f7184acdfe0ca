//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fluxcd/pkg/lockedfile"

	"github.com/oshokin/mamba-runner/internal/config"
)

// LockFilename is created inside the root prefix to serialize mutations.
const LockFilename = ".mamba-runner.lock"

// LockRoot acquires an exclusive cross-process lock on rootPrefix.
// The returned function releases it.
func LockRoot(rootPrefix string) (func(), error) {
	if err := os.MkdirAll(rootPrefix, config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create root prefix: %w", err)
	}

	mutex := lockedfile.MutexAt(filepath.Join(rootPrefix, LockFilename))

	unlock, err := mutex.Lock()
	if err != nil {
		return nil, fmt.Errorf("lock root prefix: %w", err)
	}

	return unlock, nil
}
