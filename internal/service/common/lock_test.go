//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLockRoot creates the root prefix and can be re-acquired after release.
func TestLockRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "root")

	unlock, err := LockRoot(root)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, LockFilename))
	require.NoError(t, err)

	unlock()

	unlock, err = LockRoot(root)
	require.NoError(t, err)
	unlock()
}
