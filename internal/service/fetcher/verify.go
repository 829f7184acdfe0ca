package fetcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"

	// Register SHA-256 for digest verification and go-update.
	_ "crypto/sha256"
)

// ChecksumError describes a digest mismatch. It wraps pyenv.ErrIntegrity.
type ChecksumError struct {
	Path     string
	Expected string
	Got      string
}

// Error returns both digests for debugging.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

// Unwrap returns pyenv.ErrIntegrity so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return pyenv.ErrIntegrity }

// readExpectedDigest parses a detached checksum file. Both a bare hex digest
// and the sha256sum "digest  filename" form are accepted; hex case is ignored.
func readExpectedDigest(path string) (digest.Digest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: read checksum: %w", pyenv.ErrDownload, err)
	}

	fields := strings.Fields(strings.TrimSpace(string(contents)))
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: %w", pyenv.ErrIntegrity, errEmptyChecksum)
	}

	expected := digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(fields[0]))
	if err = expected.Validate(); err != nil {
		return "", fmt.Errorf("%w: malformed checksum %q: %w", pyenv.ErrIntegrity, fields[0], err)
	}

	return expected, nil
}

// verifyFile streams path through a verifier for expected.
func verifyFile(path string, expected digest.Digest) error {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: open download: %w", pyenv.ErrDownload, err)
	}

	defer func() {
		_ = file.Close()
	}()

	var (
		verifier = expected.Verifier()
		digester = expected.Algorithm().Digester()
	)

	if _, err = io.Copy(io.MultiWriter(verifier, digester.Hash()), file); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}

	if !verifier.Verified() {
		return &ChecksumError{
			Path:     path,
			Expected: expected.Encoded(),
			Got:      digester.Digest().Encoded(),
		}
	}

	return nil
}
