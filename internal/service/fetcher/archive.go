package fetcher

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fluxcd/pkg/tar"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
)

var (
	// gzipMagicHeader are the bytes found at the start of gzip files.
	gzipMagicHeader = []byte{'\x1f', '\x8b'}
	// bzip2MagicHeader are the bytes found at the start of bzip2 files.
	bzip2MagicHeader = []byte{'B', 'Z', 'h'}
)

// FetchArchive downloads a compressed archive from archiveURL and installs the
// executable it contains under destDir, keeping the archive's relative layout
// (bin/micromamba or Library/bin/micromamba.exe). No checksum is published for
// archives, so the presence of the executable after extraction is the success
// criterion. The archive and every other extracted file are always removed.
func (f *Fetcher) FetchArchive(ctx context.Context, archiveURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, defaultDirMode); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	archivePath := filepath.Join(destDir, f.binaryName+archiveSuffix)
	defer removeBestEffort(ctx, archivePath)

	logger.InfoKV(ctx, "Downloading archive", "url", archiveURL)

	if err := f.download(ctx, archiveURL, archivePath); err != nil {
		return "", err
	}

	stagingDir, err := os.MkdirTemp(destDir, stagingDirPattern)
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	defer removeBestEffort(ctx, stagingDir)

	logger.DebugKV(ctx, "Extracting archive", "archive", archivePath, "staging", stagingDir)

	if err = extractArchive(archivePath, stagingDir); err != nil {
		return "", err
	}

	relativePath := filepath.FromSlash(f.archiveBinaryPath)
	extracted := filepath.Join(stagingDir, relativePath)

	present, err := fileExists(extracted)
	if err != nil {
		return "", err
	}

	if !present {
		return "", fmt.Errorf("%w: %w: %s", pyenv.ErrIntegrity, errArchiveMissingBinary, f.archiveBinaryPath)
	}

	target := filepath.Join(destDir, relativePath)
	if err = os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return "", fmt.Errorf("create executable directory: %w", err)
	}

	f.warnIfRunning(ctx)

	// Rename within destDir keeps the replacement atomic.
	if err = os.Rename(extracted, target); err != nil {
		return "", fmt.Errorf("install executable: %w", err)
	}

	if err = os.Chmod(target, DefaultFileMode); err != nil {
		return "", fmt.Errorf("chmod executable: %w", err)
	}

	logger.InfoKV(ctx, "Executable installed", "path", target)

	return target, nil
}

// extractArchive unpacks a gzip, bzip2 or plain tar archive into dir.
func extractArchive(archivePath, dir string) error {
	file, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("%w: open archive: %w", pyenv.ErrDownload, err)
	}

	defer func() {
		_ = file.Close()
	}()

	reader := bufio.NewReader(file)

	header, err := reader.Peek(len(bzip2MagicHeader))
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read archive header: %w", err)
	}

	switch {
	case bytes.HasPrefix(header, gzipMagicHeader):
		err = tar.Untar(reader, dir, tar.WithMaxUntarSize(-1), tar.WithSkipSymlinks())
	case bytes.HasPrefix(header, bzip2MagicHeader):
		err = tar.Untar(bzip2.NewReader(reader), dir,
			tar.WithMaxUntarSize(-1), tar.WithSkipSymlinks(), tar.WithSkipGzip())
	default:
		err = tar.Untar(reader, dir, tar.WithMaxUntarSize(-1), tar.WithSkipSymlinks(), tar.WithSkipGzip())
	}

	if err != nil {
		return fmt.Errorf("%w: extract archive: %w", pyenv.ErrIntegrity, err)
	}

	return nil
}
