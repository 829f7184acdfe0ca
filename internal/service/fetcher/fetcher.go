package fetcher

import (
	"bytes"
	"context"
	"crypto"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mitchellh/go-ps"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
)

// ProcessLister returns the running processes. It matches ps.Processes.
type ProcessLister func() ([]ps.Process, error)

// Fetcher downloads, verifies and installs the micromamba executable.
type Fetcher struct {
	// httpClient retries transient failures with back off.
	httpClient *retryablehttp.Client
	// listProcesses is used to warn when the executable is replaced while running.
	listProcesses ProcessLister
	// binaryName is the file name of the installed executable in checksum mode.
	binaryName string
	// archiveBinaryPath is the slash-separated location of the executable inside an archive.
	archiveBinaryPath string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetries sets how many times a failed download is retried.
func WithRetries(retries int) Option {
	return func(f *Fetcher) {
		if retries >= 0 {
			f.httpClient.RetryMax = retries
		}
	}
}

// WithTimeout bounds a single HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryWait overrides the back off bounds between attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(f *Fetcher) {
		f.httpClient.RetryWaitMin = minWait
		f.httpClient.RetryWaitMax = maxWait
	}
}

// WithProcessLister replaces the process listing used for the in-use warning.
func WithProcessLister(lister ProcessLister) Option {
	return func(f *Fetcher) {
		if lister != nil {
			f.listProcesses = lister
		}
	}
}

// WithBinaryName overrides the installed executable name.
func WithBinaryName(name string) Option {
	return func(f *Fetcher) {
		if name != "" {
			f.binaryName = name
		}
	}
}

// WithArchiveBinaryPath overrides where the executable is expected inside an archive.
func WithArchiveBinaryPath(path string) Option {
	return func(f *Fetcher) {
		if path != "" {
			f.archiveBinaryPath = path
		}
	}
}

// New returns a Fetcher whose HTTP retry messages go to the logger in ctx.
func New(ctx context.Context, opts ...Option) *Fetcher {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryWaitMin = defaultRetryWaitMin
	httpClient.RetryWaitMax = defaultRetryWaitMax
	httpClient.RetryMax = config.DefaultRetries
	httpClient.HTTPClient.Timeout = config.DefaultTimeout

	retryLevel := zapcore.WarnLevel
	if logger.Level() == zapcore.DebugLevel {
		retryLevel = zapcore.DebugLevel
	}

	httpClient.Logger = logger.NewRetryLogger(ctx, retryLevel)

	f := &Fetcher{
		httpClient:        httpClient,
		listProcesses:     ps.Processes,
		binaryName:        config.ExecutableName(),
		archiveBinaryPath: config.ArchiveBinaryPath(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch downloads the binary from binaryURL and its digest from checksumURL,
// verifies the binary and installs it into destDir. It returns the installed path.
// The checksum file never outlives the call, and a failed verification leaves
// no new binary on disk.
func (f *Fetcher) Fetch(ctx context.Context, binaryURL, checksumURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, defaultDirMode); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	var (
		target       = filepath.Join(destDir, f.binaryName)
		stagingPath  = target + downloadSuffix
		checksumPath = target + checksumSuffix
	)

	defer removeBestEffort(ctx, checksumPath)
	defer removeBestEffort(ctx, stagingPath)

	logger.InfoKV(ctx, "Downloading executable", "url", binaryURL)

	if err := f.download(ctx, binaryURL, stagingPath); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Downloading checksum", "url", checksumURL)

	if err := f.download(ctx, checksumURL, checksumPath); err != nil {
		return "", err
	}

	expected, err := readExpectedDigest(checksumPath)
	if err != nil {
		return "", err
	}

	logger.DebugKV(ctx, "Verifying executable", "digest", expected.String())

	if err = verifyFile(stagingPath, expected); err != nil {
		return "", err
	}

	f.warnIfRunning(ctx)

	if err = f.install(stagingPath, target, expected); err != nil {
		return "", err
	}

	installed, err := fileExists(target)
	if err != nil {
		return "", err
	}

	if !installed {
		return "", fmt.Errorf("%w: %s is missing after install", pyenv.ErrDownload, target)
	}

	logger.InfoKV(ctx, "Executable installed", "path", target)

	return target, nil
}

// download stores the body of url at path. Transport failures, non-200 answers
// and a missing file afterwards are all download errors.
func (f *Fetcher) download(ctx context.Context, url, path string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", pyenv.ErrDownload, err)
	}

	response, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: get %s: %w", pyenv.ErrDownload, url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: get %s: %s", pyenv.ErrDownload, url, response.Status)
	}

	output, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, stagingFileMode)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", pyenv.ErrDownload, path, err)
	}

	_, copyErr := io.Copy(output, response.Body)
	closeErr := output.Close()

	if copyErr != nil {
		return fmt.Errorf("%w: write %s: %w", pyenv.ErrDownload, path, copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %w", pyenv.ErrDownload, path, closeErr)
	}

	exists, err := fileExists(path)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s produced no file", pyenv.ErrDownload, url)
	}

	return nil
}

// install atomically replaces target with the staged binary. go-update checks
// the digest once more against the bytes it writes.
func (f *Fetcher) install(stagingPath, target string, expected digest.Digest) error {
	data, err := os.ReadFile(filepath.Clean(stagingPath))
	if err != nil {
		return fmt.Errorf("read staged executable: %w", err)
	}

	checksum, err := hex.DecodeString(expected.Encoded())
	if err != nil {
		return fmt.Errorf("%w: decode checksum: %w", pyenv.ErrIntegrity, err)
	}

	// go-update renames the current target aside, so one has to exist.
	placeholder := false

	exists, err := fileExists(target)
	if err != nil {
		return err
	}

	if !exists {
		if err = os.WriteFile(target, nil, DefaultFileMode); err != nil {
			return fmt.Errorf("create placeholder: %w", err)
		}

		placeholder = true
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       crypto.SHA256,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		if placeholder {
			_ = os.Remove(target)
		}

		return fmt.Errorf("apply executable: %w", err)
	}

	return nil
}

// warnIfRunning logs running processes that share the executable name.
func (f *Fetcher) warnIfRunning(ctx context.Context) {
	processes, err := f.listProcesses()
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, process := range processes {
		if process.Pid() == thisProcessID || process.Executable() != f.binaryName {
			continue
		}

		pids = append(pids, process.Pid())
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "Replacing an executable that is currently running", "name", f.binaryName, "pids", pids)
	}
}
