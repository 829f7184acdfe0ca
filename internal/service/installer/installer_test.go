package installer

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/service/common"
	"github.com/oshokin/mamba-runner/internal/testutil"
)

var errSpawn = errors.New("exec: permission denied")

// failingOn fails pip install for the named package and succeeds otherwise.
func failingOn(bad string) testutil.ExecHandler {
	return func(args []string) (*common.ExecResult, error) {
		if slices.Contains(args, bad) {
			return &common.ExecResult{ExitCode: 1, Output: []byte("ERROR: No matching distribution")}, nil
		}

		return new(common.ExecResult), nil
	}
}

// TestInstallAll_IsolatesFailures keeps going after a failed package.
func TestInstallAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeExecutor{Handler: failingOn("bad-pkg")}
	outcomes := New(fake).InstallAll(context.Background(), "env", []string{"a", "bad-pkg", "c"}, false)

	require.Len(t, outcomes, 3)
	require.Equal(t, "a", outcomes[0].Name)
	require.True(t, outcomes[0].Success)
	require.NoError(t, outcomes[0].Err)

	require.Equal(t, "bad-pkg", outcomes[1].Name)
	require.False(t, outcomes[1].Success)
	require.ErrorIs(t, outcomes[1].Err, pyenv.ErrSubprocess)

	require.Equal(t, "c", outcomes[2].Name)
	require.True(t, outcomes[2].Success)

	require.Equal(t, [][]string{
		{"run", "-n", "env", "pip", "install", "a"},
		{"run", "-n", "env", "pip", "install", "bad-pkg"},
		{"run", "-n", "env", "pip", "install", "c"},
	}, fake.Calls())
	require.Equal(t, []string{"bad-pkg"}, pyenv.Failed(outcomes))
}

// TestInstallAll_TrustedHost appends trusted-host flags for both index hosts.
func TestInstallAll_TrustedHost(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	outcomes := New(fake).InstallAll(context.Background(), "env", []string{"requests==2.32.3"}, true)

	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Success)
	require.Equal(t, [][]string{{
		"run", "-n", "env", "pip", "install", "requests==2.32.3",
		"--trusted-host", "pypi.org", "--trusted-host", "files.pythonhosted.org",
	}}, fake.Calls())
}

// TestInstallAll_BlankName fails blank names without spawning.
func TestInstallAll_BlankName(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	outcomes := New(fake).InstallAll(context.Background(), "env", []string{"", "  ", "ok"}, false)

	require.Len(t, outcomes, 3)
	require.ErrorIs(t, outcomes[0].Err, errPackageNameRequired)
	require.ErrorIs(t, outcomes[1].Err, errPackageNameRequired)
	require.True(t, outcomes[2].Success)
	require.Equal(t, 1, fake.CallCount("run"))
}

// TestInstallAll_SpawnError records spawn failures per package.
func TestInstallAll_SpawnError(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeExecutor{Handler: func([]string) (*common.ExecResult, error) {
		return nil, errSpawn
	}}
	outcomes := New(fake).InstallAll(context.Background(), "env", []string{"a", "b"}, false)

	require.Len(t, outcomes, 2)

	for _, outcome := range outcomes {
		require.False(t, outcome.Success)
		require.ErrorIs(t, outcome.Err, errSpawn)
	}

	require.Equal(t, 2, fake.CallCount("run"))
}

// TestInstallAll_Empty returns an empty, non-nil result.
func TestInstallAll_Empty(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	outcomes := New(fake).InstallAll(context.Background(), "env", nil, false)
	require.NotNil(t, outcomes)
	require.Empty(t, outcomes)
	require.Empty(t, fake.Calls())
}

// TestInstallAll_MissingEnvironment fails every package without spawning.
func TestInstallAll_MissingEnvironment(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	outcomes := New(fake).InstallAll(context.Background(), "", []string{"a"}, false)
	require.ErrorIs(t, outcomes[0].Err, errEnvironmentRequired)
	require.Empty(t, fake.Calls())
}

// TestFromOptions requires a configuration.
func TestFromOptions(t *testing.T) {
	t.Parallel()

	_, err := FromOptions(new(Options))
	require.ErrorIs(t, err, errConfigRequired)

	inst, err := FromOptions(&Options{Config: config.Default()})
	require.NoError(t, err)
	require.NotNil(t, inst)
}
