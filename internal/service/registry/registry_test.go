package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/service/common"
	"github.com/oshokin/mamba-runner/internal/testutil"
)

const envListing = `  Name          Active  Path
────────────────────────────────────────────────────────
  base                  /opt/root
  environment2          /opt/root/envs/environment2
  analytics     *       /opt/root/envs/analytics
                        /somewhere/else/unnamed
`

var errSpawn = errors.New("exec: no such file")

// TestList_ParsesNames skips headers, separators and unnamed rows.
func TestList_ParsesNames(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeExecutor{Handler: testutil.Output(0, envListing)}
	names, err := New(fake).List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"base", "environment2", "analytics"}, names)
	require.Equal(t, [][]string{{"env", "list"}}, fake.Calls())
}

// TestExists_MatchesWholeToken checks that prefixes of other names do not match.
func TestExists_MatchesWholeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		listing string
		env     string
		want    bool
	}{
		{name: "prefix of another name", listing: envListing, env: "env", want: false},
		{name: "exact name", listing: envListing, env: "environment2", want: true},
		{name: "surrounded by whitespace", listing: "  env  \n", env: "env", want: true},
		{name: "name at end of line", listing: "base\nenv", env: "env", want: true},
		{name: "crlf listing", listing: "  env\r\n", env: "env", want: true},
		{name: "regex metacharacters", listing: "  a.b  /p\n", env: "a+b", want: false},
		{name: "dotted name", listing: "  a.b  /p\n", env: "a.b", want: true},
		{name: "empty listing", listing: "", env: "env", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &testutil.FakeExecutor{Handler: testutil.Output(0, tt.listing)}
			got, err := New(fake).Exists(context.Background(), tt.env)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestExists_ListFailure propagates a failed listing as an error.
func TestExists_ListFailure(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeExecutor{Handler: testutil.Output(1, "boom")}
	got, err := New(fake).Exists(context.Background(), "env")
	require.False(t, got)
	require.ErrorIs(t, err, pyenv.ErrSubprocess)

	_, err = New(fake).Exists(context.Background(), "")
	require.ErrorIs(t, err, errNameRequired)
}

// TestCreate_Arguments verifies the command line with and without trusted host.
func TestCreate_Arguments(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	reg := New(fake, WithChannel("my-channel"))

	require.NoError(t, reg.Create(context.Background(), pyenv.Environment{Name: "py", PythonVersion: "3.12"}))
	require.NoError(t, reg.Create(context.Background(), pyenv.Environment{Name: "tls", TrustedHost: true}))

	require.Equal(t, [][]string{
		{"create", "-n", "py", "--yes", "python=3.12", "pip", "-c", "my-channel"},
		{"create", "-n", "tls", "--yes", "--ssl-verify", "False", "python=" + pyenv.DefaultPythonVersion, "pip", "-c", "my-channel"},
	}, fake.Calls())
}

// TestCreate_ExitCodeDecides ignores output and trusts only the exit status.
func TestCreate_ExitCodeDecides(t *testing.T) {
	t.Parallel()

	ok := &testutil.FakeExecutor{Handler: testutil.Output(0, "error: this text is ignored")}
	require.NoError(t, New(ok).Create(context.Background(), pyenv.Environment{Name: "a"}))

	failed := &testutil.FakeExecutor{Handler: testutil.Output(2, "all good")}
	err := New(failed).Create(context.Background(), pyenv.Environment{Name: "a"})
	require.ErrorIs(t, err, pyenv.ErrSubprocess)

	var subErr *pyenv.SubprocessError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, 2, subErr.ExitCode)

	spawn := &testutil.FakeExecutor{Handler: func([]string) (*common.ExecResult, error) {
		return nil, errSpawn
	}}
	require.ErrorIs(t, New(spawn).Create(context.Background(), pyenv.Environment{Name: "a"}), errSpawn)
}

// TestCreate_RejectsInvalidInput never spawns for bad names or versions.
func TestCreate_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	reg := New(fake)

	require.ErrorIs(t, reg.Create(context.Background(), pyenv.Environment{}), errNameRequired)
	require.ErrorIs(t,
		reg.Create(context.Background(), pyenv.Environment{Name: "a", PythonVersion: "three"}),
		errInvalidPythonVersion)
	require.Empty(t, fake.Calls())
}

// TestRemove_CleansAfterRemoval runs remove then clean in that order.
func TestRemove_CleansAfterRemoval(t *testing.T) {
	t.Parallel()

	fake := new(testutil.FakeExecutor)
	require.NoError(t, New(fake).Remove(context.Background(), "old"))
	require.Equal(t, [][]string{
		{"env", "remove", "-n", "old", "--yes"},
		{"clean", "--all", "--yes"},
	}, fake.Calls())
}

// TestRemove_SkipsCleanOnFailure never cleans when removal fails.
func TestRemove_SkipsCleanOnFailure(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeExecutor{Handler: testutil.Output(1, "no such environment")}
	err := New(fake).Remove(context.Background(), "missing")
	require.ErrorIs(t, err, pyenv.ErrSubprocess)
	require.Equal(t, 1, fake.CallCount("env", "remove"))
	require.Zero(t, fake.CallCount("clean"))
}

// TestRemove_CleanFailure reports a failed clean step.
func TestRemove_CleanFailure(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeExecutor{Handler: func(args []string) (*common.ExecResult, error) {
		if args[0] == "clean" {
			return &common.ExecResult{ExitCode: 3}, nil
		}

		return new(common.ExecResult), nil
	}}

	err := New(fake).Remove(context.Background(), "old")
	require.ErrorIs(t, err, pyenv.ErrSubprocess)
	require.Equal(t, 1, fake.CallCount("clean"))
}

// TestFromOptions uses the configured channel.
func TestFromOptions(t *testing.T) {
	t.Parallel()

	_, err := FromOptions(nil)
	require.ErrorIs(t, err, errConfigRequired)

	fake := new(testutil.FakeExecutor)
	reg, err := FromOptions(&Options{
		Config:   &config.Config{Channel: "bioconda"},
		Executor: fake,
	})
	require.NoError(t, err)
	require.NoError(t, reg.Create(context.Background(), pyenv.Environment{Name: "bio"}))
	require.Equal(t, []string{"-c", "bioconda"}, fake.Calls()[0][len(fake.Calls()[0])-2:])
}
