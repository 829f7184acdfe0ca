package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/oshokin/mamba-runner/internal/service/common"
)

// ExecHandler decides the outcome of a single fake invocation.
type ExecHandler func(args []string) (*common.ExecResult, error)

// FakeExecutor records every call and answers through Handler.
// A nil Handler succeeds with empty output.
type FakeExecutor struct {
	Handler ExecHandler

	mu    sync.Mutex
	calls [][]string
}

// Execute implements common.Executor.
func (f *FakeExecutor) Execute(_ context.Context, args []string) (*common.ExecResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(args))
	f.mu.Unlock()

	if f.Handler == nil {
		return new(common.ExecResult), nil
	}

	return f.Handler(args)
}

// Calls returns a copy of the recorded argument vectors.
func (f *FakeExecutor) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([][]string, len(f.calls))
	for i, call := range f.calls {
		result[i] = slices.Clone(call)
	}

	return result
}

// CallCount returns how many calls started with prefix.
func (f *FakeExecutor) CallCount(prefix ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0

	for _, call := range f.calls {
		if len(call) >= len(prefix) && slices.Equal(call[:len(prefix)], prefix) {
			count++
		}
	}

	return count
}

// Output returns a handler that always exits with code and prints output.
func Output(code int, output string) ExecHandler {
	return func([]string) (*common.ExecResult, error) {
		return &common.ExecResult{ExitCode: code, Output: []byte(output)}, nil
	}
}
