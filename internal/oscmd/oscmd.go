// Package oscmd wraps external OS commands behind a narrow, timeout-bounded seam.
package oscmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes an external command and returns its standard output.
// Implementations must bound execution time; callers never wait forever
// on a wedged system utility.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// RunInput is Run with data piped to the command's standard input.
	RunInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands via os/exec with a per-call timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewRunner creates an ExecRunner with the given per-command timeout.
func NewRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ExecRunner{Timeout: timeout}
}

// Run executes the command and returns stdout. Stderr is folded into the
// returned error so call sites can log a single line.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.RunInput(ctx, nil, name, args...)
}

// RunInput executes the command with input on stdin and returns stdout.
func (r *ExecRunner) RunInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.Bytes(), fmt.Errorf("%s timed out after %s", name, r.Timeout)
		}
		return stdout.Bytes(), fmt.Errorf("%s failed: %w: %s", name, err, stderr.String())
	}

	return stdout.Bytes(), nil
}
