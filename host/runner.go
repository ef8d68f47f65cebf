package host

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner abstracts command execution so collaborator clients can be
// tested with canned output instead of a live host.
type Runner interface {
	// Run executes the command and returns its stdout. Stderr is
	// folded into the error on failure.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunCombined executes the command and returns stdout and stderr
	// interleaved, for commands that split useful output across both.
	RunCombined(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner executes commands on the host.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s %v failed: %w: %s", name, args, err, stderr.String())
		}
		return nil, fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return stdout.Bytes(), nil
}

func (OSRunner) RunCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return out, nil
}
