package curl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/loykin/mdmrepo/internal/transport"
)

// Runner launches one process and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// ExecRunner runs argv with os/exec, capturing stdout and stderr.
type ExecRunner struct{}

// Run returns a Result for any process that started, whatever its exit code.
// The error is non-nil only when the process could not be launched.
func (ExecRunner) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, &transport.ConfigurationError{Message: "empty command"}
	}
	// #nosec G204 -- argv is assembled by Builder from a located curl binary
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, &transport.TransportError{Message: "failed to run curl", Err: err}
}
