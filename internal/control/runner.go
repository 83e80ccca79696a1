package control

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner abstracts subprocess execution so controller variants can be tested
// without touching the host.
type Runner interface {
	// Run executes a command and returns stdout and stderr separately.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

	// Start launches a command without waiting for it to exit. Used for
	// application and media launches that outlive the request, so no
	// context: the process must survive the request that spawned it.
	Start(name string, args ...string) error
}

type osRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return osRunner{}
}

func (osRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (osRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the process when it exits so launches do not accumulate zombies.
	go func() { _ = cmd.Wait() }()
	return nil
}

// runCommand executes one OS call with a bounded timeout and folds the
// outcome into a Result. A non-zero exit becomes a normal failure result,
// never an error that escapes to the dispatcher.
func runCommand(ctx context.Context, r Runner, timeout time.Duration, okMessage, name string, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := r.Run(ctx, name, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(fmt.Sprintf("%s did not finish in time", name), "execution timed out")
		}
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		return fail(fmt.Sprintf("%s failed", name), detail)
	}

	res := ok(okMessage)
	res.Output = strings.TrimSpace(string(stdout))
	return res
}

// startCommand launches a long-lived process and reports only whether the
// launch itself succeeded.
func startCommand(r Runner, okMessage, name string, args ...string) Result {
	if err := r.Start(name, args...); err != nil {
		return fail(fmt.Sprintf("%s failed to start", name), err.Error())
	}
	return ok(okMessage)
}
