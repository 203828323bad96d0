package environment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var ErrTimeout = errors.New("command timed out")

// Run executes argv without a shell. A command that starts and exits is
// reported through the ActionResult, whatever its exit code; the error is
// reserved for commands that could not run or did not finish in time.
func Run(ctx context.Context, timeout time.Duration, argv []string) (ActionResult, error) {
	if len(argv) == 0 {
		return ActionResult{}, ErrUnsupported
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, argv[0], argv[1:]...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if cctx.Err() == context.DeadlineExceeded {
		return ActionResult{}, fmt.Errorf("%s: %w", argv[0], ErrTimeout)
	}

	result := ActionResult{Output: strings.TrimSpace(output.String())}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return ActionResult{}, fmt.Errorf("error running %q: %w", argv[0], err)
		}
		result.Status = exitErr.ExitCode()
	}
	return result, nil
}
