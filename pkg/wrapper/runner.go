package wrapper

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KilledByTimeout is the sentinel exit code reported when the wall-clock
// timeout forcibly terminates the process.
const KilledByTimeout = -9

// errorLineLimit caps the number of diagnostic stderr lines kept per run.
const errorLineLimit = 10

// RunOptions configures one process invocation.
type RunOptions struct {
	// Timeout kills the process after a wall-clock interval; zero disables.
	Timeout time.Duration

	// OnOutput receives every decoded stderr line as it arrives.
	OnOutput func(line string)

	// CaptureStdout pipes and returns the process stdout.
	CaptureStdout bool

	// WorkDir is the process working directory, empty for inherited.
	WorkDir string

	// Logger receives run lifecycle records; slog.Default() when nil.
	Logger *slog.Logger
}

// RunResult reports one finished invocation.
type RunResult struct {
	// ExitCode is the process exit status, or KilledByTimeout.
	ExitCode int
	// Stdout is the captured standard output when piped.
	Stdout string
	// ErrorLines holds stderr lines that look like transcoder errors,
	// capped at errorLineLimit.
	ErrorLines []string
}

// Run spawns the argument list as a child process, streams decoded stderr
// lines to the caller's handler and waits for completion. A non-zero exit
// code is reported in the result, not as an error; errors are reserved for
// failures to spawn or stream.
func Run(ctx context.Context, args []string, opts *RunOptions) (*RunResult, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("run: empty argument list")
	}
	if opts == nil {
		opts = &RunOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()[:8]
	logger = logger.With("run_id", runID, "bin", args[0])

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = opts.WorkDir

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("run: stderr pipe: %w", err)
	}
	var stdout bytes.Buffer
	if opts.CaptureStdout {
		cmd.Stdout = &stdout
	}

	logger.Debug("starting process", "args", strings.Join(args[1:], " "))
	started := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("run: start: %w", err)
	}

	result := &RunResult{}
	stderrDone := make(chan error, 1)
	go func() {
		stderrDone <- streamLines(stderr, opts.OnOutput, result)
	}()

	// Per os/exec docs, the stderr pipe must be fully drained before Wait,
	// which closes the pipe and would race with the reader goroutine.
	streamErr := <-stderrDone
	waitErr := cmd.Wait()
	if streamErr != nil && waitErr == nil {
		waitErr = streamErr
	}

	result.Stdout = stdout.String()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = KilledByTimeout
		logger.Warn("process killed by timeout", "elapsed", time.Since(started))
	case waitErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("run: %w", waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
		logger.Warn("process failed", "exit_code", result.ExitCode,
			"elapsed", time.Since(started))
	default:
		logger.Debug("process finished", "elapsed", time.Since(started))
	}
	return result, nil
}

// streamLines delivers decoded stderr lines to the handler and retains
// error-looking lines for diagnostics.
func streamLines(reader io.Reader, handler func(string), result *RunResult) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if handler != nil {
			handler(line)
		}
		if isErrorLine(line) && len(result.ErrorLines) < errorLineLimit {
			result.ErrorLines = append(result.ErrorLines, line)
		}
	}
	return scanner.Err()
}

// isErrorLine detects transcoder diagnostics worth surfacing to the caller.
func isErrorLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "error") ||
		strings.Contains(lower, "invalid") ||
		strings.Contains(lower, "no such file")
}
