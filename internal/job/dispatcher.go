package job

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

var (
	// ErrWorkerTerminated means the worker process exited without sending a
	// terminal message (crash, kill, OOM).
	ErrWorkerTerminated = errors.New("worker terminated unexpectedly")

	// ErrJobTimeout means the dispatcher's deadline expired and the worker
	// was killed.
	ErrJobTimeout = errors.New("job timed out")
)

// Runner executes a job to its terminal result. Implementations decide where
// the work happens: a child process, the current process, or a queue
// consumer; the pipeline code is the same either way.
type Runner interface {
	Run(ctx context.Context, j *Job, onProgress func(int)) (json.RawMessage, error)
}

// scanBufferSize bounds a single IPC frame; completed results carry the full
// aggregated item list.
const scanBufferSize = 16 << 20

// ProcessRunner runs each job in a disposable child process so memory-heavy
// extraction work cannot block or crash the serving process. It owns the
// whole job lifecycle: temp file, spawn, IPC relay, reaping, cleanup.
type ProcessRunner struct {
	bin     string
	args    []string
	timeout time.Duration
}

// NewProcessRunner points the dispatcher at a worker binary. Extra args are
// passed before the job file path, which is always the final argument.
// A zero timeout disables the deadline.
func NewProcessRunner(bin string, timeout time.Duration, args ...string) *ProcessRunner {
	return &ProcessRunner{bin: bin, args: args, timeout: timeout}
}

func (r *ProcessRunner) Run(ctx context.Context, j *Job, onProgress func(int)) (json.RawMessage, error) {
	path, err := WriteFile(j)
	if err != nil {
		return nil, err
	}
	// Cleanup happens on every path, including timeout and crash.
	defer os.Remove(path)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.bin, append(r.args, path)...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn worker: %w", err)
	}

	slog.InfoContext(ctx, "worker spawned", "job_id", j.ID, "job_type", j.Type, "pid", cmd.Process.Pid)

	var terminal *Message
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64<<10), scanBufferSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			slog.WarnContext(ctx, "unparsable worker message", "job_id", j.ID, "error", err)
			continue
		}

		switch {
		case msg.Type == MessageProgress:
			if onProgress != nil {
				onProgress(msg.Progress)
			}
		case msg.Terminal():
			// First terminal message wins; anything after it is ignored.
			if terminal == nil {
				m := msg
				terminal = &m
			}
		}
	}

	waitErr := cmd.Wait()

	if terminal != nil {
		if terminal.Type == MessageCompleted {
			return terminal.Result, nil
		}
		return nil, fmt.Errorf("job failed: %s", terminal.Error)
	}

	if ctx.Err() == context.DeadlineExceeded {
		slog.ErrorContext(ctx, "worker deadline exceeded, killed", "job_id", j.ID)
		return nil, ErrJobTimeout
	}

	slog.ErrorContext(ctx, "worker exited without terminal message", "job_id", j.ID, "error", waitErr)
	if waitErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerTerminated, waitErr)
	}
	return nil, ErrWorkerTerminated
}

// LocalRunner executes jobs in the current process against the same handler
// registry the worker binary uses. Queue consumers and tests run this; NSQ
// already provides the process isolation there.
type LocalRunner struct {
	reg *Registry
}

func NewLocalRunner(reg *Registry) *LocalRunner {
	return &LocalRunner{reg: reg}
}

func (r *LocalRunner) Run(ctx context.Context, j *Job, onProgress func(int)) (json.RawMessage, error) {
	handler, ok := r.reg.Lookup(j.Type)
	if !ok {
		return nil, fmt.Errorf("no handler registered for job type %q", j.Type)
	}

	if onProgress == nil {
		onProgress = func(int) {}
	}

	result, err := invoke(ctx, handler, j.Payload, onProgress)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}
