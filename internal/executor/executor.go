// Package executor runs an allowed command in a subprocess and captures
// its output. It never re-audits a command before running it — safety
// decisions are the auditor's responsibility, not the executor's.
package executor

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/taajirah/sentinel/internal/decision"
)

// DefaultTimeout is the wall-clock ceiling applied when a caller doesn't
// override it per call.
const DefaultTimeout = 120 * time.Second

// Run executes the original (non-normalized) command string via the
// system shell. workdir, when non-empty, becomes the subprocess's working
// directory directly — the parent process's cwd is never touched, which
// eliminates a shared-cwd concurrency hazard. The subprocess
// runs in its own process group so a timeout or caller cancellation can
// kill the whole group, not just the shell.
func Run(ctx context.Context, originalCommand, workdir string, timeout time.Duration) decision.ExecutionResult {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", originalCommand)
	if workdir != "" {
		cmd.Dir = workdir
	}
	cmd.SysProcAttr = newProcessGroupAttr()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		killProcessGroup(cmd)
		stderr.WriteString("\n[sentinel] command timed out after " + timeout.String())
		return decision.ExecutionResult{
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			ReturnCode: -1,
			TimedOut:   true,
		}
	}

	return decision.ExecutionResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ReturnCode: exitCode(err),
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func newProcessGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// Negative pid targets the whole process group created by Setpgid.
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
