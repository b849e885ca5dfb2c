package unison

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrLaunch means the unison binary could not be started at all.
var ErrLaunch = errors.New("failed to launch unison")

const defaultGracePeriod = 3 * time.Second

// Launcher starts argv[0] with argv[1:], blocks until it exits, and returns its
// exit code. A nil error with a nonzero code is a normal, reportable failure.
type Launcher interface {
	Launch(ctx context.Context, argv []string) (int, error)
}

// ExecLauncher runs unison as a child process with the wrapper's stdio, so it
// can prompt in manual mode.
type ExecLauncher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// GracePeriod between SIGTERM and SIGKILL when the context is cancelled.
	GracePeriod time.Duration

	Logger *slog.Logger
}

// NewExecLauncher returns a launcher wired to the process's own stdio.
func NewExecLauncher(logger *slog.Logger) *ExecLauncher {
	return &ExecLauncher{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		GracePeriod: defaultGracePeriod,
		Logger:      logger,
	}
}

func (l *ExecLauncher) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *ExecLauncher) gracePeriod() time.Duration {
	if l.GracePeriod <= 0 {
		return defaultGracePeriod
	}
	return l.GracePeriod
}

// Launch implements Launcher. When ctx is cancelled the child's process tree is
// terminated and ctx.Err() is returned alongside whatever exit code it left.
func (l *ExecLauncher) Launch(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("%w: empty command", ErrLaunch)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.SysProcAttr = getSysProcAttr()
	// Bounds Wait when an orphaned grandchild keeps a stdio pipe open.
	cmd.WaitDelay = l.gracePeriod()

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	pid := cmd.Process.Pid
	l.logger().Debug("unison started", "pid", pid)

	waitCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		waitCh <- cmd.Wait()
		close(done)
	}()

	select {
	case err := <-waitCh:
		return exitCode(cmd, err), nil
	case <-ctx.Done():
		l.logger().Warn("run cancelled, stopping unison", "pid", pid)
		l.terminateTree(pid, done)
		err := <-waitCh
		return exitCode(cmd, err), ctx.Err()
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

// terminateTree sends SIGTERM to the child and its descendants, bottom-up, and
// SIGKILLs whatever is still alive once the grace period runs out.
func (l *ExecLauncher) terminateTree(pid int, done <-chan struct{}) {
	log := l.logger()

	root, err := process.NewProcess(int32(pid))
	if err != nil {
		// already gone
		return
	}

	tree, err := processTreeBottomUp(root)
	if err != nil {
		tree = []*process.Process{root}
	}

	for _, p := range tree {
		if err := p.Terminate(); err != nil {
			log.Debug("terminate unison: SIGTERM", "pid", p.Pid, "error", err)
		}
	}

	timer := time.NewTimer(l.gracePeriod())
	defer timer.Stop()

	select {
	case <-done:
		return
	case <-timer.C:
		log.Debug("terminate unison: grace period elapsed", "pid", pid)
	}

	for _, p := range tree {
		if exists, err := process.PidExists(p.Pid); err != nil || !exists {
			continue
		}
		if err := p.Kill(); err != nil {
			log.Warn("terminate unison: SIGKILL", "pid", p.Pid, "error", err)
		}
	}
}

// processTreeBottomUp lists proc's descendants before proc itself.
func processTreeBottomUp(proc *process.Process) ([]*process.Process, error) {
	children, err := proc.Children()
	if err != nil {
		return nil, fmt.Errorf("list children of pid %d: %w", proc.Pid, err)
	}

	var tree []*process.Process
	for _, child := range children {
		subtree, _ := processTreeBottomUp(child)
		tree = append(tree, subtree...)
	}
	return append(tree, proc), nil
}
