//go:build !windows

package launcher

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcAttributes places the child in its own process group so that
// forwarded signals reach the whole server process tree, not just the
// interpreter.
func setProcAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// notifyTerminationSignals subscribes c to SIGINT and SIGTERM.
func notifyTerminationSignals(c chan os.Signal) {
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
}

// terminationSignal is the signal Terminate sends before escalating.
func terminationSignal() os.Signal { return syscall.SIGTERM }

// supportsStatusChannel reports whether extra file descriptors can be
// inherited by the child. Always true on Unix.
func supportsStatusChannel() bool { return true }

// forwardSignal relays sig to the child's process group.
func (s *Supervisor) forwardSignal(sig os.Signal) {
	s.signalChild(sig)
}

// signalChild delivers sig to the child's process group, falling back to the
// process itself if the group is gone.
func (s *Supervisor) signalChild(sig os.Signal) error {
	if s.Cmd.Process == nil {
		return nil
	}

	sysSig, ok := sig.(syscall.Signal)
	if !ok {
		return s.Cmd.Process.Signal(sig)
	}

	// Negative pid addresses the process group.
	if err := unix.Kill(-s.Cmd.Process.Pid, unix.Signal(sysSig)); err != nil {
		return s.Cmd.Process.Signal(sig)
	}
	return nil
}

// exitCode maps an exited child to the code the parent should exit with.
// Signal deaths follow the 128+signal shell convention.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}
