//go:build windows

package launcher

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

func setProcAttributes(cmd *exec.Cmd) {}

// notifyTerminationSignals subscribes c to the interrupt signals Windows
// delivers (Ctrl+C and Ctrl+Break arrive as os.Interrupt).
func notifyTerminationSignals(c chan os.Signal) {
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
}

func terminationSignal() os.Signal { return os.Kill }

// supportsStatusChannel reports whether extra file descriptors can be
// inherited by the child. ExtraFiles is not supported on Windows.
func supportsStatusChannel() bool { return false }

// forwardSignal relays a termination request to the child. Windows has no
// cross-process signals, so anything beyond a console interrupt kills the
// child outright.
func (s *Supervisor) forwardSignal(sig os.Signal) {
	s.signalChild(sig)
}

func (s *Supervisor) signalChild(sig os.Signal) error {
	if s.Cmd.Process == nil {
		return nil
	}
	if sig == os.Interrupt {
		if err := s.Cmd.Process.Signal(sig); err == nil {
			return nil
		}
	}
	return s.Cmd.Process.Kill()
}

func exitCode(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
