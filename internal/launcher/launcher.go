// Package launcher supervises the Python MCP server process: it spawns the
// virtual environment's interpreter with inherited stdio, relays SIGINT and
// SIGTERM to the child, and propagates the child's exit code. There is no
// restart-on-crash and no health checking; the launcher's job ends when the
// child's does.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"time"
)

// EnvStatusFD names the environment variable carrying the readiness channel
// file descriptor number to the child. A child that does not implement the
// handshake simply ignores it.
const EnvStatusFD = "APARAVI_STATUS_FD"

// DefaultGracePeriod is how long Terminate waits after SIGTERM before
// escalating to SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// Options configures a supervised server process.
type Options struct {
	// PythonPath is the interpreter to run, normally the venv's python.
	PythonPath string

	// Script is the server entry point (e.g. mcp-server.py).
	Script string

	// Args are extra arguments appended after the script.
	Args []string

	// Env holds environment overrides appended to the parent's environment.
	// The parent environment, API keys included, is always inherited.
	Env map[string]string

	// Dir is the working directory for the child; empty means inherit.
	Dir string

	// GracePeriod overrides DefaultGracePeriod for Terminate.
	GracePeriod time.Duration

	// Readiness enables the optional status channel. Unix only; ignored
	// elsewhere.
	Readiness bool
}

// Supervisor is a running server process. Standard streams are inherited
// from the parent, so the supervisor carries no I/O of its own beyond the
// optional status channel.
type Supervisor struct {
	// Cmd is the underlying command, exposed for tests and inspection.
	Cmd *exec.Cmd

	grace    time.Duration
	ready    chan struct{}
	faults   chan *Fault
	signals  chan os.Signal
	done     chan struct{}
	stopOnce sync.Once
}

// stopRelaying ends signal forwarding once the child has been reaped.
func (s *Supervisor) stopRelaying() {
	s.stopOnce.Do(func() {
		close(s.done)
		signal.Stop(s.signals)
	})
}

// Start spawns the server process and begins relaying termination signals
// to it. The returned Supervisor must be Wait()ed to reap the child.
func Start(opts Options) (*Supervisor, error) {
	if opts.PythonPath == "" {
		return nil, errors.New("launcher: python path is required")
	}
	if opts.Script == "" {
		return nil, errors.New("launcher: server script is required")
	}

	args := append([]string{"-u", opts.Script}, opts.Args...)
	cmd := exec.Command(opts.PythonPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = opts.Dir

	cmd.Env = os.Environ()
	for key, value := range opts.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	setProcAttributes(cmd)

	sup := &Supervisor{
		Cmd:    cmd,
		grace:  opts.GracePeriod,
		ready:  make(chan struct{}, 1),
		faults: make(chan *Fault, 1),
		done:   make(chan struct{}),
	}
	if sup.grace <= 0 {
		sup.grace = DefaultGracePeriod
	}

	var statusWriter *os.File
	if opts.Readiness && supportsStatusChannel() {
		reader, writer, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("launcher: creating status pipe: %v", err)
		}
		statusWriter = writer

		// The write end lands at fd 3 in the child (after stdio 0-2).
		cmd.ExtraFiles = append(cmd.ExtraFiles, writer)
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%d", EnvStatusFD, 3+len(cmd.ExtraFiles)-1))

		go readStatus(NewFrameTransport(reader, nil), MsgpackSerializer{}, sup.ready, sup.faults)
	}

	if err := cmd.Start(); err != nil {
		if statusWriter != nil {
			statusWriter.Close()
		}
		return nil, fmt.Errorf("launcher: starting %s: %v", opts.Script, err)
	}

	// The child owns the write end now; the parent's copy must close so the
	// reader sees EOF when the child exits without writing.
	if statusWriter != nil {
		statusWriter.Close()
	}

	sup.signals = make(chan os.Signal, 1)
	notifyTerminationSignals(sup.signals)
	go sup.relaySignals()

	return sup, nil
}

// relaySignals forwards termination signals to the child until Wait reaps it.
func (s *Supervisor) relaySignals() {
	for {
		select {
		case sig := <-s.signals:
			s.forwardSignal(sig)
		case <-s.done:
			return
		}
	}
}

// WaitReady blocks until the child reports ready on the status channel, a
// fault arrives, the channel closes (the child skipped the handshake, which
// counts as ready), or the timeout elapses.
func (s *Supervisor) WaitReady(timeout time.Duration) error {
	select {
	case _, ok := <-s.ready:
		if !ok {
			// Handshake ended without an explicit ready; check whether a
			// fault raced in before treating it as success.
			select {
			case fault := <-s.faults:
				return fmt.Errorf("server failed to start: %s", fault.Error())
			default:
			}
		}
		return nil
	case fault := <-s.faults:
		return fmt.Errorf("server failed to start: %s", fault.Error())
	case <-time.After(timeout):
		return fmt.Errorf("server not ready after %s", timeout)
	}
}

// Ready returns the channel signalled when the child reports readiness.
func (s *Supervisor) Ready() <-chan struct{} { return s.ready }

// Faults returns the channel carrying startup faults from the child.
func (s *Supervisor) Faults() <-chan *Fault { return s.faults }

// Wait blocks until the child exits and returns the code the parent process
// should exit with. A child killed by a signal maps to 128+signal on Unix,
// following the shell convention.
func (s *Supervisor) Wait() (int, error) {
	err := s.Cmd.Wait()
	s.stopRelaying()

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitCode(exitErr), nil
	}
	return 1, err
}

// Terminate asks the child to exit with SIGTERM and escalates to SIGKILL
// after the grace period. Returns nil if the child was not running.
func (s *Supervisor) Terminate() error {
	if s.Cmd.Process == nil {
		return nil
	}

	if err := s.signalChild(terminationSignal()); err != nil {
		return err
	}

	waited := make(chan error, 1)
	go func() { waited <- s.Cmd.Wait() }()

	select {
	case <-time.After(s.grace):
		if err := s.Cmd.Process.Kill(); err != nil {
			return err
		}
		<-waited
		s.stopRelaying()
		return nil
	case err := <-waited:
		s.stopRelaying()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Exiting on SIGTERM is the expected outcome here.
			return nil
		}
		return err
	}
}
