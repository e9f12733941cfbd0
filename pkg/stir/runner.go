package stir

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"stir/pkg/log"
)

// Runner holds the settings a command runs with. The zero value runs in the
// current directory with the parent's environment, reads stdin from the null
// device and relays uncaptured output to the parent's stdout and stderr.
//
// A Runner is never modified by running commands, so one value may be shared
// between goroutines.
type Runner struct {
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env []string

	Stdin io.Reader

	// Stdout and Stderr receive the streams that are not captured.
	Stdout io.Writer
	Stderr io.Writer

	// LogCommand writes "+ <command>" to the stderr relay before spawning.
	LogCommand bool

	Logger log.Logger
}

type capture uint8

const (
	captureStdout capture = 1 << iota
	captureStderr
)

// Output runs cmd and returns its captured stdout untrimmed. A non-zero exit
// and output that is not valid UTF-8 are errors.
func (r *Runner) Output(cmd Command) (string, error) {
	outcome, err := r.exec(cmd, captureStdout)
	if err != nil {
		return "", err
	}
	if !outcome.Status.Success() {
		return "", exitError(cmd, outcome.Status)
	}
	return outcome.StdoutString()
}

// MustOutput is Output that panics with the *Error instead of returning it.
func (r *Runner) MustOutput(cmd Command) string {
	out, err := r.Output(cmd)
	if err != nil {
		panic(err)
	}
	return out
}

// Run runs cmd with both streams relayed. A non-zero exit is an error.
func (r *Runner) Run(cmd Command) error {
	outcome, err := r.exec(cmd, 0)
	if err != nil {
		return err
	}
	if !outcome.Status.Success() {
		return exitError(cmd, outcome.Status)
	}
	return nil
}

func (r *Runner) MustRun(cmd Command) {
	if err := r.Run(cmd); err != nil {
		panic(err)
	}
}

// Status runs cmd with both streams relayed and reports how it exited. Only
// failing to start the command is an error.
func (r *Runner) Status(cmd Command) (Status, error) {
	outcome, err := r.exec(cmd, 0)
	if err != nil {
		return Status{}, err
	}
	return outcome.Status, nil
}

// StderrOutput runs cmd, relays its stdout and returns its captured stderr.
func (r *Runner) StderrOutput(cmd Command) (string, error) {
	outcome, err := r.exec(cmd, captureStderr)
	if err != nil {
		return "", err
	}
	if !outcome.Status.Success() {
		return "", exitError(cmd, outcome.Status)
	}
	return outcome.StderrString()
}

// Capture runs cmd with both streams captured as raw bytes. On a non-zero
// exit the outcome is returned together with the error.
func (r *Runner) Capture(cmd Command) (*Outcome, error) {
	outcome, err := r.exec(cmd, captureStdout|captureStderr)
	if err != nil {
		return nil, err
	}
	if !outcome.Status.Success() {
		return outcome, exitError(cmd, outcome.Status)
	}
	return outcome, nil
}

// exec is the one execution path behind every entry point. It fails only
// when the child could not be run; the exit status is left to the caller.
func (r *Runner) exec(cmd Command, c capture) (*Outcome, error) {
	logger := r.logger()

	if cmd.Name == "" {
		return nil, &Error{Kind: KindSpawn, Command: cmd, Err: errors.New("empty command name")}
	}
	if r.Dir != "" {
		if _, err := os.Stat(r.Dir); err != nil {
			return nil, &Error{Kind: KindSpawn, Command: cmd, Err: err}
		}
	}

	// #nosec G204 - running caller-supplied commands is what this package is for
	child := exec.Command(cmd.Name, cmd.Args...)
	child.Dir = r.Dir
	if len(r.Env) > 0 {
		child.Env = append(os.Environ(), r.Env...)
	}
	child.Stdin = r.Stdin

	// os/exec drains every non-*os.File writer in its own goroutine, so
	// capturing both streams cannot stall on a full pipe.
	var stdout, stderr bytes.Buffer
	child.Stdout = r.stdout()
	if c&captureStdout != 0 {
		child.Stdout = &stdout
	}
	child.Stderr = r.stderr()
	if c&captureStderr != 0 {
		child.Stderr = &stderr
	}

	if r.LogCommand {
		fmt.Fprintf(r.stderr(), "+ %s\n", cmd)
	}
	logger.Debug("spawning command", "command", cmd.String(), "dir", r.Dir)

	outcome := &Outcome{Command: cmd}
	err := child.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		outcome.Status = statusOf(exitErr.ProcessState)
	case child.ProcessState == nil && (errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)):
		logger.Debug("executable not found", "command", cmd.String(), "error", err)
		return nil, &Error{Kind: KindNotFound, Command: cmd, Err: err}
	case child.ProcessState != nil:
		// The child ran and exited 0; only copying its output to a relay failed.
		logger.Debug("relaying output failed", "command", cmd.String(), "error", err)
		return nil, fmt.Errorf("%s:\n  %w: %w", cmd, ErrRelay, err)
	default:
		logger.Debug("command could not be run", "command", cmd.String(), "error", err)
		return nil, &Error{Kind: KindSpawn, Command: cmd, Err: err}
	}

	if c&captureStdout != 0 {
		outcome.Stdout = captured(&stdout)
	}
	if c&captureStderr != 0 {
		outcome.Stderr = captured(&stderr)
	}

	logger.Debug("command finished", "command", cmd.String(), "status", outcome.Status.String())
	return outcome, nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func (r *Runner) logger() log.Logger {
	if r.Logger == nil {
		return log.Discard()
	}
	return r.Logger
}

// captured keeps an empty capture distinguishable from no capture.
func captured(buf *bytes.Buffer) []byte {
	if buf.Len() == 0 {
		return []byte{}
	}
	return buf.Bytes()
}

func statusOf(ps *os.ProcessState) Status {
	if sig := signalOf(ps); sig != "" {
		return Status{Code: -1, Signal: sig}
	}
	return Status{Code: ps.ExitCode()}
}
