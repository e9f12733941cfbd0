package stir

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Status is how a child process terminated.
type Status struct {
	Code   int    // exit code, -1 when killed by a signal
	Signal string // signal name, empty unless killed by a signal
}

func (s Status) Success() bool {
	return s.Code == 0 && s.Signal == ""
}

func (s Status) String() string {
	if s.Signal != "" {
		return "signal: " + s.Signal
	}
	return fmt.Sprintf("exit code: %d", s.Code)
}

// Outcome is the result of one execution. Stdout and Stderr are nil for
// streams that were relayed rather than captured.
type Outcome struct {
	Command Command
	Status  Status
	Stdout  []byte
	Stderr  []byte
}

// StdoutString returns the captured stdout untouched, including any trailing
// newline.
func (o *Outcome) StdoutString() (string, error) {
	return o.decode("stdout", o.Stdout)
}

func (o *Outcome) StderrString() (string, error) {
	return o.decode("stderr", o.Stderr)
}

// TrimmedStdout is StdoutString with leading and trailing whitespace removed.
func (o *Outcome) TrimmedStdout() (string, error) {
	s, err := o.StdoutString()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (o *Outcome) decode(stream string, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &Error{Kind: KindInvalidUTF8, Command: o.Command, Stream: stream}
	}
	return string(b), nil
}
