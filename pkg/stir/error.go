package stir

import (
	"errors"
	"fmt"
)

// Kind classifies why a command failed.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindSpawn
	KindNonZeroExit
	KindInvalidUTF8
)

var kindNames = map[Kind]string{
	KindNotFound:    "not-found",
	KindSpawn:       "spawn",
	KindNonZeroExit: "non-zero-exit",
	KindInvalidUTF8: "invalid-utf8",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", s)
}

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrNotFound    = errors.New("executable not found")
	ErrSpawn       = errors.New("failed to start command")
	ErrNonZeroExit = errors.New("command exited unsuccessfully")
	ErrInvalidUTF8 = errors.New("invalid utf-8 output")
)

// ErrRelay is wrapped, together with the writer's error, when a command exited
// successfully but its uncaptured output could not be written to the Runner's
// Stdout or Stderr. That error is not an *Error.
var ErrRelay = errors.New("relaying output failed")

// Error is returned by every fallible entry point, except for ErrRelay failures.
type Error struct {
	Kind    Kind
	Command Command

	// Code is the exit code for KindNonZeroExit, -1 if the child was killed
	// by a signal.
	Code   int
	Signal string

	// Stream is "stdout" or "stderr" for KindInvalidUTF8.
	Stream string

	// Err is the os/exec cause for KindNotFound and KindSpawn.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s:\n  executable not found: %s", e.Command, e.Command.Name)
	case KindSpawn:
		return fmt.Sprintf("%s:\n  %v", e.Command, e.Err)
	case KindNonZeroExit:
		if e.Signal != "" {
			return fmt.Sprintf("%s:\n  terminated by signal: %s", e.Command, e.Signal)
		}
		return fmt.Sprintf("%s:\n  exited with exit code: %d", e.Command, e.Code)
	case KindInvalidUTF8:
		return fmt.Sprintf("%s:\n  invalid utf-8 written to %s", e.Command, e.Stream)
	default:
		return fmt.Sprintf("%s:\n  %v", e.Command, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrSpawn:
		return e.Kind == KindSpawn
	case ErrNonZeroExit:
		return e.Kind == KindNonZeroExit
	case ErrInvalidUTF8:
		return e.Kind == KindInvalidUTF8
	}
	return false
}

func exitError(cmd Command, status Status) *Error {
	return &Error{Kind: KindNonZeroExit, Command: cmd, Code: status.Code, Signal: status.Signal}
}
