// Package runner defines the interface callers use to run many commands with
// per-call settings, so that they can be tested against a mock.
package runner

import (
	"io"
	"strings"

	"stir/pkg/log"
	"stir/pkg/stir"
)

// Invocation is one command plus the settings it runs with.
type Invocation struct {
	Command stir.Command
	Dir     string
	Env     []string // KEY=VALUE pairs added to the parent environment
	Stdin   string
}

// CommandRunner runs an Invocation with both streams captured. Its contract
// matches stir.Runner.Capture: on a non-zero exit the outcome is returned
// together with the error.
type CommandRunner interface {
	Capture(inv Invocation) (*stir.Outcome, error)
}

// LiveCommandRunner is an implementation of CommandRunner that spawns real
// processes.
type LiveCommandRunner struct {
	Logger     log.Logger
	LogCommand bool
	Stderr     io.Writer // destination for LogCommand lines
}

func (r *LiveCommandRunner) Capture(inv Invocation) (*stir.Outcome, error) {
	sr := &stir.Runner{
		Dir:        inv.Dir,
		Env:        inv.Env,
		Stderr:     r.Stderr,
		LogCommand: r.LogCommand,
		Logger:     r.Logger,
	}
	if inv.Stdin != "" {
		sr.Stdin = strings.NewReader(inv.Stdin)
	}
	return sr.Capture(inv.Command)
}
