package test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"stir/pkg/log"
	"stir/pkg/runner"
	"stir/pkg/stir"
)

// MockResponse is what MockCommandRunner returns for one command line.
type MockResponse struct {
	Stdout string
	Stderr string
	Code   int
	Err    error // returned instead of an outcome, e.g. a KindNotFound *stir.Error
}

// MockCommandRunner is a shared mock implementation of runner.CommandRunner for testing.
// It records invocations and answers from responses keyed by the rendered command.
type MockCommandRunner struct {
	Commands    []string            // Rendered command lines, in call order
	Invocations []runner.Invocation // Full invocations, in call order
	Responses   map[string]MockResponse
}

// NewMockCommandRunner creates a new MockCommandRunner with initialized maps.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Commands:    []string{},
		Invocations: []runner.Invocation{},
		Responses:   make(map[string]MockResponse),
	}
}

// Capture follows the runner.CommandRunner contract: a non-zero exit returns
// the outcome together with a *stir.Error. Unknown commands succeed silently.
func (r *MockCommandRunner) Capture(inv runner.Invocation) (*stir.Outcome, error) {
	key := inv.Command.String()
	r.Commands = append(r.Commands, key)
	r.Invocations = append(r.Invocations, inv)

	resp := r.Responses[key]
	if resp.Err != nil {
		return nil, resp.Err
	}

	outcome := &stir.Outcome{
		Command: inv.Command,
		Status:  stir.Status{Code: resp.Code},
		Stdout:  []byte(resp.Stdout),
		Stderr:  []byte(resp.Stderr),
	}
	if resp.Code != 0 {
		return outcome, &stir.Error{Kind: stir.KindNonZeroExit, Command: inv.Command, Code: resp.Code}
	}
	return outcome, nil
}

// SetResponse configures the response for a command line such as "echo foo".
func (r *MockCommandRunner) SetResponse(command string, resp MockResponse) {
	r.Responses[command] = resp
}

// SetNotFound makes the command fail as if its executable were missing.
func (r *MockCommandRunner) SetNotFound(name string, args ...string) {
	cmd := stir.New(name, args...)
	r.Responses[cmd.String()] = MockResponse{Err: &stir.Error{Kind: stir.KindNotFound, Command: cmd}}
}

// Reset clears all tracked commands and configurations.
func (r *MockCommandRunner) Reset() {
	r.Commands = []string{}
	r.Invocations = []runner.Invocation{}
	r.Responses = make(map[string]MockResponse)
}

// MockLogger is a shared mock implementation of Logger for testing.
// It captures logged messages for verification.
type MockLogger struct {
	Messages []string
	Level    slog.Level
}

// NewMockLogger creates a new MockLogger with the specified level.
func NewMockLogger(level slog.Level) *MockLogger {
	return &MockLogger{
		Messages: []string{},
		Level:    level,
	}
}

func (l *MockLogger) Debug(msg string, args ...any) {
	if l.Level <= slog.LevelDebug {
		l.captureMessage("DEBUG", msg, args...)
	}
}

func (l *MockLogger) Info(msg string, args ...any) {
	if l.Level <= slog.LevelInfo {
		l.captureMessage("INFO", msg, args...)
	}
}

func (l *MockLogger) Warn(msg string, args ...any) {
	if l.Level <= slog.LevelWarn {
		l.captureMessage("WARN", msg, args...)
	}
}

func (l *MockLogger) Error(msg string, args ...any) {
	if l.Level <= slog.LevelError {
		l.captureMessage("ERROR", msg, args...)
	}
}

func (l *MockLogger) captureMessage(level, msg string, args ...any) {
	buf := &bytes.Buffer{}
	buf.WriteString(level)
	buf.WriteString(": ")
	buf.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(buf, " %v=%v", args[i], args[i+1])
	}
	l.Messages = append(l.Messages, buf.String())
}

// Reset clears all captured messages.
func (l *MockLogger) Reset() {
	l.Messages = []string{}
}

// HasMessage checks if any captured message contains the given substring.
func (l *MockLogger) HasMessage(substring string) bool {
	for _, msg := range l.Messages {
		if strings.Contains(msg, substring) {
			return true
		}
	}
	return false
}

// SlogLogger creates a real slog logger for testing (alternative to mock).
func SlogLogger(level slog.Level) log.Logger {
	return log.NewSlogLogger(level, &bytes.Buffer{})
}
