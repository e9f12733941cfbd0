// Package check runs script steps and compares what each command did with
// what the step expected.
package check

import (
	"errors"
	"fmt"
	"strings"

	"stir/pkg/log"
	"stir/pkg/model"
	"stir/pkg/runner"
	"stir/pkg/stir"
)

// Failure is one way a step did not meet its expectation.
type Failure struct {
	Field   string `json:"field"` // error, exit-code, stdout or stderr
	Message string `json:"message"`
	Diff    string `json:"diff,omitempty"`
}

type StepResult struct {
	Name     string    `json:"name"`
	Command  string    `json:"command"`
	Status   string    `json:"status,omitempty"` // empty when the command could not be run
	Failures []Failure `json:"failures,omitempty"`
}

func (r StepResult) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes the script's steps in order. Every step runs, whatever the
// results of the steps before it.
func Run(script *model.Script, r runner.CommandRunner, logger log.Logger) []StepResult {
	results := make([]StepResult, 0, len(script.Steps))

	for _, step := range script.Steps {
		inv := runner.Invocation{
			Command: step.ToCommand(),
			Dir:     step.Dir,
			Env:     script.StepEnv(step),
			Stdin:   step.Stdin,
		}

		logger.Debug("Running step", "step", step.Name, "command", inv.Command.String())
		outcome, err := r.Capture(inv)

		result := Evaluate(step, outcome, err)
		if result.Passed() {
			logger.Info("Step passed", "step", step.Name)
		} else {
			logger.Error("Step failed", "step", step.Name, "failures", len(result.Failures))
		}
		results = append(results, result)
	}

	return results
}

// Evaluate compares the result of running step with step.Expect. outcome and
// err follow the runner.CommandRunner contract.
func Evaluate(step model.Step, outcome *stir.Outcome, err error) StepResult {
	result := StepResult{Name: step.Name, Command: step.ToCommand().String()}
	expect := step.Expect

	var cmdErr *stir.Error
	if err != nil && !errors.As(err, &cmdErr) {
		result.Failures = append(result.Failures, Failure{Field: "error", Message: err.Error()})
		return result
	}

	// The command never ran: only an expected error kind can pass.
	if cmdErr != nil && cmdErr.Kind != stir.KindNonZeroExit {
		if expect.Error != cmdErr.Kind.String() {
			result.Failures = append(result.Failures, Failure{
				Field:   "error",
				Message: fmt.Sprintf("unexpected %s error: %v", cmdErr.Kind, cmdErr),
			})
		}
		return result
	}

	if outcome == nil {
		result.Failures = append(result.Failures, Failure{Field: "error", Message: "runner returned no outcome"})
		return result
	}
	result.Status = outcome.Status.String()

	_, stdoutErr := outcome.StdoutString()
	_, stderrErr := outcome.StderrString()
	decodeErr := errors.Join(stdoutErr, stderrErr)

	switch expect.Error {
	case "":
		if decodeErr != nil {
			result.Failures = append(result.Failures, Failure{
				Field:   "error",
				Message: fmt.Sprintf("unexpected %s error: %v", stir.KindInvalidUTF8, decodeErr),
			})
		}
	case stir.KindInvalidUTF8.String():
		if decodeErr == nil {
			result.Failures = append(result.Failures, Failure{Field: "error", Message: "expected invalid-utf8 error, output was valid"})
		}
	default:
		result.Failures = append(result.Failures, Failure{
			Field:   "error",
			Message: fmt.Sprintf("expected %s error, command ran with %s", expect.Error, outcome.Status),
		})
	}

	if outcome.Status.Signal != "" {
		result.Failures = append(result.Failures, Failure{
			Field:   "exit-code",
			Message: fmt.Sprintf("expected exit code %d, terminated by signal: %s", expect.ExitCode, outcome.Status.Signal),
		})
	} else if outcome.Status.Code != expect.ExitCode {
		result.Failures = append(result.Failures, Failure{
			Field:   "exit-code",
			Message: fmt.Sprintf("expected exit code %d, got %d", expect.ExitCode, outcome.Status.Code),
		})
	}

	if f := compareStream("stdout", expect.Stdout, outcome.Stdout, expect.Trim); f != nil {
		result.Failures = append(result.Failures, *f)
	}
	if f := compareStream("stderr", expect.Stderr, outcome.Stderr, expect.Trim); f != nil {
		result.Failures = append(result.Failures, *f)
	}

	return result
}

func compareStream(name string, want *string, got []byte, trim bool) *Failure {
	if want == nil {
		return nil
	}

	expected, actual := *want, string(got)
	if trim {
		expected, actual = strings.TrimSpace(expected), strings.TrimSpace(actual)
	}
	if expected == actual {
		return nil
	}

	return &Failure{
		Field:   name,
		Message: fmt.Sprintf("%s did not match: expected %q, got %q", name, expected, actual),
		Diff:    RenderDiff(expected, actual),
	}
}

// Summarize counts passed and failed steps.
func Summarize(results []StepResult) (passed, failed int) {
	for _, r := range results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
