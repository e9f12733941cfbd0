package check_test

import (
	"errors"
	"log/slog"
	"testing"

	"stir/pkg/check"
	"stir/pkg/model"
	"stir/pkg/stir"
	"stir/pkg/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("runs the sample script against matching responses", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()
		mockRunner.SetResponse("echo foo", test.MockResponse{Stdout: "foo\n"})
		mockRunner.SetResponse("which ls", test.MockResponse{Stdout: "/bin/ls\n"})
		mockRunner.SetResponse("false", test.MockResponse{Code: 1})
		mockRunner.SetNotFound("does-not-exist")
		logger := test.NewMockLogger(slog.LevelInfo)

		results := check.Run(test.SampleScript(), mockRunner, logger)

		require.Len(t, results, 4)
		for _, r := range results {
			assert.True(t, r.Passed(), "step %s: %v", r.Name, r.Failures)
		}
		assert.Equal(t, "exit code: 1", results[2].Status)
		assert.Empty(t, results[3].Status)

		assert.Equal(t, []string{"echo foo", "which ls", "false", "does-not-exist"}, mockRunner.Commands)
		test.AssertLogContains(t, logger, "INFO: Step passed step=missing")
	})

	t.Run("keeps going after a failing step", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()
		mockRunner.SetResponse("echo foo", test.MockResponse{Stdout: "bar\n"})
		logger := test.NewMockLogger(slog.LevelInfo)

		results := check.Run(test.SampleScript(), mockRunner, logger)

		require.Len(t, results, 4)
		assert.False(t, results[0].Passed())
		test.AssertCommandExecuted(t, mockRunner, "does-not-exist")
		test.AssertLogContains(t, logger, "ERROR: Step failed step=greet failures=1")
	})

	t.Run("follows the runner's responses from a clean slate", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()
		logger := test.NewMockLogger(slog.LevelInfo)
		script := &model.Script{Steps: []model.Step{{
			Name:    "greet",
			Command: []string{"echo", "foo"},
			Expect:  model.Expectation{Stdout: test.Ptr("foo\n")},
		}}}

		mockRunner.SetResponse("echo foo", test.MockResponse{Stdout: "foo\n"})
		require.True(t, check.Run(script, mockRunner, logger)[0].Passed())
		test.AssertLogContains(t, logger, "Step passed step=greet")

		mockRunner.Reset()
		logger.Reset()

		results := check.Run(script, mockRunner, logger)
		assert.False(t, results[0].Passed())
		assert.Equal(t, []string{"echo foo"}, mockRunner.Commands)
		assert.False(t, logger.HasMessage("Step passed"))
		test.AssertLogContains(t, logger, "Step failed step=greet")
	})

	t.Run("does not run anything for an empty script", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()

		results := check.Run(&model.Script{}, mockRunner, test.SlogLogger(slog.LevelDebug))

		assert.Empty(t, results)
		test.AssertCommandNotExecuted(t, mockRunner, "echo foo")
	})

	t.Run("logs through a real slog logger", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()
		mockRunner.SetResponse("echo foo", test.MockResponse{Stdout: "foo\n"})

		results := check.Run(test.SampleScript(), mockRunner, test.SlogLogger(slog.LevelDebug))

		require.Len(t, results, 4)
		assert.True(t, results[0].Passed())
	})

	t.Run("passes dir, environment and stdin to the runner", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()
		script := &model.Script{
			Env: map[string]string{"B": "2", "A": "1"},
			Steps: []model.Step{{
				Name:    "cat",
				Command: []string{"cat"},
				Dir:     "/tmp",
				Env:     map[string]string{"A": "override"},
				Stdin:   "input",
			}},
		}

		check.Run(script, mockRunner, test.NewMockLogger(slog.LevelInfo))

		require.Len(t, mockRunner.Invocations, 1)
		inv := mockRunner.Invocations[0]
		assert.Equal(t, stir.New("cat"), inv.Command)
		assert.Equal(t, "/tmp", inv.Dir)
		assert.Equal(t, []string{"A=override", "B=2"}, inv.Env)
		assert.Equal(t, "input", inv.Stdin)
	})

	t.Run("logs each step at debug level", func(t *testing.T) {
		mockRunner := test.NewMockCommandRunner()
		logger := test.NewMockLogger(slog.LevelDebug)
		script := &model.Script{Steps: []model.Step{{Name: "noop", Command: []string{"true"}}}}

		check.Run(script, mockRunner, logger)

		test.AssertLogContains(t, logger, "DEBUG: Running step step=noop command=true")
	})
}

func TestEvaluate(t *testing.T) {
	echo := model.Step{Name: "echo", Command: []string{"echo", "foo"}}
	cmd := echo.ToCommand()
	ok := func(stdout, stderr string) *stir.Outcome {
		return &stir.Outcome{Command: cmd, Stdout: []byte(stdout), Stderr: []byte(stderr)}
	}

	t.Run("passes with no expectations on a clean exit", func(t *testing.T) {
		result := check.Evaluate(echo, ok("foo\n", ""), nil)
		assert.True(t, result.Passed())
		assert.Equal(t, "echo", result.Name)
		assert.Equal(t, "echo foo", result.Command)
		assert.Equal(t, "exit code: 0", result.Status)
	})

	t.Run("reports a stdout mismatch with a diff", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{Stdout: test.Ptr("foo\n")}

		result := check.Evaluate(step, ok("fob\n", ""), nil)

		require.Len(t, result.Failures, 1)
		f := result.Failures[0]
		assert.Equal(t, "stdout", f.Field)
		assert.Equal(t, `stdout did not match: expected "foo\n", got "fob\n"`, f.Message)
		assert.Equal(t, "fo[-o-]{+b+}\n", f.Diff)
	})

	t.Run("trims both sides when asked", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{Stdout: test.Ptr("foo"), Stderr: test.Ptr("  warn "), Trim: true}

		result := check.Evaluate(step, ok("foo\n", "warn\n"), nil)
		assert.True(t, result.Passed(), "%v", result.Failures)
	})

	t.Run("compares stderr without trimming by default", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{Stderr: test.Ptr("warn")}

		result := check.Evaluate(step, ok("", "warn\n"), nil)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, "stderr", result.Failures[0].Field)
	})

	t.Run("accepts an expected non-zero exit code", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{ExitCode: 42}
		outcome := &stir.Outcome{Command: cmd, Status: stir.Status{Code: 42}}
		err := &stir.Error{Kind: stir.KindNonZeroExit, Command: cmd, Code: 42}

		result := check.Evaluate(step, outcome, err)
		assert.True(t, result.Passed(), "%v", result.Failures)
		assert.Equal(t, "exit code: 42", result.Status)
	})

	t.Run("reports an unexpected exit code", func(t *testing.T) {
		outcome := &stir.Outcome{Command: cmd, Status: stir.Status{Code: 3}}
		err := &stir.Error{Kind: stir.KindNonZeroExit, Command: cmd, Code: 3}

		result := check.Evaluate(echo, outcome, err)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, check.Failure{Field: "exit-code", Message: "expected exit code 0, got 3"}, result.Failures[0])
	})

	t.Run("always fails a signal termination", func(t *testing.T) {
		outcome := &stir.Outcome{Command: cmd, Status: stir.Status{Code: -1, Signal: "killed"}}
		err := &stir.Error{Kind: stir.KindNonZeroExit, Command: cmd, Code: -1, Signal: "killed"}

		result := check.Evaluate(echo, outcome, err)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, "expected exit code 0, terminated by signal: killed", result.Failures[0].Message)
		assert.Equal(t, "signal: killed", result.Status)
	})

	t.Run("accepts an expected error kind", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{Error: "not-found"}
		err := &stir.Error{Kind: stir.KindNotFound, Command: cmd}

		result := check.Evaluate(step, nil, err)
		assert.True(t, result.Passed())
		assert.Empty(t, result.Status)
	})

	t.Run("reports an unexpected error kind", func(t *testing.T) {
		err := &stir.Error{Kind: stir.KindSpawn, Command: cmd, Err: errors.New("permission denied")}

		result := check.Evaluate(echo, nil, err)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, "error", result.Failures[0].Field)
		assert.Equal(t, "unexpected spawn error: echo foo:\n  permission denied", result.Failures[0].Message)
	})

	t.Run("reports an expected error that did not happen", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{Error: "not-found"}

		result := check.Evaluate(step, ok("foo\n", ""), nil)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, "expected not-found error, command ran with exit code: 0", result.Failures[0].Message)
	})

	t.Run("checks for invalid utf-8 output", func(t *testing.T) {
		step := echo
		step.Expect = model.Expectation{Error: "invalid-utf8"}

		assert.True(t, check.Evaluate(step, ok("\xc3\x28", ""), nil).Passed())
		assert.True(t, check.Evaluate(step, ok("", "\xff"), nil).Passed())

		result := check.Evaluate(step, ok("foo\n", ""), nil)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "expected invalid-utf8 error, output was valid", result.Failures[0].Message)
	})

	t.Run("fails on invalid utf-8 output nobody expected", func(t *testing.T) {
		result := check.Evaluate(echo, ok("\x80", ""), nil)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, check.Failure{
			Field:   "error",
			Message: "unexpected invalid-utf8 error: echo foo:\n  invalid utf-8 written to stdout",
		}, result.Failures[0])

		result = check.Evaluate(echo, ok("", "\xff"), nil)
		require.Len(t, result.Failures, 1)
		assert.Contains(t, result.Failures[0].Message, "invalid utf-8 written to stderr")
	})

	t.Run("reports errors that did not come from the runner", func(t *testing.T) {
		result := check.Evaluate(echo, nil, errors.New("boom"))

		require.Len(t, result.Failures, 1)
		assert.Equal(t, check.Failure{Field: "error", Message: "boom"}, result.Failures[0])
	})

	t.Run("reports a missing outcome", func(t *testing.T) {
		result := check.Evaluate(echo, nil, nil)
		assert.False(t, result.Passed())
	})
}

func TestSummarize(t *testing.T) {
	results := []check.StepResult{
		{Name: "a"},
		{Name: "b", Failures: []check.Failure{{Field: "stdout"}}},
		{Name: "c"},
	}

	passed, failed := check.Summarize(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)

	passed, failed = check.Summarize(nil)
	assert.Zero(t, passed)
	assert.Zero(t, failed)
}

func TestRenderDiff(t *testing.T) {
	assert.Equal(t, "same", check.RenderDiff("same", "same"))
	assert.Equal(t, "{+added+}", check.RenderDiff("", "added"))
	assert.Equal(t, "[-gone-]", check.RenderDiff("gone", ""))
	assert.Equal(t, "hello [-world-]{+there+}", check.RenderDiff("hello world", "hello there"))
}
