package test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// UseMemFs points *target, such as config.AppFs or testhelper.Fs, at a fresh
// in-memory filesystem until t ends.
func UseMemFs(t *testing.T, target *afero.Fs) afero.Fs {
	t.Helper()
	orig := *target
	*target = afero.NewMemMapFs()
	t.Cleanup(func() { *target = orig })
	return *target
}

// CreateTestFile writes a script or sentinel file, creating its directory.
func CreateTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

// AssertCommandExecuted checks that the mock runner saw the rendered command line.
func AssertCommandExecuted(t *testing.T, runner *MockCommandRunner, command string) {
	t.Helper()
	require.Contains(t, runner.Commands, command, "step command should have run: %s", command)
}

// AssertCommandNotExecuted checks that the mock runner never saw the command line.
func AssertCommandNotExecuted(t *testing.T, runner *MockCommandRunner, command string) {
	t.Helper()
	require.NotContains(t, runner.Commands, command, "step command should not have run: %s", command)
}

// AssertLogContains checks that a captured log line contains substring.
func AssertLogContains(t *testing.T, logger *MockLogger, substring string) {
	t.Helper()
	require.True(t, logger.HasMessage(substring), "log should contain: %s\ngot: %v", substring, logger.Messages)
}
