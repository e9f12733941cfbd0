// Package testhelper implements a child process with canned behaviours used
// to drive stir's process-level tests. It backs the stir-test-helper binary,
// and tests can run it by re-executing their own test binary.
package testhelper

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
)

// Behaviours, selected by the single command-line argument.
const (
	InvalidUTF8Stdout          = "invalid utf-8 stdout"
	ExitCode42                 = "exit code 42"
	StreamChunkThenWaitForFile = "stream chunk then wait for file"
	OutputFooAndExit42         = "output foo and exit with 42"
	WriteToStderr              = "write to stderr"
	FloodBothStreams           = "write large output to stdout and stderr"
)

// SentinelFile is polled for, relative to the working directory, by
// StreamChunkThenWaitForFile.
const SentinelFile = "file"

// FloodSize is the number of bytes FloodBothStreams writes to each stream.
const FloodSize = 1 << 20

const (
	floodChunk   = 4096
	pollInterval = 100 * time.Millisecond
)

// Fs is the filesystem SentinelFile is looked up in.
var Fs afero.Fs = afero.NewOsFs()

// Main runs the behaviour named by args[0] and returns the process exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: stir-test-helper <behaviour>")
		return 2
	}

	switch args[0] {
	case InvalidUTF8Stdout:
		_, _ = stdout.Write([]byte{0x80})
		return 0
	case ExitCode42:
		return 42
	case StreamChunkThenWaitForFile:
		fmt.Fprintln(stdout, "foo")
		for {
			exists, err := afero.Exists(Fs, SentinelFile)
			if err != nil {
				fmt.Fprintf(stderr, "stir-test-helper: %v\n", err)
				return 1
			}
			if exists {
				return 0
			}
			time.Sleep(pollInterval)
		}
	case OutputFooAndExit42:
		fmt.Fprintln(stdout, "foo")
		return 42
	case WriteToStderr:
		fmt.Fprintln(stderr, "foo")
		return 0
	case FloodBothStreams:
		out := bytes.Repeat([]byte("o"), floodChunk)
		errOut := bytes.Repeat([]byte("e"), floodChunk)
		for written := 0; written < FloodSize; written += floodChunk {
			if _, err := stdout.Write(out); err != nil {
				return 1
			}
			if _, err := stderr.Write(errOut); err != nil {
				return 1
			}
		}
		return 0
	default:
		fmt.Fprintf(stderr, "stir-test-helper: invalid arg: %s\n", args[0])
		return 2
	}
}
