// Package stir runs external commands with little ceremony, capturing their
// output and turning failures into structured errors.
//
// Each invocation goes through one execution path. The entry point decides two
// things: which streams are captured, and whether a non-zero exit is an error.
//
//	out, err := stir.CmdResult("git", "rev-parse", "HEAD") // captured stdout, error on failure
//	stir.CmdUnit("make", "build")                        // stdout relayed, panics on failure
//	status, err := stir.CmdStatus("grep", "-q", "x", "f") // non-zero exit is not an error
//
// Streams that are not captured are relayed to the Runner's Stdout and Stderr
// writers, or to the parent's standard streams when those are nil.
//
// Failures are reported as *Error. Its message has the fixed shape
//
//	<program> <args...>:
//	  exited with exit code: <code>
//
// and it matches ErrNotFound, ErrSpawn, ErrNonZeroExit or ErrInvalidUTF8
// through errors.Is.
package stir
